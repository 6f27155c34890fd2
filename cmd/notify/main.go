package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/logging"
	"libraryapi/internal/notify"
	"libraryapi/internal/scheduler"
	"libraryapi/internal/user"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// deps is what the commands need; built lazily so --help works without a database.
type deps struct {
	jobs    jobRunner
	cleaner scheduler.BlacklistCleaner
	close   func()
}

type jobRunner interface {
	Run(ctx context.Context, job string, force bool) (notify.Result, error)
}

func main() {
	config.LoadEnvFiles()
	cfg := config.NewConfig()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(cfg, postgresDeps(cfg)).Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("notify failed")
	}
}

func postgresDeps(cfg *config.Config) func(ctx context.Context) (deps, error) {
	return func(ctx context.Context) (deps, error) {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN)
		if err != nil {
			return deps{}, fmt.Errorf("connect to database: %w", err)
		}
		timeout := cfg.Database.QueryTimeout
		mailer := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			UseTLS:   cfg.Mail.UseTLS,
			Timeout:  cfg.Mail.Timeout,
		})
		service := notify.NewService(
			book.NewPostgresRepo(pool, timeout),
			user.NewPostgresRepo(pool, timeout),
			notify.NewPostgresRunLog(pool, timeout),
			mailer,
			cfg.Mail.From,
		)
		return deps{
			jobs:    service,
			cleaner: auth.NewBlacklistPostgresRepo(pool, timeout),
			close:   pool.Close,
		}, nil
	}
}

func newApp(cfg *config.Config, open func(ctx context.Context) (deps, error)) *cli.Command {
	forceFlag := &cli.BoolFlag{Name: "force", Usage: "Run even if the job already ran today"}

	runJob := func(job string) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			d, err := open(ctx)
			if err != nil {
				return err
			}
			defer d.close()

			res, err := d.jobs.Run(ctx, job, cmd.Bool("force"))
			if errors.Is(err, notify.ErrAlreadyRan) {
				log.Warn().Str("job", job).Msg("job already ran today; use --force to send again")
				return nil
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.Root().Writer, res.String())
			return nil
		}
	}

	return &cli.Command{
		Name:  "notify",
		Usage: "Send catalog notification emails",
		Commands: []*cli.Command{
			{
				Name:   "new-books",
				Usage:  "Email every reader the books published since yesterday",
				Flags:  []cli.Flag{forceFlag},
				Action: runJob(notify.JobNewBooks),
			},
			{
				Name:   "anniversary",
				Usage:  "Email every reader the books published 5, 10 or 20 years ago",
				Flags:  []cli.Flag{forceFlag},
				Action: runJob(notify.JobAnniversary),
			},
			{
				Name:  "schedule",
				Usage: "Run both jobs and token cleanup on their cron schedules until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "metrics-addr",
						Usage:   "Serve Prometheus metrics on this address (empty disables)",
						Sources: cli.EnvVars("NOTIFY_METRICS_ADDR"),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := cfg.ValidateSchedules(); err != nil {
						return err
					}
					ctx, cancel := context.WithCancel(ctx)
					defer cancel()

					if addr := cmd.String("metrics-addr"); addr != "" {
						ln, err := net.Listen("tcp", addr)
						if err != nil {
							return fmt.Errorf("listen for metrics: %w", err)
						}
						log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
						go func() {
							if err := serveMetrics(ctx, ln); err != nil {
								log.Error().Err(err).Msg("metrics server failed")
							}
						}()
					}

					d, err := open(ctx)
					if err != nil {
						return err
					}
					defer d.close()

					s := scheduler.New(d.jobs, d.cleaner, scheduler.Schedules{
						NewBooks:         cfg.Notify.NewBooksSchedule,
						Anniversary:      cfg.Notify.AnniversarySchedule,
						BlacklistCleanup: cfg.Notify.BlacklistCleanupSchedule,
					})
					if err := s.Start(ctx); err != nil {
						return err
					}
					<-ctx.Done()
					s.Stop()
					return nil
				},
			},
		},
	}
}

// serveMetrics exposes the default Prometheus registry on ln until ctx is cancelled.
func serveMetrics(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
