package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"libraryapi/internal/config"
	"libraryapi/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	config.LoadEnvFiles()
	cfg := config.NewConfig()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := newApp(cfg).Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
}

func newApp(cfg *config.Config) *cli.Command {
	dirFlag := &cli.StringFlag{
		Name:    "dir",
		Usage:   "Directory holding the SQL migrations",
		Value:   cfg.Database.MigrationsDir,
		Sources: cli.EnvVars("MIGRATIONS_DIR"),
	}
	dsnFlag := &cli.StringFlag{
		Name:  "dsn",
		Usage: "Postgres connection string",
		Value: cfg.Database.DSN,
	}

	withDB := func(run func(ctx context.Context, db *sql.DB, dir string) error) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			db, closeDB, err := openDB(ctx, cmd.String("dsn"))
			if err != nil {
				return err
			}
			defer closeDB()
			return run(ctx, db, cmd.String("dir"))
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Flags: []cli.Flag{dirFlag, dsnFlag},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withDB(func(ctx context.Context, db *sql.DB, dir string) error {
					if err := goose.UpContext(ctx, db, dir); err != nil {
						return fmt.Errorf("run migrations: %w", err)
					}
					log.Info().Msg("migrations applied successfully")
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back the latest migration",
				Action: withDB(func(ctx context.Context, db *sql.DB, dir string) error {
					if err := goose.DownContext(ctx, db, dir); err != nil {
						return fmt.Errorf("rollback migration: %w", err)
					}
					log.Info().Msg("migration rolled back successfully")
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "Print the state of every migration",
				Action: withDB(func(ctx context.Context, db *sql.DB, dir string) error {
					return goose.StatusContext(ctx, db, dir)
				}),
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Action: withDB(func(ctx context.Context, db *sql.DB, dir string) error {
					return goose.VersionContext(ctx, db, dir)
				}),
			},
			{
				Name:  "create",
				Usage: "Create a new SQL migration file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Migration name", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					goose.SetSequential(true)
					if err := goose.Create(nil, cmd.String("dir"), cmd.String("name"), "sql"); err != nil {
						return fmt.Errorf("create migration: %w", err)
					}
					return nil
				},
			},
		},
	}
}

func openDB(ctx context.Context, dsn string) (*sql.DB, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		pool.Close()
		return nil, nil, err
	}
	db := stdlib.OpenDBFromPool(pool)
	return db, func() {
		_ = db.Close()
		pool.Close()
	}, nil
}
