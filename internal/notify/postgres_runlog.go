package notify

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRunLog struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRunLog(db *pgxpool.Pool, timeout time.Duration) *PostgresRunLog {
	return &PostgresRunLog{db: db, timeout: timeout}
}

func (r *PostgresRunLog) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRunLog) Claim(ctx context.Context, run Run, force bool) error {
	const claimSQL = `
	INSERT INTO notification_runs (job, run_on, books_count, recipients)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (job, run_on) DO NOTHING
	`
	const forceSQL = `
	INSERT INTO notification_runs (job, run_on, books_count, recipients)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (job, run_on)
	DO UPDATE SET books_count = EXCLUDED.books_count, recipients = EXCLUDED.recipients, created_at = now()
	`
	query := claimSQL
	if force {
		query = forceSQL
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query, run.Job, run.RunOn, run.Books, run.Recipients)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyRan
	}
	return nil
}
