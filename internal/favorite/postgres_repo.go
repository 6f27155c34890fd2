package favorite

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	bookForeignKey = "favorite_books_book_id_fkey"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation:
			return ErrAlreadyFavorited
		case pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == bookForeignKey:
			return ErrBookNotFound
		case pgErr.Code == foreignKeyViolation:
			return ErrUserNotFound
		}
	}
	return err
}

func (r *PostgresRepo) List(ctx context.Context, userID int64) ([]Favorite, error) {
	const query = `
	SELECT id, user_id, book_id, created_at
	FROM favorite_books
	WHERE user_id = $1
	ORDER BY id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Favorite{}
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.BookID, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, userID, id int64) (Favorite, error) {
	const query = `
	SELECT id, user_id, book_id, created_at
	FROM favorite_books
	WHERE id = $1 AND user_id = $2
	`
	var f Favorite
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, id, userID).Scan(&f.ID, &f.UserID, &f.BookID, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Favorite{}, ErrNotFound
	}
	return f, err
}

func (r *PostgresRepo) Add(ctx context.Context, f *Favorite) error {
	const query = `
	INSERT INTO favorite_books (user_id, book_id)
	VALUES ($1, $2)
	RETURNING id, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, f.UserID, f.BookID).Scan(&f.ID, &f.CreatedAt)
	return mapWriteError(err)
}

func (r *PostgresRepo) Update(ctx context.Context, f *Favorite) error {
	const query = `
	UPDATE favorite_books
	SET book_id = $3
	WHERE id = $1 AND user_id = $2
	RETURNING created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, f.ID, f.UserID, f.BookID).Scan(&f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return mapWriteError(err)
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, `DELETE FROM favorite_books WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Clear(ctx context.Context, userID int64) (int64, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, `DELETE FROM favorite_books WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
