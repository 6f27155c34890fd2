package author

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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

const selectColumns = `id, first_name, last_name, biography, date_of_birth, date_of_death`

func scanAuthor(row pgx.Row, a *Author) error {
	return row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Biography, &a.DateOfBirth, &a.DateOfDeath)
}

func (r *PostgresRepo) List(ctx context.Context) ([]Author, error) {
	const query = `SELECT ` + selectColumns + ` FROM authors ORDER BY id`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Author{}
	for rows.Next() {
		var a Author
		if err := scanAuthor(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Author, error) {
	const query = `SELECT ` + selectColumns + ` FROM authors WHERE id = $1`
	var a Author
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := scanAuthor(r.db.QueryRow(timeoutCtx, query, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Author{}, ErrNotFound
		}
		return Author{}, err
	}
	return a, nil
}

func (r *PostgresRepo) Create(ctx context.Context, a *Author) error {
	const query = `
	INSERT INTO authors (first_name, last_name, biography, date_of_birth, date_of_death)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query,
		a.FirstName, a.LastName, a.Biography, a.DateOfBirth, a.DateOfDeath,
	).Scan(&a.ID)
}

func (r *PostgresRepo) Update(ctx context.Context, a *Author) error {
	const query = `
	UPDATE authors
	SET first_name = $2, last_name = $3, biography = $4, date_of_birth = $5, date_of_death = $6
	WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query,
		a.ID, a.FirstName, a.LastName, a.Biography, a.DateOfBirth, a.DateOfDeath,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM authors WHERE id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
