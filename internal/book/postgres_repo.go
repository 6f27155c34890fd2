package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
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

const selectBook = `
	SELECT b.id, b.title, b.summary, b.isbn, b.publication_date, b.genre,
	       ARRAY(SELECT ba.author_id FROM book_authors ba WHERE ba.book_id = b.id ORDER BY ba.position, ba.author_id) AS authors
	FROM books b`

func scanBook(row pgx.Row, b *Book) error {
	return row.Scan(&b.ID, &b.Title, &b.Summary, &b.ISBN, &b.PublicationDate, &b.Genre, &b.AuthorIDs)
}

func (r *PostgresRepo) queryBooks(ctx context.Context, sql string, args ...any) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

var orderColumns = map[string]string{
	OrderPublicationDate: "b.publication_date",
	OrderGenre:           "b.genre",
	OrderAuthorLastName: `(SELECT MIN(a.last_name) FROM book_authors ba
		JOIN authors a ON a.id = ba.author_id WHERE ba.book_id = b.id)`,
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if len(q.AuthorIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("EXISTS (SELECT 1 FROM book_authors ba WHERE ba.book_id = b.id AND ba.author_id = ANY($%d))", argn))
		args = append(args, q.AuthorIDs)
		argn++
	}

	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("b.genre = $%d", argn))
		args = append(args, q.Genre)
		argn++
	}

	if q.PublicationDate != nil {
		clauses = append(clauses, fmt.Sprintf("b.publication_date = $%d", argn))
		args = append(args, *q.PublicationDate)
		argn++
	}

	// Each whitespace-separated term must match the title or an author's last name.
	for _, term := range strings.Fields(q.Search) {
		clauses = append(clauses, fmt.Sprintf(`(b.title ILIKE $%d OR EXISTS (
			SELECT 1 FROM book_authors ba JOIN authors a ON a.id = ba.author_id
			WHERE ba.book_id = b.id AND a.last_name ILIKE $%d))`, argn, argn))
		args = append(args, "%"+escapeLike(term)+"%")
		argn++
	}

	order := make([]string, 0, len(q.Ordering)+1)
	for _, o := range q.Ordering {
		col, ok := orderColumns[o.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOrdering, o.Field)
		}
		dir := "ASC NULLS LAST"
		if o.Desc {
			dir = "DESC NULLS LAST"
		}
		order = append(order, col+" "+dir)
	}
	order = append(order, "b.id ASC")

	sql := fmt.Sprintf("%s WHERE %s ORDER BY %s", selectBook, strings.Join(clauses, " AND "), strings.Join(order, ", "))
	return r.queryBooks(ctx, sql, args...)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := scanBook(r.db.QueryRow(timeoutCtx, selectBook+" WHERE b.id = $1", id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

// ListPublishedSince returns books published on or after the given date.
func (r *PostgresRepo) ListPublishedSince(ctx context.Context, since time.Time) ([]Book, error) {
	return r.queryBooks(ctx, selectBook+" WHERE b.publication_date >= $1 ORDER BY b.publication_date, b.id", since)
}

// ListPublishedInYears returns books whose publication year is one of years.
func (r *PostgresRepo) ListPublishedInYears(ctx context.Context, years []int) ([]Book, error) {
	return r.queryBooks(ctx, selectBook+" WHERE EXTRACT(YEAR FROM b.publication_date)::int = ANY($1) ORDER BY b.publication_date, b.id", years)
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	if err := checkISBNFree(timeoutCtx, tx, b.ISBN, 0); err != nil {
		return err
	}
	if err := checkAuthorsExist(timeoutCtx, tx, b.AuthorIDs); err != nil {
		return err
	}

	const insert = `
	INSERT INTO books (title, summary, isbn, publication_date, genre)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`
	if err := tx.QueryRow(timeoutCtx, insert, b.Title, b.Summary, b.ISBN, b.PublicationDate, b.Genre).Scan(&b.ID); err != nil {
		return mapWriteError(err)
	}
	if err := linkAuthors(timeoutCtx, tx, b.ID, b.AuthorIDs); err != nil {
		return err
	}
	return mapWriteError(tx.Commit(timeoutCtx))
}

func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	var lockedID int64
	if err := tx.QueryRow(timeoutCtx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, b.ID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if err := checkISBNFree(timeoutCtx, tx, b.ISBN, b.ID); err != nil {
		return err
	}
	if err := checkAuthorsExist(timeoutCtx, tx, b.AuthorIDs); err != nil {
		return err
	}

	const update = `
	UPDATE books
	SET title = $2, summary = $3, isbn = $4, publication_date = $5, genre = $6
	WHERE id = $1
	`
	if _, err := tx.Exec(timeoutCtx, update, b.ID, b.Title, b.Summary, b.ISBN, b.PublicationDate, b.Genre); err != nil {
		return mapWriteError(err)
	}
	if _, err := tx.Exec(timeoutCtx, `DELETE FROM book_authors WHERE book_id = $1`, b.ID); err != nil {
		return err
	}
	if err := linkAuthors(timeoutCtx, tx, b.ID, b.AuthorIDs); err != nil {
		return err
	}
	return mapWriteError(tx.Commit(timeoutCtx))
}

// Delete removes the book; favorites and author links cascade.
func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM books WHERE id = $1`
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

func checkISBNFree(ctx context.Context, tx pgx.Tx, isbn string, exceptID int64) error {
	var taken bool
	const query = `SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1 AND id <> $2)`
	if err := tx.QueryRow(ctx, query, isbn, exceptID).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return ErrConflict
	}
	return nil
}

func checkAuthorsExist(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var found int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM (SELECT id FROM authors WHERE id = ANY($1) FOR SHARE) found`, ids).Scan(&found); err != nil {
		return err
	}
	if found != len(ids) {
		return ErrUnknownAuthor
	}
	return nil
}

func linkAuthors(ctx context.Context, tx pgx.Tx, bookID int64, authorIDs []int64) error {
	if len(authorIDs) == 0 {
		return nil
	}
	const query = `
		INSERT INTO book_authors (book_id, author_id, position)
		SELECT $1, a.id, a.ord::int FROM unnest($2::bigint[]) WITH ORDINALITY AS a(id, ord)`
	_, err := tx.Exec(ctx, query, bookID, authorIDs)
	return mapWriteError(err)
}

// mapWriteError turns constraint races that slipped past the checks into domain errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrUnknownAuthor
		}
	}
	return err
}
