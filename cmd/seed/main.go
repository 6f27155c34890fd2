package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"libraryapi/internal/config"
	"libraryapi/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	config.LoadEnvFiles()
	cfg := config.NewConfig()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	app := &cli.Command{
		Name:  "seed",
		Usage: "Fill the catalog with generated authors and books",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "authors", Value: 200, Usage: "Number of authors"},
			&cli.IntFlag{Name: "books", Value: 2000, Usage: "Number of books"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "Random seed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pool, err := pgxpool.New(ctx, cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			rng := rand.New(rand.NewSource(cmd.Int64("seed")))
			return seed(ctx, pool, rng, int(cmd.Int("authors")), int(cmd.Int("books")), time.Now())
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func seed(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, authorCount, bookCount int, now time.Time) error {
	authors := generateAuthors(rng, authorCount)
	books := generateBooks(rng, bookCount, authorCount, now)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	authorIDs, err := insertAuthors(ctx, tx, authors)
	if err != nil {
		return fmt.Errorf("insert authors: %w", err)
	}
	log.Info().Int("count", len(authorIDs)).Msg("authors inserted")

	bookIDs, err := insertBooks(ctx, tx, books)
	if err != nil {
		return fmt.Errorf("insert books: %w", err)
	}
	log.Info().Int("count", len(bookIDs)).Msg("books inserted")

	var links [][]any
	for i, b := range books {
		for pos, idx := range b.authorIdx {
			links = append(links, []any{bookIDs[i], authorIDs[idx], int32(pos + 1)})
		}
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"book_authors"}, []string{"book_id", "author_id", "position"}, pgx.CopyFromRows(links))
	if err != nil {
		return fmt.Errorf("link authors: %w", err)
	}
	log.Info().Int64("count", n).Msg("book/author links inserted")

	return tx.Commit(ctx)
}

func insertAuthors(ctx context.Context, tx pgx.Tx, authors []seedAuthor) ([]int64, error) {
	const query = `
	INSERT INTO authors (first_name, last_name, biography, date_of_birth, date_of_death)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`
	batch := &pgx.Batch{}
	for _, a := range authors {
		batch.Queue(query, a.firstName, a.lastName, a.biography, a.born, a.died)
	}
	return collectIDs(ctx, tx, batch, len(authors))
}

func insertBooks(ctx context.Context, tx pgx.Tx, books []seedBook) ([]int64, error) {
	const query = `
	INSERT INTO books (title, summary, isbn, publication_date, genre)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (isbn) DO UPDATE SET title = EXCLUDED.title
	RETURNING id
	`
	batch := &pgx.Batch{}
	for _, b := range books {
		batch.Queue(query, b.title, b.summary, b.isbn, b.published, b.genre)
	}
	return collectIDs(ctx, tx, batch, len(books))
}

func collectIDs(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, n int) ([]int64, error) {
	results := tx.SendBatch(ctx, batch)
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		var id int64
		if err := results.QueryRow().Scan(&id); err != nil {
			_ = results.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, results.Close()
}
