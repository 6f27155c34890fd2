package notify

import (
	"context"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=notify

// BookSource selects the books a job announces.
type BookSource interface {
	ListPublishedSince(ctx context.Context, since time.Time) ([]book.Book, error)
	ListPublishedInYears(ctx context.Context, years []int) ([]book.Book, error)
}

// RecipientSource lists the users that receive notifications.
type RecipientSource interface {
	ListRecipients(ctx context.Context) ([]user.User, error)
}

// RunLog records which job ran on which day.
type RunLog interface {
	// Claim returns ErrAlreadyRan when (job, runOn) exists and force is false.
	Claim(ctx context.Context, run Run, force bool) error
}
