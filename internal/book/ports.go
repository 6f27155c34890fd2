package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	// Create and Update write the book row and its author links in one
	// transaction, returning ErrConflict or ErrUnknownAuthor before writing.
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id int64) error
}
