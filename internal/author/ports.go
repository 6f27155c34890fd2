package author

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=author

// Repository defines the contract for author storage.
type Repository interface {
	List(ctx context.Context) ([]Author, error)
	GetByID(ctx context.Context, id int64) (Author, error)
	Create(ctx context.Context, a *Author) error
	Update(ctx context.Context, a *Author) error
	Delete(ctx context.Context, id int64) error
}
