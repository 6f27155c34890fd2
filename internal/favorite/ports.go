package favorite

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=favorite

// Repository stores favorites. Every method is scoped to a single user.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Favorite, error)
	GetByID(ctx context.Context, userID, id int64) (Favorite, error)
	Add(ctx context.Context, f *Favorite) error
	Update(ctx context.Context, f *Favorite) error
	Delete(ctx context.Context, userID, id int64) error
	Clear(ctx context.Context, userID int64) (int64, error)
}
