package auth

import (
	"context"
	"time"

	"libraryapi/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=auth

// UserStore is the subset of user storage the token endpoints need.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// BlacklistRepository stores revoked token IDs until they expire.
type BlacklistRepository interface {
	// Add returns ErrAlreadyRevoked when jti is already present.
	Add(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	CleanupExpired(ctx context.Context) (int64, error)
}
