package favorite

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the caller has no favorite with the given id.
	ErrNotFound = errors.New("favorite not found")
	// ErrBookNotFound is returned when the referenced book does not exist.
	ErrBookNotFound = errors.New("book not found")
	// ErrAlreadyFavorited is returned when the (user, book) pair already exists.
	ErrAlreadyFavorited = errors.New("book already in favorites")
	// ErrUserNotFound is returned when the caller's account no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// Favorite links a user to a book they marked.
type Favorite struct {
	ID        int64
	UserID    int64
	BookID    int64
	CreatedAt time.Time
}
