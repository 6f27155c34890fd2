package author

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an author is not found.
	ErrNotFound = errors.New("author not found")
	// ErrInvalidDates is returned when the date of death precedes the date of birth.
	ErrInvalidDates = errors.New("date of death is before date of birth")
)

// Author is a person credited on one or more books.
type Author struct {
	ID          int64
	FirstName   string
	LastName    string
	Biography   string
	DateOfBirth time.Time
	DateOfDeath *time.Time
}
