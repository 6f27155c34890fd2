package book

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrConflict is returned when another book already uses the ISBN.
	ErrConflict = errors.New("book with this isbn already exists")
	// ErrUnknownAuthor is returned when an author id does not exist.
	ErrUnknownAuthor = errors.New("unknown author")
	// ErrInvalidOrdering is returned for an unsupported ordering field.
	ErrInvalidOrdering = errors.New("invalid ordering field")
)

// Book is a catalog entry. AuthorIDs is sorted ascending.
type Book struct {
	ID              int64
	Title           string
	Summary         string
	ISBN            string
	PublicationDate time.Time
	Genre           string
	AuthorIDs       []int64
}

// Ordering fields accepted by List.
const (
	OrderPublicationDate = "publication_date"
	OrderAuthorLastName  = "authors__last_name"
	OrderGenre           = "genre"
)

// Ordering is one sort key of a list query.
type Ordering struct {
	Field string
	Desc  bool
}

// Query defines filters, search and ordering for listing books.
// Zero values mean "no constraint".
type Query struct {
	AuthorIDs       []int64 // books by any of these authors
	Genre           string
	PublicationDate *time.Time
	Search          string
	Ordering        []Ordering
}

// ParseOrdering parses a comma-separated list such as "-publication_date,genre".
func ParseOrdering(raw string) ([]Ordering, error) {
	var out []Ordering
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		o := Ordering{Field: part}
		if strings.HasPrefix(part, "-") {
			o.Field = part[1:]
			o.Desc = true
		}
		switch o.Field {
		case OrderPublicationDate, OrderAuthorLastName, OrderGenre:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidOrdering, o.Field)
		}
		out = append(out, o)
	}
	return out, nil
}
