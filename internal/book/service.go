package book

import (
	"context"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every book matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Book, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, b *Book) error {
	b.AuthorIDs = normalizeAuthorIDs(b.AuthorIDs)
	return s.repo.Create(ctx, b)
}

// Update replaces every field of the book, including its author list.
func (s *Service) Update(ctx context.Context, b *Book) error {
	b.AuthorIDs = normalizeAuthorIDs(b.AuthorIDs)
	return s.repo.Update(ctx, b)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// normalizeAuthorIDs drops repeated ids, keeping the caller's order.
func normalizeAuthorIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
