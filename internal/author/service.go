package author

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Author, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Author, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, a *Author) error {
	if err := validateDates(a); err != nil {
		return err
	}
	return s.repo.Create(ctx, a)
}

// Update replaces every field of an existing author.
func (s *Service) Update(ctx context.Context, a *Author) error {
	if err := validateDates(a); err != nil {
		return err
	}
	return s.repo.Update(ctx, a)
}

// Delete removes the author; the author's books are kept.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateDates(a *Author) error {
	if a.DateOfDeath != nil && a.DateOfDeath.Before(a.DateOfBirth) {
		return ErrInvalidDates
	}
	return nil
}
