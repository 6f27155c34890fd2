package favorite

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64) ([]Favorite, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (Favorite, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Add marks bookID as a favorite of userID.
func (s *Service) Add(ctx context.Context, userID, bookID int64) (Favorite, error) {
	f := Favorite{UserID: userID, BookID: bookID}
	if err := s.repo.Add(ctx, &f); err != nil {
		return Favorite{}, err
	}
	return f, nil
}

// Update points one of the caller's favorites at a different book.
func (s *Service) Update(ctx context.Context, userID, id, bookID int64) (Favorite, error) {
	f := Favorite{ID: id, UserID: userID, BookID: bookID}
	if err := s.repo.Update(ctx, &f); err != nil {
		return Favorite{}, err
	}
	return f, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

// Clear removes every favorite of userID and reports how many were removed.
func (s *Service) Clear(ctx context.Context, userID int64) (int64, error) {
	return s.repo.Clear(ctx, userID)
}
