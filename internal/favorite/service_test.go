package favorite

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)
	created := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	t.Run("stores the pair for the caller", func(t *testing.T) {
		mockRepo.EXPECT().Add(gomock.Any(), &Favorite{UserID: 7, BookID: 3}).
			DoAndReturn(func(_ context.Context, f *Favorite) error {
				f.ID = 11
				f.CreatedAt = created
				return nil
			})

		f, err := service.Add(context.Background(), 7, 3)
		require.NoError(t, err)
		assert.Equal(t, Favorite{ID: 11, UserID: 7, BookID: 3, CreatedAt: created}, f)
	})

	t.Run("duplicate", func(t *testing.T) {
		mockRepo.EXPECT().Add(gomock.Any(), gomock.Any()).Return(ErrAlreadyFavorited)

		f, err := service.Add(context.Background(), 7, 3)
		assert.ErrorIs(t, err, ErrAlreadyFavorited)
		assert.Zero(t, f)
	})
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)

	t.Run("scoped to the caller", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), &Favorite{ID: 11, UserID: 7, BookID: 4}).Return(nil)

		f, err := service.Update(context.Background(), 7, 11, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(4), f.BookID)
	})

	t.Run("not owned", func(t *testing.T) {
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(ErrNotFound)

		_, err := service.Update(context.Background(), 8, 11, 4)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Clear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)

	mockRepo.EXPECT().Clear(gomock.Any(), int64(7)).Return(int64(2), nil)

	n, err := service.Clear(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
