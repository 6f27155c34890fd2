package author

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)

	t.Run("living author", func(t *testing.T) {
		a := &Author{FirstName: "Ursula", LastName: "Le Guin", DateOfBirth: date(1929, 10, 21)}
		mockRepo.EXPECT().Create(gomock.Any(), a).DoAndReturn(func(_ context.Context, a *Author) error {
			a.ID = 1
			return nil
		})

		err := service.Create(context.Background(), a)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), a.ID)
	})

	t.Run("death before birth", func(t *testing.T) {
		died := date(1900, 1, 1)
		a := &Author{FirstName: "X", LastName: "Y", DateOfBirth: date(1929, 10, 21), DateOfDeath: &died}

		err := service.Create(context.Background(), a)
		assert.ErrorIs(t, err, ErrInvalidDates)
	})

	t.Run("death on birth day allowed", func(t *testing.T) {
		born := date(1929, 10, 21)
		a := &Author{FirstName: "X", LastName: "Y", DateOfBirth: born, DateOfDeath: &born}
		mockRepo.EXPECT().Create(gomock.Any(), a).Return(nil)

		assert.NoError(t, service.Create(context.Background(), a))
	})
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)

	a := &Author{ID: 5, FirstName: "A", LastName: "B", DateOfBirth: date(1950, 1, 1)}
	mockRepo.EXPECT().Update(gomock.Any(), a).Return(ErrNotFound)

	assert.ErrorIs(t, service.Update(context.Background(), a), ErrNotFound)
}
