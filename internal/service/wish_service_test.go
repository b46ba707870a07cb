package service_test

import (
	"context"
	"testing"

	"go-gin-invitation/internal/model"
	repoMocks "go-gin-invitation/internal/repository/mocks"
	"go-gin-invitation/internal/service"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		env := newTestEnv(t, false)
		u := env.createUser(t, "host@example.com")
		event := env.createEvent(t, u.ID, "Budi & Ani")
		guest := env.createGuest(t, event.ID, service.GuestInput{GuestName: "John Doe"})

		wish, err := env.wishes.Create(ctx, guest.ID, " Rina ", " Selamat! ")

		require.NoError(t, err)
		assert.Equal(t, "Rina", wish.Name)
		assert.Equal(t, "Selamat!", wish.Message)
		assert.Equal(t, event.ID, wish.EventID)
		assert.Equal(t, "John Doe", wish.GuestName)
	})

	t.Run("Failed - empty message", func(t *testing.T) {
		env := newTestEnv(t, false)

		_, err := env.wishes.Create(ctx, uuid.New(), "Rina", "   ")
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = env.wishes.Create(ctx, uuid.New(), "", "Selamat")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Failed - unknown guest", func(t *testing.T) {
		env := newTestEnv(t, false)

		_, err := env.wishes.Create(ctx, uuid.New(), "Rina", "Selamat")
		assert.ErrorIs(t, err, apperrors.ErrGuestNotFound)
	})
}

func TestWishService_ListByEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - newest first", func(t *testing.T) {
		env := newTestEnv(t, false)
		u := env.createUser(t, "host@example.com")
		event := env.createEvent(t, u.ID, "Budi & Ani")
		guest := env.createGuest(t, event.ID, service.GuestInput{GuestName: "John Doe"})

		_, err := env.wishes.Create(ctx, guest.ID, "Rina", "pertama")
		require.NoError(t, err)
		_, err = env.wishes.Create(ctx, guest.ID, "Doni", "kedua")
		require.NoError(t, err)

		wishes, err := env.wishes.ListByEvent(ctx, event.ID)

		require.NoError(t, err)
		require.Len(t, wishes, 2)
		assert.Equal(t, "kedua", wishes[0].Message)
		assert.Equal(t, "pertama", wishes[1].Message)
	})

	t.Run("Success - missing guest name falls back to Unknown", func(t *testing.T) {
		repo := new(repoMocks.WishRepositoryMock)
		svc := service.NewWishService(repo)
		eventID := uuid.New()

		repo.On("ListByEventID", ctx, eventID).Return([]*model.Wish{
			{Name: "Rina", Message: "Selamat", GuestName: ""},
			{Name: "Doni", Message: "Bahagia", GuestName: "Jane"},
		}, nil).Once()

		wishes, err := svc.ListByEvent(ctx, eventID)

		require.NoError(t, err)
		assert.Equal(t, model.UnknownGuestName, wishes[0].GuestName)
		assert.Equal(t, "Jane", wishes[1].GuestName)
		repo.AssertExpectations(t)
	})
}
