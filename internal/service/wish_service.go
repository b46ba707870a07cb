package service

import (
	"context"
	"strings"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/repository"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
)

type WishService interface {
	Create(ctx context.Context, guestID uuid.UUID, name, message string) (*model.Wish, error)
	// ListByEvent 新到舊；找不到賓客時 guest_name 為 "Unknown"
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Wish, error)
}

type WishServiceImpl struct {
	repo repository.WishRepository
}

func NewWishService(repo repository.WishRepository) WishService {
	return &WishServiceImpl{repo: repo}
}

func (s *WishServiceImpl) Create(ctx context.Context, guestID uuid.UUID, name, message string) (*model.Wish, error) {
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if message == "" {
		return nil, apperrors.Validation("message is required")
	}

	wish, err := s.repo.Create(ctx, &model.Wish{
		GuestID: guestID,
		Name:    name,
		Message: message,
	})
	if err != nil {
		return nil, err
	}
	fillGuestName(wish)
	return wish, nil
}

func (s *WishServiceImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Wish, error) {
	wishes, err := s.repo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, w := range wishes {
		fillGuestName(w)
	}
	return wishes, nil
}

func fillGuestName(w *model.Wish) {
	if strings.TrimSpace(w.GuestName) == "" {
		w.GuestName = model.UnknownGuestName
	}
}
