package storage

import (
	"context"

	"go-gin-invitation/internal/model"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
)

type userStore struct {
	*Store
}

func (s *userStore) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var created *model.User
	err := s.update(func(doc *document) error {
		if findIndex(doc.Users, func(u *userRecord) bool { return u.Email == user.Email }) >= 0 {
			return apperrors.ErrUserAlreadyExists
		}
		rec := userRecord{
			ID:            user.ID,
			Email:         user.Email,
			PasswordHash:  user.PasswordHash,
			EmailVerified: user.EmailVerified,
			CreatedAt:     s.now(),
		}
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		doc.Users = append(doc.Users, rec)
		created = rec.toUser()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *userStore) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.findOne(ctx, func(u *userRecord) bool { return u.ID == id })
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, func(u *userRecord) bool { return u.Email == email })
}

func (s *userStore) findOne(ctx context.Context, match func(*userRecord) bool) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var found *model.User
	err := s.view(func(doc *document) error {
		i := findIndex(doc.Users, match)
		if i < 0 {
			return apperrors.ErrUserNotFound
		}
		found = doc.Users[i].toUser()
		return nil
	})
	return found, err
}

func (s *userStore) MarkEmailVerified(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var updated *model.User
	err := s.update(func(doc *document) error {
		i := findIndex(doc.Users, func(u *userRecord) bool { return u.ID == id })
		if i < 0 {
			return apperrors.ErrUserNotFound
		}
		doc.Users[i].EmailVerified = true
		updated = doc.Users[i].toUser()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r userRecord) toUser() *model.User {
	return &model.User{
		ID:            r.ID,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		EmailVerified: r.EmailVerified,
		CreatedAt:     r.CreatedAt,
	}
}
