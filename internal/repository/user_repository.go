package repository

import (
	"context"
	"fmt"

	"go-gin-invitation/internal/model"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{
		pool: pool,
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `
		INSERT INTO users (id, email, password_hash, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, email_verified, created_at
	`
	var created model.User
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.EmailVerified,
	).Scan(
		&created.ID,
		&created.Email,
		&created.PasswordHash,
		&created.EmailVerified,
		&created.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, constraintUserEmail) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, apperrors.Backend(fmt.Errorf("failed to create user: %w", err))
	}
	return &created, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, email_verified, created_at
		FROM users
		` + where

	var user model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.EmailVerified,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) MarkEmailVerified(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		UPDATE users
		SET email_verified = TRUE
		WHERE id = $1
		RETURNING id, email, password_hash, email_verified, created_at
	`
	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.EmailVerified,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}
