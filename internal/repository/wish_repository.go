package repository

import (
	"context"
	"fmt"

	"go-gin-invitation/internal/model"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WishRepository interface {
	Create(ctx context.Context, wish *model.Wish) (*model.Wish, error)
	// ListByEventID joins guests so each wish carries event_id and the
	// guest's display name, newest first.
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Wish, error)
}

type WishRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewWishRepository(pool *pgxpool.Pool) WishRepository {
	return &WishRepositoryImpl{
		pool: pool,
	}
}

func (r *WishRepositoryImpl) Create(ctx context.Context, wish *model.Wish) (*model.Wish, error) {
	if wish.ID == uuid.Nil {
		wish.ID = uuid.New()
	}

	query := `
		WITH inserted AS (
			INSERT INTO wishes (id, guest_id, name, message)
			VALUES ($1, $2, $3, $4)
			RETURNING id, guest_id, name, message, created_at
		)
		SELECT i.id, i.guest_id, g.event_id, i.name, i.message, g.guest_name, i.created_at
		FROM inserted i
		JOIN guests g ON g.id = i.guest_id
	`
	var created model.Wish
	err := r.pool.QueryRow(ctx, query, wish.ID, wish.GuestID, wish.Name, wish.Message).Scan(
		&created.ID,
		&created.GuestID,
		&created.EventID,
		&created.Name,
		&created.Message,
		&created.GuestName,
		&created.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrGuestNotFound
		}
		return nil, apperrors.Backend(fmt.Errorf("failed to create wish: %w", err))
	}
	return &created, nil
}

func (r *WishRepositoryImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Wish, error) {
	query := `
		SELECT w.id, w.guest_id, g.event_id, w.name, w.message, g.guest_name, w.created_at
		FROM wishes w
		JOIN guests g ON g.id = w.guest_id
		WHERE g.event_id = $1
		ORDER BY w.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, apperrors.Backend(err)
	}
	defer rows.Close()

	wishes := make([]*model.Wish, 0)
	for rows.Next() {
		var wish model.Wish
		err := rows.Scan(
			&wish.ID,
			&wish.GuestID,
			&wish.EventID,
			&wish.Name,
			&wish.Message,
			&wish.GuestName,
			&wish.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Backend(err)
		}
		wishes = append(wishes, &wish)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}
	return wishes, nil
}
