package repository

import (
	"context"
	"fmt"
	"time"

	"go-gin-invitation/internal/model"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GuestRepository interface {
	// Create returns apperrors.ErrSlugTaken when unique_slug already exists.
	Create(ctx context.Context, guest *model.Guest) (*model.Guest, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Guest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Guest, error)
	FindBySlug(ctx context.Context, slug string) (*model.Guest, error)
	UpdateRSVP(ctx context.Context, slug string, status model.RSVPStatus) (*model.Guest, error)
	// DeleteCascade removes the guest and its wishes, returning the deleted row.
	DeleteCascade(ctx context.Context, id uuid.UUID) (*model.Guest, error)
}

type GuestRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &GuestRepositoryImpl{
		pool: pool,
	}
}

const guestColumns = `id, event_id, guest_name, unique_slug, status_rsvp,
	phone_number, instagram, created_at, updated_at`

func scanGuest(row pgx.Row) (*model.Guest, error) {
	var guest model.Guest
	err := row.Scan(
		&guest.ID,
		&guest.EventID,
		&guest.GuestName,
		&guest.UniqueSlug,
		&guest.StatusRSVP,
		&guest.PhoneNumber,
		&guest.Instagram,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *GuestRepositoryImpl) Create(ctx context.Context, guest *model.Guest) (*model.Guest, error) {
	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	if guest.StatusRSVP == "" {
		guest.StatusRSVP = model.RSVPPending
	}

	query := `
		INSERT INTO guests (id, event_id, guest_name, unique_slug, status_rsvp, phone_number, instagram)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + guestColumns

	created, err := scanGuest(r.pool.QueryRow(ctx, query,
		guest.ID, guest.EventID, guest.GuestName, guest.UniqueSlug, string(guest.StatusRSVP),
		nullable(guest.PhoneNumber), nullable(guest.Instagram),
	))
	if err != nil {
		switch {
		case isUniqueViolation(err, constraintGuestSlug):
			return nil, apperrors.ErrSlugTaken
		case isForeignKeyViolation(err):
			return nil, apperrors.ErrEventNotFound
		}
		return nil, apperrors.Backend(fmt.Errorf("failed to create guest: %w", err))
	}
	return created, nil
}

func (r *GuestRepositoryImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Guest, error) {
	query := `
		SELECT ` + guestColumns + `
		FROM guests
		WHERE event_id = $1
		ORDER BY guest_name ASC
	`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, apperrors.Backend(err)
	}
	defer rows.Close()

	guests := make([]*model.Guest, 0)
	for rows.Next() {
		guest, err := scanGuest(rows)
		if err != nil {
			return nil, apperrors.Backend(err)
		}
		guests = append(guests, guest)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}
	return guests, nil
}

func (r *GuestRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	guest, err := scanGuest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, apperrors.ErrGuestNotFound)
	}
	return guest, nil
}

func (r *GuestRepositoryImpl) FindBySlug(ctx context.Context, slug string) (*model.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE unique_slug = $1`
	guest, err := scanGuest(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, translate(err, apperrors.ErrGuestNotFound)
	}
	return guest, nil
}

func (r *GuestRepositoryImpl) UpdateRSVP(ctx context.Context, slug string, status model.RSVPStatus) (*model.Guest, error) {
	query := `
		UPDATE guests
		SET status_rsvp = $1, updated_at = $2
		WHERE unique_slug = $3
		RETURNING ` + guestColumns

	guest, err := scanGuest(r.pool.QueryRow(ctx, query, string(status), time.Now().UTC(), slug))
	if err != nil {
		return nil, translate(err, apperrors.ErrGuestNotFound)
	}
	return guest, nil
}

func (r *GuestRepositoryImpl) DeleteCascade(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperrors.Backend(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM wishes WHERE guest_id = $1`, id); err != nil {
		return nil, apperrors.Backend(fmt.Errorf("failed to delete wishes: %w", err))
	}

	guest, err := scanGuest(tx.QueryRow(ctx, `DELETE FROM guests WHERE id = $1 RETURNING `+guestColumns, id))
	if err != nil {
		return nil, translate(err, apperrors.ErrGuestNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Backend(err)
	}
	return guest, nil
}
