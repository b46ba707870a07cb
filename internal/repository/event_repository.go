package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-gin-invitation/internal/model"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	// DeleteCascade removes the event with its guests and their wishes in one
	// transaction.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventColumns = `id, user_id, event_name, event_date, event_time, location_name,
	google_maps_url, event_type, theme_slug, hero_image, gallery_images, gallery_layout,
	bri_account_number, bri_account_name, shopeepay_number, shopeepay_name,
	created_at, updated_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.EventName,
		&event.EventDate,
		&event.EventTime,
		&event.LocationName,
		&event.GoogleMapsURL,
		&event.EventType,
		&event.ThemeSlug,
		&event.HeroImage,
		&event.GalleryImages,
		&event.GalleryLayout,
		&event.BRIAccountNumber,
		&event.BRIAccountName,
		&event.ShopeePayNumber,
		&event.ShopeePayName,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	gallery := event.GalleryImages
	if gallery == nil {
		gallery = []string{}
	}

	query := `
		INSERT INTO events (
			id, user_id, event_name, event_date, event_time, location_name,
			google_maps_url, event_type, theme_slug, hero_image, gallery_images, gallery_layout,
			bri_account_number, bri_account_name, shopeepay_number, shopeepay_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + eventColumns

	created, err := scanEvent(r.pool.QueryRow(ctx, query,
		event.ID, event.UserID, event.EventName, event.EventDate, event.EventTime, event.LocationName,
		event.GoogleMapsURL, string(event.EventType), string(event.ThemeSlug), nullable(event.HeroImage),
		gallery, string(event.GalleryLayout),
		nullable(event.BRIAccountNumber), nullable(event.BRIAccountName),
		nullable(event.ShopeePayNumber), nullable(event.ShopeePayName),
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Backend(fmt.Errorf("failed to create event: %w", err))
	}
	return created, nil
}

func (r *EventRepositoryImpl) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Backend(err)
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, apperrors.Backend(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}
	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, apperrors.ErrEventNotFound)
	}
	return event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.EventName != nil {
		set("event_name", *params.EventName)
	}
	if params.EventDate != nil {
		set("event_date", *params.EventDate)
	}
	if params.EventTime != nil {
		set("event_time", *params.EventTime)
	}
	if params.LocationName != nil {
		set("location_name", *params.LocationName)
	}
	if params.GoogleMapsURL != nil {
		set("google_maps_url", *params.GoogleMapsURL)
	}
	if params.EventType != nil {
		set("event_type", string(*params.EventType))
	}
	if params.ThemeSlug != nil {
		set("theme_slug", string(*params.ThemeSlug))
	}
	if params.HeroImage != nil {
		set("hero_image", nullable(params.HeroImage))
	}
	if params.GalleryImages != nil {
		gallery := *params.GalleryImages
		if gallery == nil {
			gallery = []string{}
		}
		set("gallery_images", gallery)
	}
	if params.GalleryLayout != nil {
		set("gallery_layout", string(*params.GalleryLayout))
	}
	if params.BRIAccountNumber != nil {
		set("bri_account_number", nullable(params.BRIAccountNumber))
	}
	if params.BRIAccountName != nil {
		set("bri_account_name", nullable(params.BRIAccountName))
	}
	if params.ShopeePayNumber != nil {
		set("shopeepay_number", nullable(params.ShopeePayNumber))
	}
	if params.ShopeePayName != nil {
		set("shopeepay_name", nullable(params.ShopeePayName))
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	set("updated_at", time.Now().UTC())

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, eventColumns)

	event, err := scanEvent(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err, apperrors.ErrEventNotFound)
	}
	return event, nil
}

func (r *EventRepositoryImpl) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperrors.Backend(err)
	}
	defer tx.Rollback(ctx)

	// 先刪留言，再刪賓客，最後刪活動
	_, err = tx.Exec(ctx, `
		DELETE FROM wishes
		WHERE guest_id IN (SELECT id FROM guests WHERE event_id = $1)
	`, id)
	if err != nil {
		return apperrors.Backend(fmt.Errorf("failed to delete wishes: %w", err))
	}

	if _, err = tx.Exec(ctx, `DELETE FROM guests WHERE event_id = $1`, id); err != nil {
		return apperrors.Backend(fmt.Errorf("failed to delete guests: %w", err))
	}

	result, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return apperrors.Backend(fmt.Errorf("failed to delete event: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Backend(err)
	}
	return nil
}
