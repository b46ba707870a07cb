package service

import (
	"context"
	"strings"

	"go-gin-invitation/internal/cache"
	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/repository"
	apperrors "go-gin-invitation/pkg/app_errors"
	"go-gin-invitation/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventInput 新增活動；空的列舉欄位使用預設值
type EventInput struct {
	EventName     string   `json:"event_name" validate:"required,max=200"`
	EventDate     string   `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	EventTime     string   `json:"event_time" validate:"max=50"`
	LocationName  string   `json:"location_name" validate:"max=300"`
	GoogleMapsURL string   `json:"google_maps_url" validate:"omitempty,url"`
	EventType     string   `json:"event_type"`
	ThemeSlug     string   `json:"theme_slug"`
	HeroImage     *string  `json:"hero_image"`
	GalleryImages []string `json:"gallery_images"`
	GalleryLayout string   `json:"gallery_layout"`

	BRIAccountNumber *string `json:"bri_account_number"`
	BRIAccountName   *string `json:"bri_account_name"`
	ShopeePayNumber  *string `json:"shopeepay_number"`
	ShopeePayName    *string `json:"shopeepay_name"`
}

// EventPatch 部分更新；nil 欄位不變更，空字串清除選填欄位
type EventPatch struct {
	EventName     *string   `json:"event_name" validate:"omitempty,min=1,max=200"`
	EventDate     *string   `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	EventTime     *string   `json:"event_time" validate:"omitempty,max=50"`
	LocationName  *string   `json:"location_name" validate:"omitempty,max=300"`
	GoogleMapsURL *string   `json:"google_maps_url" validate:"omitempty,url"`
	EventType     *string   `json:"event_type"`
	ThemeSlug     *string   `json:"theme_slug"`
	HeroImage     *string   `json:"hero_image"`
	GalleryImages *[]string `json:"gallery_images"`
	GalleryLayout *string   `json:"gallery_layout"`

	BRIAccountNumber *string `json:"bri_account_number"`
	BRIAccountName   *string `json:"bri_account_name"`
	ShopeePayNumber  *string `json:"shopeepay_number"`
	ShopeePayName    *string `json:"shopeepay_name"`
}

type EventService interface {
	Create(ctx context.Context, userID uuid.UUID, input EventInput) (*model.Event, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Event, error)
	// GetByID 回傳補上預設禮金帳戶的活動（不寫回資料庫）
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	// GetOwned 同 GetByID，但活動不屬於 userID 時回傳 ErrEventNotFound
	GetOwned(ctx context.Context, userID, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, patch EventPatch) (*model.Event, error)
	// Delete 連同賓客與留言一起刪除
	Delete(ctx context.Context, id uuid.UUID) error
}

type EventServiceImpl struct {
	repo         repository.EventRepository
	cache        cache.InvitationCache
	giftDefaults model.GiftAccounts
}

func NewEventService(repo repository.EventRepository, invitationCache cache.InvitationCache, giftDefaults model.GiftAccounts) EventService {
	return &EventServiceImpl{repo: repo, cache: invitationCache, giftDefaults: giftDefaults}
}

func (s *EventServiceImpl) Create(ctx context.Context, userID uuid.UUID, input EventInput) (*model.Event, error) {
	input.EventName = strings.TrimSpace(input.EventName)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	eventType, err := model.ParseEventType(input.EventType)
	if err != nil {
		return nil, err
	}
	theme, err := model.ParseThemeSlug(input.ThemeSlug)
	if err != nil {
		return nil, err
	}
	layout, err := model.ParseGalleryLayout(input.GalleryLayout)
	if err != nil {
		return nil, err
	}

	event := &model.Event{
		UserID:           userID,
		EventName:        input.EventName,
		EventDate:        input.EventDate,
		EventTime:        input.EventTime,
		LocationName:     input.LocationName,
		GoogleMapsURL:    input.GoogleMapsURL,
		EventType:        eventType,
		ThemeSlug:        theme,
		HeroImage:        trimmedOrNil(input.HeroImage),
		GalleryImages:    input.GalleryImages,
		GalleryLayout:    layout,
		BRIAccountNumber: trimmedOrNil(input.BRIAccountNumber),
		BRIAccountName:   trimmedOrNil(input.BRIAccountName),
		ShopeePayNumber:  trimmedOrNil(input.ShopeePayNumber),
		ShopeePayName:    trimmedOrNil(input.ShopeePayName),
	}
	return s.repo.Create(ctx, event)
}

func (s *EventServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Event, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *EventServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return event.WithGiftDefaults(s.giftDefaults), nil
}

func (s *EventServiceImpl) GetOwned(ctx context.Context, userID, id uuid.UUID) (*model.Event, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// 不屬於自己的活動一律當作不存在，不洩漏是否存在
	if event.UserID != userID {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

func (s *EventServiceImpl) Update(ctx context.Context, id uuid.UUID, patch EventPatch) (*model.Event, error) {
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	params, err := patch.toParams()
	if err != nil {
		return nil, err
	}
	if params.IsEmpty() {
		return nil, apperrors.Validation("no fields to update")
	}

	event, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return event, nil
}

func (s *EventServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// invalidate drops cached invitations of the event. A failure only delays
// freshness until the TTL, so it is logged rather than returned.
func (s *EventServiceImpl) invalidate(ctx context.Context, eventID uuid.UUID) {
	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		logger.WithComponent("service").Warn("invalidate invitation cache failed",
			zap.String("event_id", eventID.String()),
			zap.Error(err),
		)
	}
}

func (p EventPatch) toParams() (model.UpdateEventParams, error) {
	params := model.UpdateEventParams{
		EventDate:        p.EventDate,
		EventTime:        p.EventTime,
		LocationName:     p.LocationName,
		GoogleMapsURL:    p.GoogleMapsURL,
		HeroImage:        p.HeroImage,
		GalleryImages:    p.GalleryImages,
		BRIAccountNumber: p.BRIAccountNumber,
		BRIAccountName:   p.BRIAccountName,
		ShopeePayNumber:  p.ShopeePayNumber,
		ShopeePayName:    p.ShopeePayName,
	}
	if p.EventName != nil {
		name := strings.TrimSpace(*p.EventName)
		if name == "" {
			return params, apperrors.Validation("event_name must not be empty")
		}
		params.EventName = &name
	}
	if p.EventType != nil {
		t, err := model.ParseEventType(*p.EventType)
		if err != nil {
			return params, err
		}
		params.EventType = &t
	}
	if p.ThemeSlug != nil {
		t, err := model.ParseThemeSlug(*p.ThemeSlug)
		if err != nil {
			return params, err
		}
		params.ThemeSlug = &t
	}
	if p.GalleryLayout != nil {
		l, err := model.ParseGalleryLayout(*p.GalleryLayout)
		if err != nil {
			return params, err
		}
		params.GalleryLayout = &l
	}
	return params, nil
}
