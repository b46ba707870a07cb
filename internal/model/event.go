package model

import (
	"fmt"
	"slices"
	"time"

	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
)

// EventType 活動類型
type EventType string

const (
	EventTypeWedding    EventType = "wedding"
	EventTypeBirthday   EventType = "birthday"
	EventTypeGraduation EventType = "graduation"
	EventTypeParty      EventType = "party"
)

var eventTypes = []EventType{EventTypeWedding, EventTypeBirthday, EventTypeGraduation, EventTypeParty}

// ParseEventType 驗證活動類型；空字串回傳預設值 wedding
func ParseEventType(s string) (EventType, error) {
	if s == "" {
		return EventTypeWedding, nil
	}
	t := EventType(s)
	if !slices.Contains(eventTypes, t) {
		return "", fmt.Errorf("%w: unknown event_type %q", apperrors.ErrValidation, s)
	}
	return t, nil
}

// ThemeSlug 邀請函主題
type ThemeSlug string

const (
	ThemeModern     ThemeSlug = "modern"
	ThemeClassic    ThemeSlug = "classic"
	ThemeRomantic   ThemeSlug = "romantic"
	ThemeLuxury     ThemeSlug = "luxury"
	ThemeNature     ThemeSlug = "nature"
	ThemeVintage    ThemeSlug = "vintage"
	ThemeMinimalist ThemeSlug = "minimalist"
	ThemeRoyal      ThemeSlug = "royal"
	ThemeEthereal   ThemeSlug = "ethereal"
)

var themeSlugs = []ThemeSlug{
	ThemeModern, ThemeClassic, ThemeRomantic, ThemeLuxury, ThemeNature,
	ThemeVintage, ThemeMinimalist, ThemeRoyal, ThemeEthereal,
}

// ParseThemeSlug 驗證主題；空字串回傳預設值 modern
func ParseThemeSlug(s string) (ThemeSlug, error) {
	if s == "" {
		return ThemeModern, nil
	}
	t := ThemeSlug(s)
	if !slices.Contains(themeSlugs, t) {
		return "", fmt.Errorf("%w: unknown theme_slug %q", apperrors.ErrValidation, s)
	}
	return t, nil
}

// GalleryLayout 相簿排版
type GalleryLayout string

const (
	GalleryMasonry  GalleryLayout = "masonry"
	GalleryGrid     GalleryLayout = "grid"
	GalleryCarousel GalleryLayout = "carousel"
	GalleryStack    GalleryLayout = "stack"
)

var galleryLayouts = []GalleryLayout{GalleryMasonry, GalleryGrid, GalleryCarousel, GalleryStack}

// ParseGalleryLayout 驗證相簿排版；空字串回傳預設值 masonry
func ParseGalleryLayout(s string) (GalleryLayout, error) {
	if s == "" {
		return GalleryMasonry, nil
	}
	l := GalleryLayout(s)
	if !slices.Contains(galleryLayouts, l) {
		return "", fmt.Errorf("%w: unknown gallery_layout %q", apperrors.ErrValidation, s)
	}
	return l, nil
}

type Event struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	UserID        uuid.UUID     `json:"user_id" db:"user_id"`
	EventName     string        `json:"event_name" db:"event_name"`
	EventDate     string        `json:"event_date" db:"event_date"`
	EventTime     string        `json:"event_time" db:"event_time"`
	LocationName  string        `json:"location_name" db:"location_name"`
	GoogleMapsURL string        `json:"google_maps_url" db:"google_maps_url"`
	EventType     EventType     `json:"event_type" db:"event_type"`
	ThemeSlug     ThemeSlug     `json:"theme_slug" db:"theme_slug"`
	HeroImage     *string       `json:"hero_image,omitempty" db:"hero_image"`
	GalleryImages []string      `json:"gallery_images,omitempty" db:"gallery_images"`
	GalleryLayout GalleryLayout `json:"gallery_layout" db:"gallery_layout"`

	BRIAccountNumber *string `json:"bri_account_number,omitempty" db:"bri_account_number"`
	BRIAccountName   *string `json:"bri_account_name,omitempty" db:"bri_account_name"`
	ShopeePayNumber  *string `json:"shopeepay_number,omitempty" db:"shopeepay_number"`
	ShopeePayName    *string `json:"shopeepay_name,omitempty" db:"shopeepay_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateEventParams 部分更新；nil 欄位不變更
type UpdateEventParams struct {
	EventName     *string
	EventDate     *string
	EventTime     *string
	LocationName  *string
	GoogleMapsURL *string
	EventType     *EventType
	ThemeSlug     *ThemeSlug
	HeroImage     *string
	GalleryImages *[]string
	GalleryLayout *GalleryLayout

	BRIAccountNumber *string
	BRIAccountName   *string
	ShopeePayNumber  *string
	ShopeePayName    *string
}

// IsEmpty reports whether no field is set.
func (p UpdateEventParams) IsEmpty() bool {
	return p == (UpdateEventParams{})
}

// Apply copies every set field onto e.
func (p UpdateEventParams) Apply(e *Event) {
	setString(&e.EventName, p.EventName)
	setString(&e.EventDate, p.EventDate)
	setString(&e.EventTime, p.EventTime)
	setString(&e.LocationName, p.LocationName)
	setString(&e.GoogleMapsURL, p.GoogleMapsURL)
	if p.EventType != nil {
		e.EventType = *p.EventType
	}
	if p.ThemeSlug != nil {
		e.ThemeSlug = *p.ThemeSlug
	}
	if p.HeroImage != nil {
		e.HeroImage = optional(*p.HeroImage)
	}
	if p.GalleryImages != nil {
		e.GalleryImages = slices.Clone(*p.GalleryImages)
	}
	if p.GalleryLayout != nil {
		e.GalleryLayout = *p.GalleryLayout
	}
	if p.BRIAccountNumber != nil {
		e.BRIAccountNumber = optional(*p.BRIAccountNumber)
	}
	if p.BRIAccountName != nil {
		e.BRIAccountName = optional(*p.BRIAccountName)
	}
	if p.ShopeePayNumber != nil {
		e.ShopeePayNumber = optional(*p.ShopeePayNumber)
	}
	if p.ShopeePayName != nil {
		e.ShopeePayName = optional(*p.ShopeePayName)
	}
}

// Clone returns a deep copy of e.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.GalleryImages = slices.Clone(e.GalleryImages)
	c.HeroImage = clonePtr(e.HeroImage)
	c.BRIAccountNumber = clonePtr(e.BRIAccountNumber)
	c.BRIAccountName = clonePtr(e.BRIAccountName)
	c.ShopeePayNumber = clonePtr(e.ShopeePayNumber)
	c.ShopeePayName = clonePtr(e.ShopeePayName)
	return &c
}

// GiftAccounts 預設禮金帳戶（主辦人未設定時顯示）
type GiftAccounts struct {
	BRIAccountNumber string
	BRIAccountName   string
	ShopeePayNumber  string
	ShopeePayName    string
}

// WithGiftDefaults returns a copy of e where every unset gift-account field is
// replaced by the matching default. e itself is never modified, so defaults
// never reach the store.
func (e *Event) WithGiftDefaults(d GiftAccounts) *Event {
	c := e.Clone()
	if c == nil {
		return nil
	}
	c.BRIAccountNumber = orDefault(c.BRIAccountNumber, d.BRIAccountNumber)
	c.BRIAccountName = orDefault(c.BRIAccountName, d.BRIAccountName)
	c.ShopeePayNumber = orDefault(c.ShopeePayNumber, d.ShopeePayNumber)
	c.ShopeePayName = orDefault(c.ShopeePayName, d.ShopeePayName)
	return c
}

func orDefault(v *string, def string) *string {
	if v != nil && *v != "" {
		return v
	}
	return &def
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// optional maps "" to nil so cleared fields read back as unset.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
