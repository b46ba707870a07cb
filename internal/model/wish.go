package model

import (
	"time"

	"github.com/google/uuid"
)

// UnknownGuestName 找不到留言賓客時顯示的名稱
const UnknownGuestName = "Unknown"

// Wish 祝福留言；所屬賓客透過 guest_id，event_id 由 guests 表推導
type Wish struct {
	ID        uuid.UUID `json:"id" db:"id"`
	GuestID   uuid.UUID `json:"guest_id" db:"guest_id"`
	EventID   uuid.UUID `json:"event_id" db:"-"`
	Name      string    `json:"name" db:"name"`
	Message   string    `json:"message" db:"message"`
	GuestName string    `json:"guest_name" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateWishRequest 留言請求
type CreateWishRequest struct {
	Name    string `json:"name" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// PublicWish 公開頁面的留言（不含任何 ID）
type PublicWish struct {
	Name      string    `json:"name"`
	GuestName string    `json:"guest_name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic strips identifiers before a wish is shown on the public page.
func (w *Wish) ToPublic() PublicWish {
	return PublicWish{
		Name:      w.Name,
		GuestName: w.GuestName,
		Message:   w.Message,
		CreatedAt: w.CreatedAt,
	}
}
