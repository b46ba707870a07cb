package model

import (
	"fmt"
	"time"

	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
)

// RSVPStatus 出席回覆狀態
type RSVPStatus string

const (
	RSVPPending    RSVPStatus = "Pending"
	RSVPHadir      RSVPStatus = "Hadir"
	RSVPTidakHadir RSVPStatus = "Tidak Hadir"
)

// IsValid 驗證狀態是否有效
func (s RSVPStatus) IsValid() bool {
	switch s {
	case RSVPPending, RSVPHadir, RSVPTidakHadir:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
// Pending 一旦離開就無法回到；重送相同狀態視為不變更；已回覆的賓客可以無限次改變答案
func (s RSVPStatus) CanTransitionTo(target RSVPStatus) bool {
	transitions := map[RSVPStatus][]RSVPStatus{
		RSVPPending:    {RSVPPending, RSVPHadir, RSVPTidakHadir},
		RSVPHadir:      {RSVPHadir, RSVPTidakHadir},
		RSVPTidakHadir: {RSVPHadir, RSVPTidakHadir},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// ParseRSVPStatus 解析賓客送出的回覆
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	status := RSVPStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown status_rsvp %q", apperrors.ErrValidation, s)
	}
	return status, nil
}

type Guest struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	EventID     uuid.UUID  `json:"event_id" db:"event_id"`
	GuestName   string     `json:"guest_name" db:"guest_name"`
	UniqueSlug  string     `json:"unique_slug" db:"unique_slug"`
	StatusRSVP  RSVPStatus `json:"status_rsvp" db:"status_rsvp"`
	PhoneNumber *string    `json:"phone_number,omitempty" db:"phone_number"`
	Instagram   *string    `json:"instagram,omitempty" db:"instagram"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// HasPhone 是否有可用的 WhatsApp 號碼
func (g *Guest) HasPhone() bool {
	return g.PhoneNumber != nil && *g.PhoneNumber != ""
}

// HasInstagram 是否有 Instagram 帳號
func (g *Guest) HasInstagram() bool {
	return g.Instagram != nil && *g.Instagram != ""
}

// Clone returns a deep copy of g.
func (g *Guest) Clone() *Guest {
	if g == nil {
		return nil
	}
	c := *g
	c.PhoneNumber = clonePtr(g.PhoneNumber)
	c.Instagram = clonePtr(g.Instagram)
	return &c
}

// CreateGuestRequest 新增賓客請求
type CreateGuestRequest struct {
	GuestName   string `json:"guest_name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
	Instagram   string `json:"instagram"`
}

// ImportGuestsRequest 批次匯入：每行 "姓名, 電話, Instagram"
type ImportGuestsRequest struct {
	Text     string `json:"text" binding:"required"`
	Dispatch bool   `json:"dispatch"`
}

// UpdateRSVPRequest 賓客回覆
type UpdateRSVPRequest struct {
	Status string `json:"status_rsvp" binding:"required"`
}
