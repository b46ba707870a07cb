package model

import (
	"strings"

	"go-gin-invitation/internal/theme"
)

// Invitation 由 slug 解析出的 (活動, 賓客) 配對
type Invitation struct {
	Event *Event `json:"event"`
	Guest *Guest `json:"guest"`
}

// InvitationView 公開邀請頁所需的完整資料
type InvitationView struct {
	Event    *Event          `json:"event"`
	Guest    *Guest          `json:"guest"`
	Template *theme.Template `json:"template"`
	Quote    *theme.Quote    `json:"quote,omitempty"`
	Link     string          `json:"link"`
}

// DispatchChannel 邀請函發送管道
type DispatchChannel string

const (
	ChannelWhatsApp  DispatchChannel = "whatsapp"
	ChannelInstagram DispatchChannel = "instagram"
)

// DispatchJob 一則待發送的邀請訊息
type DispatchJob struct {
	RequestID string          `json:"request_id"`
	EventID   string          `json:"event_id"`
	GuestID   string          `json:"guest_id"`
	GuestName string          `json:"guest_name"`
	Channel   DispatchChannel `json:"channel"`
	Recipient string          `json:"recipient"`
	Message   string          `json:"message"`
	Link      string          `json:"link"`
}

// DispatchRequest 主辦人發送邀請；GuestIDs 為空時發送給全部賓客
type DispatchRequest struct {
	GuestIDs []string `json:"guest_ids"`
}

// InvitationLink is the public URL of a guest's invitation page.
func InvitationLink(origin, slug string) string {
	return strings.TrimRight(origin, "/") + "/invitation/" + slug
}
