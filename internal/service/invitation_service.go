package service

import (
	"context"
	"fmt"
	"slices"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/notify"
	"go-gin-invitation/internal/queue"
	"go-gin-invitation/internal/theme"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

// InvitationService 公開邀請頁：只能透過 slug 存取單一 (活動, 賓客)，不提供列表
type InvitationService interface {
	Resolve(ctx context.Context, slug string) (*model.InvitationView, error)
	Link(slug string) string
	QRCode(ctx context.Context, slug string, size int) ([]byte, error)
	RSVP(ctx context.Context, slug string, status string) (*model.Guest, error)
	CreateWish(ctx context.Context, slug, name, message string) (*model.PublicWish, error)
	ListWishes(ctx context.Context, slug string) ([]model.PublicWish, error)
	// Dispatch 為每位賓客的每個聯絡方式排入一個發送任務；guestIDs 為空時發給全部賓客
	Dispatch(ctx context.Context, eventID uuid.UUID, guestIDs []uuid.UUID) (int, error)
}

type InvitationServiceImpl struct {
	events EventService
	guests GuestService
	wishes WishService
	queue  queue.DispatchQueue
	origin string
}

func NewInvitationService(events EventService, guests GuestService, wishes WishService, dispatchQueue queue.DispatchQueue, origin string) InvitationService {
	return &InvitationServiceImpl{
		events: events,
		guests: guests,
		wishes: wishes,
		queue:  dispatchQueue,
		origin: origin,
	}
}

// notFound re-raises any not-found from the guest lookup as the public
// "invitation not found" condition.
func notFound(err error) error {
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		return apperrors.ErrInvitationNotFound
	}
	return err
}

func (s *InvitationServiceImpl) resolve(ctx context.Context, slug string) (*model.Invitation, error) {
	inv, err := s.guests.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	return inv, nil
}

func (s *InvitationServiceImpl) Resolve(ctx context.Context, slug string) (*model.InvitationView, error) {
	inv, err := s.resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	eventType := string(inv.Event.EventType)
	return &model.InvitationView{
		Event:    inv.Event,
		Guest:    inv.Guest,
		Template: theme.ForEventType(eventType),
		Quote:    theme.QuoteFor(eventType),
		Link:     s.Link(slug),
	}, nil
}

func (s *InvitationServiceImpl) Link(slug string) string {
	return model.InvitationLink(s.origin, slug)
}

func (s *InvitationServiceImpl) QRCode(ctx context.Context, slug string, size int) ([]byte, error) {
	if _, err := s.resolve(ctx, slug); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	size = min(max(size, minQRSize), maxQRSize)

	png, err := qrcode.Encode(s.Link(slug), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func (s *InvitationServiceImpl) RSVP(ctx context.Context, slug string, status string) (*model.Guest, error) {
	guest, err := s.guests.UpdateRSVP(ctx, slug, status)
	if err != nil {
		return nil, notFound(err)
	}
	return guest, nil
}

func (s *InvitationServiceImpl) CreateWish(ctx context.Context, slug, name, message string) (*model.PublicWish, error) {
	inv, err := s.resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	wish, err := s.wishes.Create(ctx, inv.Guest.ID, name, message)
	if err != nil {
		return nil, notFound(err)
	}
	public := wish.ToPublic()
	return &public, nil
}

func (s *InvitationServiceImpl) ListWishes(ctx context.Context, slug string) ([]model.PublicWish, error) {
	inv, err := s.resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	wishes, err := s.wishes.ListByEvent(ctx, inv.Event.ID)
	if err != nil {
		return nil, err
	}

	out := make([]model.PublicWish, 0, len(wishes))
	for _, w := range wishes {
		out = append(out, w.ToPublic())
	}
	return out, nil
}

func (s *InvitationServiceImpl) Dispatch(ctx context.Context, eventID uuid.UUID, guestIDs []uuid.UUID) (int, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	guests, err := s.guests.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if len(guestIDs) > 0 {
		guests = slices.DeleteFunc(guests, func(g *model.Guest) bool {
			return !slices.Contains(guestIDs, g.ID)
		})
		if len(guests) == 0 {
			return 0, apperrors.ErrGuestNotFound
		}
	}

	queued := 0
	for _, g := range guests {
		link := s.Link(g.UniqueSlug)
		base := model.DispatchJob{
			EventID:   eventID.String(),
			GuestID:   g.ID.String(),
			GuestName: g.GuestName,
			Message:   notify.InvitationMessage(g.GuestName, event.EventName, link),
			Link:      link,
		}

		var jobs []model.DispatchJob
		if g.HasPhone() {
			job := base
			job.Channel, job.Recipient = model.ChannelWhatsApp, *g.PhoneNumber
			jobs = append(jobs, job)
		}
		if g.HasInstagram() {
			job := base
			job.Channel, job.Recipient = model.ChannelInstagram, *g.Instagram
			jobs = append(jobs, job)
		}

		for i := range jobs {
			jobs[i].RequestID = uuid.New().String()
			if err := s.queue.Publish(ctx, &jobs[i]); err != nil {
				return queued, apperrors.Backend(fmt.Errorf("publish dispatch job: %w", err))
			}
			queued++
		}
	}
	return queued, nil
}
