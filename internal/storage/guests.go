package storage

import (
	"context"
	"slices"
	"sort"

	"go-gin-invitation/internal/model"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
)

type guestStore struct {
	*Store
}

func (s *guestStore) Create(ctx context.Context, guest *model.Guest) (*model.Guest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var created *model.Guest
	err := s.update(func(doc *document) error {
		if findIndex(doc.Events, func(e *model.Event) bool { return e.ID == guest.EventID }) < 0 {
			return apperrors.ErrEventNotFound
		}
		if findIndex(doc.Guests, func(g *model.Guest) bool { return g.UniqueSlug == guest.UniqueSlug }) >= 0 {
			return apperrors.ErrSlugTaken
		}

		g := guest.Clone()
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		if g.StatusRSVP == "" {
			g.StatusRSVP = model.RSVPPending
		}
		g.PhoneNumber = emptyToNil(g.PhoneNumber)
		g.Instagram = emptyToNil(g.Instagram)
		now := s.now()
		g.CreatedAt, g.UpdatedAt = now, now

		doc.Guests = append(doc.Guests, *g)
		created = g.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *guestStore) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Guest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	guests := make([]*model.Guest, 0)
	_ = s.view(func(doc *document) error {
		for i := range doc.Guests {
			if doc.Guests[i].EventID == eventID {
				guests = append(guests, doc.Guests[i].Clone())
			}
		}
		return nil
	})

	sort.SliceStable(guests, func(i, j int) bool {
		return guests[i].GuestName < guests[j].GuestName
	})
	return guests, nil
}

func (s *guestStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	return s.findOne(ctx, func(g *model.Guest) bool { return g.ID == id })
}

func (s *guestStore) FindBySlug(ctx context.Context, slug string) (*model.Guest, error) {
	return s.findOne(ctx, func(g *model.Guest) bool { return g.UniqueSlug == slug })
}

func (s *guestStore) findOne(ctx context.Context, match func(*model.Guest) bool) (*model.Guest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var found *model.Guest
	err := s.view(func(doc *document) error {
		i := findIndex(doc.Guests, match)
		if i < 0 {
			return apperrors.ErrGuestNotFound
		}
		found = doc.Guests[i].Clone()
		return nil
	})
	return found, err
}

func (s *guestStore) UpdateRSVP(ctx context.Context, slug string, status model.RSVPStatus) (*model.Guest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var updated *model.Guest
	err := s.update(func(doc *document) error {
		i := findIndex(doc.Guests, func(g *model.Guest) bool { return g.UniqueSlug == slug })
		if i < 0 {
			return apperrors.ErrGuestNotFound
		}
		doc.Guests[i].StatusRSVP = status
		doc.Guests[i].UpdatedAt = s.now()
		updated = doc.Guests[i].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *guestStore) DeleteCascade(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var deleted *model.Guest
	err := s.update(func(doc *document) error {
		i := findIndex(doc.Guests, func(g *model.Guest) bool { return g.ID == id })
		if i < 0 {
			return apperrors.ErrGuestNotFound
		}
		deleted = doc.Guests[i].Clone()

		doc.Wishes = slices.DeleteFunc(doc.Wishes, func(w wishRecord) bool {
			return w.GuestID == id
		})
		doc.Guests = slices.Delete(doc.Guests, i, i+1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
