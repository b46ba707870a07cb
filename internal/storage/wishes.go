package storage

import (
	"context"
	"sort"

	"go-gin-invitation/internal/model"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
)

type wishStore struct {
	*Store
}

func (s *wishStore) Create(ctx context.Context, wish *model.Wish) (*model.Wish, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var created *model.Wish
	err := s.update(func(doc *document) error {
		gi := findIndex(doc.Guests, func(g *model.Guest) bool { return g.ID == wish.GuestID })
		if gi < 0 {
			return apperrors.ErrGuestNotFound
		}

		rec := wishRecord{
			ID:        wish.ID,
			GuestID:   wish.GuestID,
			Name:      wish.Name,
			Message:   wish.Message,
			CreatedAt: s.now(),
		}
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		doc.Wishes = append(doc.Wishes, rec)

		guest := doc.Guests[gi]
		created = toWish(rec, guest.EventID, guest.GuestName)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListByEventID resolves each wish through its guest, the same join the
// Postgres query performs.
func (s *wishStore) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Wish, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	wishes := make([]*model.Wish, 0)
	_ = s.view(func(doc *document) error {
		guests := make(map[uuid.UUID]*model.Guest)
		for i := range doc.Guests {
			if doc.Guests[i].EventID == eventID {
				guests[doc.Guests[i].ID] = &doc.Guests[i]
			}
		}
		for i := len(doc.Wishes) - 1; i >= 0; i-- {
			rec := doc.Wishes[i]
			if g, ok := guests[rec.GuestID]; ok {
				wishes = append(wishes, toWish(rec, g.EventID, g.GuestName))
			}
		}
		return nil
	})

	sort.SliceStable(wishes, func(i, j int) bool {
		return wishes[i].CreatedAt.After(wishes[j].CreatedAt)
	})
	return wishes, nil
}

func toWish(rec wishRecord, eventID uuid.UUID, guestName string) *model.Wish {
	return &model.Wish{
		ID:        rec.ID,
		GuestID:   rec.GuestID,
		EventID:   eventID,
		Name:      rec.Name,
		Message:   rec.Message,
		GuestName: guestName,
		CreatedAt: rec.CreatedAt,
	}
}
