package storage

import (
	"context"
	"slices"
	"sort"

	"go-gin-invitation/internal/model"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
)

type eventStore struct {
	*Store
}

func (s *eventStore) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var created *model.Event
	err := s.update(func(doc *document) error {
		if findIndex(doc.Users, func(u *userRecord) bool { return u.ID == event.UserID }) < 0 {
			return apperrors.ErrUserNotFound
		}

		e := event.Clone()
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		now := s.now()
		e.CreatedAt, e.UpdatedAt = now, now
		normalizeEvent(e)

		doc.Events = append(doc.Events, *e)
		created = e.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *eventStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	events := make([]*model.Event, 0)
	_ = s.view(func(doc *document) error {
		// newest inserted first so equal timestamps keep a stable order
		for i := len(doc.Events) - 1; i >= 0; i-- {
			if doc.Events[i].UserID == userID {
				events = append(events, doc.Events[i].Clone())
			}
		}
		return nil
	})

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (s *eventStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}

	var found *model.Event
	err := s.view(func(doc *document) error {
		i := findIndex(doc.Events, func(e *model.Event) bool { return e.ID == id })
		if i < 0 {
			return apperrors.ErrEventNotFound
		}
		found = doc.Events[i].Clone()
		return nil
	})
	return found, err
}

func (s *eventStore) Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Backend(err)
	}
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}

	var updated *model.Event
	err := s.update(func(doc *document) error {
		i := findIndex(doc.Events, func(e *model.Event) bool { return e.ID == id })
		if i < 0 {
			return apperrors.ErrEventNotFound
		}
		e := doc.Events[i].Clone()
		params.Apply(e)
		e.UpdatedAt = s.now()
		normalizeEvent(e)

		doc.Events[i] = *e
		updated = e.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *eventStore) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Backend(err)
	}

	return s.update(func(doc *document) error {
		i := findIndex(doc.Events, func(e *model.Event) bool { return e.ID == id })
		if i < 0 {
			return apperrors.ErrEventNotFound
		}

		guestIDs := make(map[uuid.UUID]struct{})
		for _, g := range doc.Guests {
			if g.EventID == id {
				guestIDs[g.ID] = struct{}{}
			}
		}
		doc.Wishes = slices.DeleteFunc(doc.Wishes, func(w wishRecord) bool {
			_, ok := guestIDs[w.GuestID]
			return ok
		})
		doc.Guests = slices.DeleteFunc(doc.Guests, func(g model.Guest) bool {
			return g.EventID == id
		})
		doc.Events = slices.Delete(doc.Events, i, i+1)
		return nil
	})
}

// normalizeEvent mirrors what the Postgres columns do: empty optional values
// are stored as unset and the gallery is never nil.
func normalizeEvent(e *model.Event) {
	e.HeroImage = emptyToNil(e.HeroImage)
	e.BRIAccountNumber = emptyToNil(e.BRIAccountNumber)
	e.BRIAccountName = emptyToNil(e.BRIAccountName)
	e.ShopeePayNumber = emptyToNil(e.ShopeePayNumber)
	e.ShopeePayName = emptyToNil(e.ShopeePayName)
	if e.GalleryImages == nil {
		e.GalleryImages = []string{}
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
