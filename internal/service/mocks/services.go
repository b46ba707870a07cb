package mocks

import (
	"context"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type EventServiceMock struct {
	mock.Mock
}

func (m *EventServiceMock) Create(ctx context.Context, userID uuid.UUID, input service.EventInput) (*model.Event, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Event, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *EventServiceMock) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) GetOwned(ctx context.Context, userID, id uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Update(ctx context.Context, id uuid.UUID, patch service.EventPatch) (*model.Event, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type GuestServiceMock struct {
	mock.Mock
}

func (m *GuestServiceMock) Create(ctx context.Context, eventID uuid.UUID, input service.GuestInput) (*model.Guest, error) {
	args := m.Called(ctx, eventID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) Import(ctx context.Context, eventID uuid.UUID, lines []string) ([]*model.Guest, error) {
	args := m.Called(ctx, eventID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Guest, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) GetByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) GetBySlug(ctx context.Context, slug string) (*model.Invitation, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *GuestServiceMock) UpdateRSVP(ctx context.Context, slug string, status string) (*model.Guest, error) {
	args := m.Called(ctx, slug, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *GuestServiceMock) ExportCSV(ctx context.Context, eventID uuid.UUID, origin string) ([]byte, error) {
	args := m.Called(ctx, eventID, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type WishServiceMock struct {
	mock.Mock
}

func (m *WishServiceMock) Create(ctx context.Context, guestID uuid.UUID, name, message string) (*model.Wish, error) {
	args := m.Called(ctx, guestID, name, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wish), args.Error(1)
}

func (m *WishServiceMock) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Wish, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Wish), args.Error(1)
}

type InvitationServiceMock struct {
	mock.Mock
}

func (m *InvitationServiceMock) Resolve(ctx context.Context, slug string) (*model.InvitationView, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InvitationView), args.Error(1)
}

func (m *InvitationServiceMock) Link(slug string) string {
	args := m.Called(slug)
	return args.String(0)
}

func (m *InvitationServiceMock) QRCode(ctx context.Context, slug string, size int) ([]byte, error) {
	args := m.Called(ctx, slug, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *InvitationServiceMock) RSVP(ctx context.Context, slug string, status string) (*model.Guest, error) {
	args := m.Called(ctx, slug, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *InvitationServiceMock) CreateWish(ctx context.Context, slug, name, message string) (*model.PublicWish, error) {
	args := m.Called(ctx, slug, name, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicWish), args.Error(1)
}

func (m *InvitationServiceMock) ListWishes(ctx context.Context, slug string) ([]model.PublicWish, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PublicWish), args.Error(1)
}

func (m *InvitationServiceMock) Dispatch(ctx context.Context, eventID uuid.UUID, guestIDs []uuid.UUID) (int, error) {
	args := m.Called(ctx, eventID, guestIDs)
	return args.Int(0), args.Error(1)
}

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) SignUp(ctx context.Context, email, password string) (*model.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResult), args.Error(1)
}

func (m *AuthServiceMock) SignInWithPassword(ctx context.Context, email, password string) (*model.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResult), args.Error(1)
}

func (m *AuthServiceMock) GetSession(ctx context.Context, token string) (*model.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *AuthServiceMock) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *AuthServiceMock) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *AuthServiceMock) OnAuthStateChange(listener service.AuthListener) func() {
	args := m.Called(listener)
	if fn, ok := args.Get(0).(func()); ok {
		return fn
	}
	return func() {}
}

var (
	_ service.EventService      = (*EventServiceMock)(nil)
	_ service.GuestService      = (*GuestServiceMock)(nil)
	_ service.WishService       = (*WishServiceMock)(nil)
	_ service.InvitationService = (*InvitationServiceMock)(nil)
	_ service.AuthService       = (*AuthServiceMock)(nil)
)
