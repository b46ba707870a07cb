package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-gin-invitation/internal/auth"
	"go-gin-invitation/internal/cache"
	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/notify"
	"go-gin-invitation/internal/queue"
	"go-gin-invitation/internal/service"
	"go-gin-invitation/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://undangan.example.com"

var testGiftDefaults = model.GiftAccounts{
	BRIAccountNumber: "1234567890",
	BRIAccountName:   "Nama Anda (BRI)",
	ShopeePayNumber:  "081234567890",
	ShopeePayName:    "Nama Anda (SP)",
}

// testEnv 以記憶體 store 組出完整的 service 層
type testEnv struct {
	store       *storage.Store
	cache       *recordingCache
	queue       queue.DispatchQueue
	mailer      *notify.NoopMailer
	events      service.EventService
	guests      service.GuestService
	wishes      service.WishService
	invitations service.InvitationService
	auth        service.AuthService
}

func newTestEnv(t *testing.T, requireVerification bool) *testEnv {
	t.Helper()
	store := storage.NewMemoryStore()
	c := newRecordingCache()
	q := queue.NewDispatchQueue(64, queue.RetryPolicy{MaxAttempts: 3})
	mailer := &notify.NoopMailer{}

	events := service.NewEventService(store.Events(), c, testGiftDefaults)
	guests := service.NewGuestService(store.Guests(), store.Events(), c, testGiftDefaults)
	wishes := service.NewWishService(store.Wishes())

	return &testEnv{
		store:       store,
		cache:       c,
		queue:       q,
		mailer:      mailer,
		events:      events,
		guests:      guests,
		wishes:      wishes,
		invitations: service.NewInvitationService(events, guests, wishes, q, testOrigin),
		auth: service.NewAuthService(
			store.Users(),
			auth.NewMemorySessionStore(),
			auth.NewJWTIssuer("test-secret"),
			auth.NewBcryptHasher(4),
			mailer,
			service.AuthConfig{
				SessionTTL:               time.Hour,
				RequireEmailVerification: requireVerification,
				PublicOrigin:             testOrigin,
			},
		),
	}
}

func (e *testEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := e.store.Users().Create(context.Background(), &model.User{Email: email, EmailVerified: true})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createEvent(t *testing.T, userID uuid.UUID, name string) *model.Event {
	t.Helper()
	ev, err := e.events.Create(context.Background(), userID, service.EventInput{EventName: name})
	require.NoError(t, err)
	return ev
}

func (e *testEnv) createGuest(t *testing.T, eventID uuid.UUID, input service.GuestInput) *model.Guest {
	t.Helper()
	g, err := e.guests.Create(context.Background(), eventID, input)
	require.NoError(t, err)
	return g
}

// recordingCache 記憶體版快取，記錄失效呼叫；讀取開始後才失效的資料不寫入
type recordingCache struct {
	mu                 sync.Mutex
	entries            map[string]*model.Invitation
	invalidatedSlugs   []string
	invalidatedEvents  []uuid.UUID
	slugInvalidatedAt  map[string]time.Time
	eventInvalidatedAt map[uuid.UUID]time.Time
	setReadAts         []time.Time
	gets, hits, writes int
	skippedWrites      int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		entries:            make(map[string]*model.Invitation),
		slugInvalidatedAt:  make(map[string]time.Time),
		eventInvalidatedAt: make(map[uuid.UUID]time.Time),
	}
}

func (c *recordingCache) Get(_ context.Context, slug string) (*model.Invitation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	inv, ok := c.entries[slug]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	c.hits++
	return &model.Invitation{Event: inv.Event.Clone(), Guest: inv.Guest.Clone()}, nil
}

func (c *recordingCache) Set(_ context.Context, inv *model.Invitation, readAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setReadAts = append(c.setReadAts, readAt)
	if at, ok := c.slugInvalidatedAt[inv.Guest.UniqueSlug]; ok && at.After(readAt) {
		c.skippedWrites++
		return nil
	}
	if at, ok := c.eventInvalidatedAt[inv.Event.ID]; ok && at.After(readAt) {
		c.skippedWrites++
		return nil
	}
	c.writes++
	c.entries[inv.Guest.UniqueSlug] = &model.Invitation{Event: inv.Event.Clone(), Guest: inv.Guest.Clone()}
	return nil
}

func (c *recordingCache) InvalidateSlug(_ context.Context, slug string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, slug)
	c.invalidatedSlugs = append(c.invalidatedSlugs, slug)
	c.slugInvalidatedAt[slug] = time.Now()
	return nil
}

func (c *recordingCache) InvalidateEvent(_ context.Context, eventID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for slug, inv := range c.entries {
		if inv.Event.ID == eventID {
			delete(c.entries, slug)
		}
	}
	c.invalidatedEvents = append(c.invalidatedEvents, eventID)
	c.eventInvalidatedAt[eventID] = time.Now()
	return nil
}

func strPtr(s string) *string { return &s }
