package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-gin-invitation/internal/model"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore 每次呼叫 now 前進一秒，讓排序可預期
func newTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path)
	require.NoError(t, err)

	clock := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func seedUser(t *testing.T, s *Store, email string) *model.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), &model.User{Email: email, PasswordHash: "hash"})
	require.NoError(t, err)
	return u
}

func seedEvent(t *testing.T, s *Store, userID uuid.UUID, name string) *model.Event {
	t.Helper()
	e, err := s.Events().Create(context.Background(), &model.Event{
		UserID:        userID,
		EventName:     name,
		EventType:     model.EventTypeWedding,
		ThemeSlug:     model.ThemeModern,
		GalleryLayout: model.GalleryMasonry,
	})
	require.NoError(t, err)
	return e
}

func seedGuest(t *testing.T, s *Store, eventID uuid.UUID, name, slug string) *model.Guest {
	t.Helper()
	g, err := s.Guests().Create(context.Background(), &model.Guest{EventID: eventID, GuestName: name, UniqueSlug: slug})
	require.NoError(t, err)
	return g
}

func TestEventStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Create requires an existing user", func(t *testing.T) {
		s := newTestStore(t, "")
		_, err := s.Events().Create(ctx, &model.Event{UserID: uuid.New(), EventName: "x"})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("Create assigns id and normalizes optional fields", func(t *testing.T) {
		s := newTestStore(t, "")
		u := seedUser(t, s, "host@example.com")
		empty := ""

		e, err := s.Events().Create(ctx, &model.Event{UserID: u.ID, EventName: "Budi & Ani", HeroImage: &empty})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Nil(t, e.HeroImage)
		assert.NotNil(t, e.GalleryImages)
		assert.False(t, e.CreatedAt.IsZero())
	})

	t.Run("ListByUserID is newest first and scoped to the user", func(t *testing.T) {
		s := newTestStore(t, "")
		u := seedUser(t, s, "a@example.com")
		other := seedUser(t, s, "b@example.com")
		first := seedEvent(t, s, u.ID, "first")
		second := seedEvent(t, s, u.ID, "second")
		seedEvent(t, s, other.ID, "other")

		events, err := s.Events().ListByUserID(ctx, u.ID)

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, second.ID, events[0].ID)
		assert.Equal(t, first.ID, events[1].ID)
	})

	t.Run("Update applies only set fields", func(t *testing.T) {
		s := newTestStore(t, "")
		u := seedUser(t, s, "host@example.com")
		e := seedEvent(t, s, u.ID, "Old")
		name := "New"

		updated, err := s.Events().Update(ctx, e.ID, model.UpdateEventParams{EventName: &name})

		require.NoError(t, err)
		assert.Equal(t, "New", updated.EventName)
		assert.Equal(t, model.ThemeModern, updated.ThemeSlug)
		assert.True(t, updated.UpdatedAt.After(e.UpdatedAt))
	})

	t.Run("Update with no fields is invalid input", func(t *testing.T) {
		s := newTestStore(t, "")
		_, err := s.Events().Update(ctx, uuid.New(), model.UpdateEventParams{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("FindByID on a missing event", func(t *testing.T) {
		s := newTestStore(t, "")
		_, err := s.Events().FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})

	t.Run("cancelled context is a backend error", func(t *testing.T) {
		s := newTestStore(t, "")
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.Events().FindByID(cctx, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	})
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")
	u := seedUser(t, s, "host@example.com")
	e := seedEvent(t, s, u.ID, "Budi & Ani")
	keep := seedEvent(t, s, u.ID, "Other")

	g1 := seedGuest(t, s, e.ID, "John Doe", "john-doe-aaaaa")
	g2 := seedGuest(t, s, e.ID, "Jane", "jane-bbbbb")
	g3 := seedGuest(t, s, keep.ID, "Ahmad", "ahmad-ccccc")
	for _, g := range []*model.Guest{g1, g2, g3} {
		_, err := s.Wishes().Create(ctx, &model.Wish{GuestID: g.ID, Name: g.GuestName, Message: "Selamat"})
		require.NoError(t, err)
	}

	t.Run("guest delete removes its wishes", func(t *testing.T) {
		deleted, err := s.Guests().DeleteCascade(ctx, g2.ID)
		require.NoError(t, err)
		assert.Equal(t, "jane-bbbbb", deleted.UniqueSlug)

		wishes, err := s.Wishes().ListByEventID(ctx, e.ID)
		require.NoError(t, err)
		require.Len(t, wishes, 1)
		assert.Equal(t, g1.ID, wishes[0].GuestID)

		_, err = s.Guests().DeleteCascade(ctx, g2.ID)
		assert.ErrorIs(t, err, apperrors.ErrGuestNotFound)
	})

	t.Run("event delete removes guests and wishes", func(t *testing.T) {
		require.NoError(t, s.Events().DeleteCascade(ctx, e.ID))

		_, err := s.Events().FindByID(ctx, e.ID)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)

		guests, err := s.Guests().ListByEventID(ctx, e.ID)
		require.NoError(t, err)
		assert.Empty(t, guests)

		wishes, err := s.Wishes().ListByEventID(ctx, e.ID)
		require.NoError(t, err)
		assert.Empty(t, wishes)

		_, err = s.Guests().FindBySlug(ctx, "john-doe-aaaaa")
		assert.ErrorIs(t, err, apperrors.ErrGuestNotFound)

		// 其他活動不受影響
		remaining, err := s.Wishes().ListByEventID(ctx, keep.ID)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)

		assert.ErrorIs(t, s.Events().DeleteCascade(ctx, e.ID), apperrors.ErrEventNotFound)
	})
}

func TestGuestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Create defaults to Pending and rejects duplicate slugs", func(t *testing.T) {
		s := newTestStore(t, "")
		u := seedUser(t, s, "host@example.com")
		e := seedEvent(t, s, u.ID, "Budi & Ani")

		g := seedGuest(t, s, e.ID, "John Doe", "john-doe-aaaaa")
		assert.Equal(t, model.RSVPPending, g.StatusRSVP)

		_, err := s.Guests().Create(ctx, &model.Guest{EventID: e.ID, GuestName: "John Doe", UniqueSlug: "john-doe-aaaaa"})
		assert.ErrorIs(t, err, apperrors.ErrSlugTaken)
	})

	t.Run("Create requires the event", func(t *testing.T) {
		s := newTestStore(t, "")
		_, err := s.Guests().Create(ctx, &model.Guest{EventID: uuid.New(), GuestName: "x", UniqueSlug: "x-aaaaa"})
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})

	t.Run("ListByEventID is sorted by name", func(t *testing.T) {
		s := newTestStore(t, "")
		u := seedUser(t, s, "host@example.com")
		e := seedEvent(t, s, u.ID, "Budi & Ani")
		seedGuest(t, s, e.ID, "Zaki", "zaki-aaaaa")
		seedGuest(t, s, e.ID, "Ahmad", "ahmad-aaaaa")
		seedGuest(t, s, e.ID, "Mira", "mira-aaaaa")

		guests, err := s.Guests().ListByEventID(ctx, e.ID)

		require.NoError(t, err)
		require.Len(t, guests, 3)
		assert.Equal(t, "Ahmad", guests[0].GuestName)
		assert.Equal(t, "Mira", guests[1].GuestName)
		assert.Equal(t, "Zaki", guests[2].GuestName)
	})

	t.Run("UpdateRSVP", func(t *testing.T) {
		s := newTestStore(t, "")
		u := seedUser(t, s, "host@example.com")
		e := seedEvent(t, s, u.ID, "Budi & Ani")
		seedGuest(t, s, e.ID, "John Doe", "john-doe-aaaaa")

		g, err := s.Guests().UpdateRSVP(ctx, "john-doe-aaaaa", model.RSVPHadir)
		require.NoError(t, err)
		assert.Equal(t, model.RSVPHadir, g.StatusRSVP)

		found, err := s.Guests().FindBySlug(ctx, "john-doe-aaaaa")
		require.NoError(t, err)
		assert.Equal(t, model.RSVPHadir, found.StatusRSVP)

		_, err = s.Guests().UpdateRSVP(ctx, "nonexistent-xxxxx", model.RSVPHadir)
		assert.ErrorIs(t, err, apperrors.ErrGuestNotFound)
	})
}

func TestWishStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")
	u := seedUser(t, s, "host@example.com")
	e := seedEvent(t, s, u.ID, "Budi & Ani")
	g := seedGuest(t, s, e.ID, "John Doe", "john-doe-aaaaa")

	_, err := s.Wishes().Create(ctx, &model.Wish{GuestID: uuid.New(), Name: "x", Message: "y"})
	assert.ErrorIs(t, err, apperrors.ErrGuestNotFound)

	first, err := s.Wishes().Create(ctx, &model.Wish{GuestID: g.ID, Name: "Rina", Message: "Selamat"})
	require.NoError(t, err)
	assert.Equal(t, e.ID, first.EventID)
	assert.Equal(t, "John Doe", first.GuestName)

	second, err := s.Wishes().Create(ctx, &model.Wish{GuestID: g.ID, Name: "Doni", Message: "Bahagia selalu"})
	require.NoError(t, err)

	wishes, err := s.Wishes().ListByEventID(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, wishes, 2)
	assert.Equal(t, second.ID, wishes[0].ID)
	assert.Equal(t, first.ID, wishes[1].ID)
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, "")

	u := seedUser(t, s, "host@example.com")
	assert.False(t, u.EmailVerified)

	_, err := s.Users().Create(ctx, &model.User{Email: "host@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)

	found, err := s.Users().FindByEmail(ctx, "host@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", found.PasswordHash)

	verified, err := s.Users().MarkEmailVerified(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	_, err = s.Users().FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "invitations.json")

	s := newTestStore(t, path)
	u := seedUser(t, s, "host@example.com")
	e := seedEvent(t, s, u.ID, "Budi & Ani")
	g := seedGuest(t, s, e.ID, "John Doe", "john-doe-aaaaa")
	_, err := s.Wishes().Create(ctx, &model.Wish{GuestID: g.ID, Name: "Rina", Message: "Selamat"})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	reopened, err := NewStore(path)
	require.NoError(t, err)

	found, err := reopened.Guests().FindBySlug(ctx, "john-doe-aaaaa")
	require.NoError(t, err)
	assert.Equal(t, g.ID, found.ID)

	user, err := reopened.Users().FindByEmail(ctx, "host@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", user.PasswordHash)

	wishes, err := reopened.Wishes().ListByEventID(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, wishes, 1)
}

func TestStore_FailedWriteLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	// 目標路徑是一個目錄，rename 會失敗
	path := filepath.Join(dir, "store.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "child"), 0755))

	s := &Store{data: &document{}, file: path, now: time.Now}

	_, err := s.Users().Create(ctx, &model.User{Email: "host@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)

	s.file = ""
	_, err = s.Users().FindByEmail(ctx, "host@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestNewStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewStore(path)
	assert.Error(t, err)
}
