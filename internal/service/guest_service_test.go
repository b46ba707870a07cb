package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"go-gin-invitation/internal/cache"
	"go-gin-invitation/internal/model"
	repoMocks "go-gin-invitation/internal/repository/mocks"
	"go-gin-invitation/internal/service"
	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGuestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - slug and optional contacts", func(t *testing.T) {
		env := newTestEnv(t, false)
		u := env.createUser(t, "host@example.com")
		event := env.createEvent(t, u.ID, "Budi & Ani")

		guest, err := env.guests.Create(ctx, event.ID, service.GuestInput{
			GuestName:   " John Doe ",
			PhoneNumber: "6281234567890",
			Instagram:   "",
		})

		require.NoError(t, err)
		assert.Equal(t, "John Doe", guest.GuestName)
		assert.Regexp(t, `^john-doe-[0-9a-z]{5}$`, guest.UniqueSlug)
		assert.Equal(t, model.RSVPPending, guest.StatusRSVP)
		require.NotNil(t, guest.PhoneNumber)
		assert.Equal(t, "6281234567890", *guest.PhoneNumber)
		assert.Nil(t, guest.Instagram)
	})

	t.Run("Failed - empty name", func(t *testing.T) {
		env := newTestEnv(t, false)

		_, err := env.guests.Create(ctx, uuid.New(), service.GuestInput{GuestName: "  "})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Failed - unknown event", func(t *testing.T) {
		env := newTestEnv(t, false)

		_, err := env.guests.Create(ctx, uuid.New(), service.GuestInput{GuestName: "John"})
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestGuestService_CreateSlugRetry(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()

	t.Run("Success - retries a taken slug", func(t *testing.T) {
		repo := new(repoMocks.GuestRepositoryMock)
		svc := service.NewGuestService(repo, new(repoMocks.EventRepositoryMock), cache.NewNoopInvitationCache(), testGiftDefaults)

		repo.On("Create", ctx, mock.Anything).Return(nil, apperrors.ErrSlugTaken).Twice()
		repo.On("Create", ctx, mock.Anything).Return(&model.Guest{GuestName: "John Doe"}, nil).Once()

		guest, err := svc.Create(ctx, eventID, service.GuestInput{GuestName: "John Doe"})

		require.NoError(t, err)
		assert.Equal(t, "John Doe", guest.GuestName)
		repo.AssertNumberOfCalls(t, "Create", 3)
	})

	t.Run("Failed - gives up after MaxSlugAttempts", func(t *testing.T) {
		repo := new(repoMocks.GuestRepositoryMock)
		svc := service.NewGuestService(repo, new(repoMocks.EventRepositoryMock), cache.NewNoopInvitationCache(), testGiftDefaults)

		repo.On("Create", ctx, mock.Anything).Return(nil, apperrors.ErrSlugTaken)

		_, err := svc.Create(ctx, eventID, service.GuestInput{GuestName: "John Doe"})

		assert.ErrorIs(t, err, apperrors.ErrSlugTaken)
		repo.AssertNumberOfCalls(t, "Create", service.MaxSlugAttempts)
	})

	t.Run("Failed - other errors are not retried", func(t *testing.T) {
		repo := new(repoMocks.GuestRepositoryMock)
		svc := service.NewGuestService(repo, new(repoMocks.EventRepositoryMock), cache.NewNoopInvitationCache(), testGiftDefaults)

		repo.On("Create", ctx, mock.Anything).Return(nil, apperrors.ErrBackendUnavailable).Once()

		_, err := svc.Create(ctx, eventID, service.GuestInput{GuestName: "John Doe"})

		assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
		repo.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestParseImportLine(t *testing.T) {
	assert.Equal(t, service.GuestInput{GuestName: "Jane", PhoneNumber: "6281234567890", Instagram: "@jane"},
		service.ParseImportLine("Jane, 6281234567890, @jane"))
	assert.Equal(t, service.GuestInput{GuestName: "Ahmad"}, service.ParseImportLine("Ahmad"))
	assert.Equal(t, service.GuestInput{GuestName: "Rudi", Instagram: "@rudi"}, service.ParseImportLine("Rudi,,@rudi,extra"))
}

func TestGuestService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - skips blank lines", func(t *testing.T) {
		env := newTestEnv(t, false)
		u := env.createUser(t, "host@example.com")
		event := env.createEvent(t, u.ID, "Budi & Ani")

		guests, err := env.guests.Import(ctx, event.ID, []string{"Jane, 6281234567890, @jane", "  ", "Ahmad"})

		require.NoError(t, err)
		require.Len(t, guests, 2)
		assert.Equal(t, "Jane", guests[0].GuestName)
		assert.Equal(t, "@jane", *guests[0].Instagram)
		assert.Equal(t, "Ahmad", guests[1].GuestName)
		assert.Nil(t, guests[1].PhoneNumber)

		listed, err := env.guests.ListByEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 2)
	})

	t.Run("Failed - stops at the first bad line and keeps earlier guests", func(t *testing.T) {
		env := newTestEnv(t, false)
		u := env.createUser(t, "host@example.com")
		event := env.createEvent(t, u.ID, "Budi & Ani")

		guests, err := env.guests.Import(ctx, event.ID, []string{"Jane", ", 628111", "Ahmad"})

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Contains(t, err.Error(), "line 2")
		require.Len(t, guests, 1)
		assert.Equal(t, "Jane", guests[0].GuestName)
	})
}

func TestGuestService_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - enriched and cached", func(t *testing.T) {
		env := newTestEnv(t, false)
		u := env.createUser(t, "host@example.com")
		event := env.createEvent(t, u.ID, "Budi & Ani")
		guest := env.createGuest(t, event.ID, service.GuestInput{GuestName: "John Doe"})

		inv, err := env.guests.GetBySlug(ctx, guest.UniqueSlug)
		require.NoError(t, err)
		assert.Equal(t, "Budi & Ani", inv.Event.EventName)
		assert.Equal(t, "John Doe", inv.Guest.GuestName)
		assert.Equal(t, "Nama Anda (SP)", *inv.Event.ShopeePayName)

		again, err := env.guests.GetBySlug(ctx, guest.UniqueSlug)
		require.NoError(t, err)
		assert.Equal(t, "Nama Anda (SP)", *again.Event.ShopeePayName)
		assert.Equal(t, 1, env.cache.hits)
		assert.Equal(t, 1, env.cache.writes)

		// 快取裡存的是原始資料
		assert.Nil(t, env.cache.entries[guest.UniqueSlug].Event.ShopeePayName)
	})

	t.Run("Failed - unknown slug", func(t *testing.T) {
		env := newTestEnv(t, false)

		_, err := env.guests.GetBySlug(ctx, "nonexistent-xxxxx")
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}

func TestGuestService_GetBySlug_invalidatedDuringRead(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	stale := &model.Guest{ID: uuid.New(), EventID: eventID, GuestName: "John Doe", UniqueSlug: "john-doe-ab12c", StatusRSVP: model.RSVPPending}

	t.Run("RSVP lands between the store read and the cache write", func(t *testing.T) {
		c := newRecordingCache()
		guests := new(repoMocks.GuestRepositoryMock)
		events := new(repoMocks.EventRepositoryMock)
		svc := service.NewGuestService(guests, events, c, testGiftDefaults)

		// 讀到舊狀態之後，另一個請求更新 RSVP 並清掉 slug
		guests.On("FindBySlug", mock.Anything, stale.UniqueSlug).
			Run(func(mock.Arguments) { _ = c.InvalidateSlug(ctx, stale.UniqueSlug) }).
			Return(stale, nil).Once()
		events.On("FindByID", mock.Anything, eventID).Return(&model.Event{ID: eventID, EventName: "Budi & Ani"}, nil).Once()

		inv, err := svc.GetBySlug(ctx, stale.UniqueSlug)

		require.NoError(t, err)
		assert.Equal(t, model.RSVPPending, inv.Guest.StatusRSVP)
		assert.Equal(t, 1, c.skippedWrites)
		assert.Equal(t, 0, c.writes)
		assert.NotContains(t, c.entries, stale.UniqueSlug, "舊資料不應寫回快取")
		guests.AssertExpectations(t)
	})

	t.Run("read started after the invalidation is cached", func(t *testing.T) {
		c := newRecordingCache()
		require.NoError(t, c.InvalidateSlug(ctx, stale.UniqueSlug))

		guests := new(repoMocks.GuestRepositoryMock)
		events := new(repoMocks.EventRepositoryMock)
		svc := service.NewGuestService(guests, events, c, testGiftDefaults)
		var readStarted time.Time
		guests.On("FindBySlug", mock.Anything, stale.UniqueSlug).
			Run(func(mock.Arguments) { readStarted = time.Now() }).
			Return(stale, nil).Once()
		events.On("FindByID", mock.Anything, eventID).Return(&model.Event{ID: eventID}, nil).Once()

		_, err := svc.GetBySlug(ctx, stale.UniqueSlug)

		require.NoError(t, err)
		assert.Equal(t, 1, c.writes)
		require.Len(t, c.setReadAts, 1)
		assert.False(t, c.setReadAts[0].After(readStarted), "readAt 必須在讀資料庫之前取得")
	})
}

func TestGuestService_UpdateRSVP(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	u := env.createUser(t, "host@example.com")
	event := env.createEvent(t, u.ID, "Budi & Ani")
	guest := env.createGuest(t, event.ID, service.GuestInput{GuestName: "John Doe"})

	_, err := env.guests.GetBySlug(ctx, guest.UniqueSlug)
	require.NoError(t, err)

	// 還沒回覆時重送 Pending 不算錯誤，也不會清快取
	unchanged, err := env.guests.UpdateRSVP(ctx, guest.UniqueSlug, "Pending")
	require.NoError(t, err)
	assert.Equal(t, model.RSVPPending, unchanged.StatusRSVP)
	assert.NotContains(t, env.cache.invalidatedSlugs, guest.UniqueSlug)

	updated, err := env.guests.UpdateRSVP(ctx, guest.UniqueSlug, "Hadir")
	require.NoError(t, err)
	assert.Equal(t, model.RSVPHadir, updated.StatusRSVP)
	assert.Contains(t, env.cache.invalidatedSlugs, guest.UniqueSlug)

	inv, err := env.guests.GetBySlug(ctx, guest.UniqueSlug)
	require.NoError(t, err)
	assert.Equal(t, model.RSVPHadir, inv.Guest.StatusRSVP)

	updated, err = env.guests.UpdateRSVP(ctx, guest.UniqueSlug, "Tidak Hadir")
	require.NoError(t, err)
	assert.Equal(t, model.RSVPTidakHadir, updated.StatusRSVP)

	_, err = env.guests.UpdateRSVP(ctx, guest.UniqueSlug, "Pending")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRSVPTransition)

	_, err = env.guests.UpdateRSVP(ctx, guest.UniqueSlug, "Maybe")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.guests.UpdateRSVP(ctx, "nonexistent-xxxxx", "Hadir")
	assert.ErrorIs(t, err, apperrors.ErrGuestNotFound)
}

func TestGuestService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	u := env.createUser(t, "host@example.com")
	event := env.createEvent(t, u.ID, "Budi & Ani")
	guest := env.createGuest(t, event.ID, service.GuestInput{GuestName: "John Doe"})
	other := env.createGuest(t, event.ID, service.GuestInput{GuestName: "Jane"})
	_, err := env.wishes.Create(ctx, guest.ID, "John", "Selamat")
	require.NoError(t, err)
	_, err = env.wishes.Create(ctx, other.ID, "Jane", "Bahagia")
	require.NoError(t, err)

	require.NoError(t, env.guests.Delete(ctx, guest.ID))

	assert.Contains(t, env.cache.invalidatedSlugs, guest.UniqueSlug)
	_, err = env.guests.GetByID(ctx, guest.ID)
	assert.ErrorIs(t, err, apperrors.ErrGuestNotFound)

	wishes, err := env.wishes.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, wishes, 1)
	assert.Equal(t, "Jane", wishes[0].Name)

	assert.ErrorIs(t, env.guests.Delete(ctx, guest.ID), apperrors.ErrGuestNotFound)
}

func TestGuestService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	u := env.createUser(t, "host@example.com")
	event := env.createEvent(t, u.ID, "Budi & Ani")
	guest := env.createGuest(t, event.ID, service.GuestInput{GuestName: "Doe, John"})

	data, err := env.guests.ExportCSV(ctx, event.ID, testOrigin)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Nama", "Status", "Link Undangan"}, rows[0])
	assert.Equal(t, []string{"Doe, John", "Pending", testOrigin + "/invitation/" + guest.UniqueSlug}, rows[1])
}
