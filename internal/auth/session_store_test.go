package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/testutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionFixture(expiresAt time.Time) *model.Session {
	return &model.Session{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Email:       "host@example.com",
		AccessToken: "token",
		ExpiresAt:   expiresAt,
	}
}

var testRdb *redis.Client

func TestMain(m *testing.M) {
	rdb, cleanup, err := testutil.SetupRedisOnly()
	if err == nil {
		testRdb = rdb
	}

	code := m.Run()

	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}

func TestRedisSessionStore(t *testing.T) {
	if testRdb == nil {
		t.Skip("redis not available")
	}
	ctx := context.Background()
	store := NewRedisSessionStore(testRdb)

	session := sessionFixture(time.Now().Add(time.Minute))
	require.NoError(t, store.Save(ctx, session))
	defer store.Delete(ctx, session.ID)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)

	ttl, err := testRdb.TTL(ctx, "session:"+session.ID.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// 已過期的 session 不寫入
	expired := sessionFixture(time.Now().Add(-time.Minute))
	require.NoError(t, store.Save(ctx, expired))
	_, err = store.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
