package repository_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/repository"
	"go-gin-invitation/internal/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// testDB 測試用的資料庫連接池；連不上時為 nil，整合測試會被略過
var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, cleanup, err := testutil.SetupDatabaseOnly()
	if err != nil {
		log.Printf("postgres not available, repository tests will be skipped: %v", err)
	} else {
		testDB = pool
		log.Println("Running repository tests...")
	}

	code := m.Run()

	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}

// setupTestWithTruncate 清空所有測試資料，保留 schema
func setupTestWithTruncate(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres not available")
	}
	if err := testutil.TruncateAll(context.Background(), testDB); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
	return testDB
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, email string) *model.User {
	t.Helper()
	user, err := repository.NewUserRepository(pool).Create(context.Background(), &model.User{
		Email:        email,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func createTestEvent(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, name string) *model.Event {
	t.Helper()
	event, err := repository.NewEventRepository(pool).Create(context.Background(), &model.Event{
		UserID:        userID,
		EventName:     name,
		EventType:     model.EventTypeWedding,
		ThemeSlug:     model.ThemeModern,
		GalleryLayout: model.GalleryMasonry,
	})
	require.NoError(t, err)
	return event
}

func createTestGuest(t *testing.T, pool *pgxpool.Pool, eventID uuid.UUID, name, slug string) *model.Guest {
	t.Helper()
	guest, err := repository.NewGuestRepository(pool).Create(context.Background(), &model.Guest{
		EventID:    eventID,
		GuestName:  name,
		UniqueSlug: slug,
	})
	require.NoError(t, err)
	return guest
}

// assertRowCount 檢查資料表的行數
func assertRowCount(t *testing.T, pool *pgxpool.Pool, table string, expected int) {
	t.Helper()
	var count int
	err := pool.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	require.NoError(t, err)
	if count != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, count)
	}
}
