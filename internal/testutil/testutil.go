package testutil

import (
	"context"
	"fmt"
	"log"

	"go-gin-invitation/config"
	"go-gin-invitation/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Setup 連線測試用 Postgres 與 Redis 並跑 migration
func Setup() (*pgxpool.Pool, *redis.Client, func(), error) {
	cfg := config.LoadTestConfig()

	testDB, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	if err := database.RunMigrations(context.Background(), testDB); err != nil {
		testDB.Close()
		return nil, nil, nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	log.Println("Test database connected successfully")

	testRdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		testDB.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	log.Println("Test redis connected successfully")

	cleanup := func() {
		testDB.Close()
		testRdb.Close()
	}

	return testDB, testRdb, cleanup, nil
}

// SetupDatabaseOnly 僅初始化 Postgres，用於 repository 整合測試
func SetupDatabaseOnly() (*pgxpool.Pool, func(), error) {
	cfg := config.LoadTestConfig()
	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	if err := database.RunMigrations(context.Background(), pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	return pool, pool.Close, nil
}

// SetupRedisOnly 僅初始化 Redis，用於只依賴 Redis 的測試（如 queue 整合測試）
func SetupRedisOnly() (*redis.Client, func(), error) {
	cfg := config.LoadTestConfig()
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	cleanup := func() { rdb.Close() }
	return rdb, cleanup, nil
}

// TruncateAll 清空所有資料表
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE wishes, guests, events, users CASCADE")
	return err
}
