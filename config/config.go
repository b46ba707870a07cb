package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Gift     GiftConfig
	Mail     MailConfig
	WhatsApp WhatsAppConfig
	Queue    QueueConfig
}

type AppConfig struct {
	Env            string
	Port           string
	LogLevel       string
	PublicOrigin   string
	RequestTimeout time.Duration
	AllowOrigins   []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// StorageConfig selects the persistence backend: "postgres" or "file".
// A file driver with an empty path keeps everything in memory.
type StorageConfig struct {
	Driver   string
	FilePath string
}

type AuthConfig struct {
	JWTSecret                string
	SessionTTL               time.Duration
	BcryptCost               int
	RequireEmailVerification bool
}

// GiftConfig holds the placeholder gift accounts shown when a host has not
// configured their own.
type GiftConfig struct {
	BRIAccountNumber string
	BRIAccountName   string
	ShopeePayNumber  string
	ShopeePayName    string
}

type MailConfig struct {
	Provider           string
	FromAddress        string
	FromName           string
	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string
}

type WhatsAppConfig struct {
	Enabled bool
	DataDir string
}

type QueueConfig struct {
	Driver            string
	BufferSize        int
	ClaimMinIdleTime  time.Duration
	MaxRetryCount     int
	// 0 表示沿用 MaxRetryCount
	MaxRetryWhatsApp  int
	MaxRetryInstagram int
	ReadBlockTime     time.Duration
}

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "change-me"

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

func LoadConfig() *Config {
	env := getEnv("APP_ENV", "development")
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}
	}

	return &Config{
		App:      GetAppConfig(env),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Storage:  GetStorageConfig(),
		Auth:     GetAuthConfig(),
		Gift:     GetGiftConfig(),
		Mail:     GetMailConfig(),
		WhatsApp: GetWhatsAppConfig(),
		Queue:    GetQueueConfig(),
	}
}

// Validate rejects settings that must never reach production.
func (c *Config) Validate() error {
	if c.App.Env == "production" && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == DefaultJWTSecret) {
		return ErrMissingJWTSecret
	}
	return nil
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // test database
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Enabled:  true,
		Host:     "localhost",
		Port:     "6380", // test redis
		Password: "",
		DB:       1,
		CacheTTL: time.Minute,
	}

	return &Config{
		App: AppConfig{
			Env:            "test",
			Port:           "8080",
			LogLevel:       "info",
			PublicOrigin:   "http://localhost:3000",
			RequestTimeout: 5 * time.Second,
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Storage:  StorageConfig{Driver: "file"},
		Auth: AuthConfig{
			JWTSecret:  "test-secret",
			SessionTTL: time.Hour,
			BcryptCost: 4,
		},
		Gift:  GetGiftConfig(),
		Mail:  MailConfig{Provider: "noop"},
		Queue: QueueConfig{Driver: "memory", BufferSize: 16, MaxRetryCount: 5},
	}
}

func GetAppConfig(env string) AppConfig {
	return AppConfig{
		Env:            env,
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		PublicOrigin:   strings.TrimRight(getEnv("PUBLIC_ORIGIN", "http://localhost:3000"), "/"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		AllowOrigins:   getList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getBool("REDIS_ENABLED", true),
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getInt("REDIS_DB", 0),
		CacheTTL: getDuration("INVITATION_CACHE_TTL", 10*time.Minute),
	}
}

func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Driver:   getEnv("STORAGE_DRIVER", "postgres"),
		FilePath: getEnv("STORAGE_FILE", "data/invitations.json"),
	}
}

func GetAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:                getEnv("JWT_SECRET", DefaultJWTSecret),
		SessionTTL:               getDuration("SESSION_TTL", 7*24*time.Hour),
		BcryptCost:               getInt("BCRYPT_COST", 10),
		RequireEmailVerification: getBool("REQUIRE_EMAIL_VERIFICATION", false),
	}
}

func GetGiftConfig() GiftConfig {
	return GiftConfig{
		BRIAccountNumber: getEnv("GIFT_BRI_ACCOUNT_NUMBER", "1234567890"),
		BRIAccountName:   getEnv("GIFT_BRI_ACCOUNT_NAME", "Nama Anda (BRI)"),
		ShopeePayNumber:  getEnv("GIFT_SHOPEEPAY_NUMBER", "081234567890"),
		ShopeePayName:    getEnv("GIFT_SHOPEEPAY_NAME", "Nama Anda (SP)"),
	}
}

func GetMailConfig() MailConfig {
	return MailConfig{
		Provider:           getEnv("MAIL_PROVIDER", "noop"),
		FromAddress:        getEnv("MAIL_FROM_ADDRESS", "no-reply@localhost"),
		FromName:           getEnv("MAIL_FROM_NAME", "Undangan Digital"),
		SESRegion:          getEnv("SES_REGION", "ap-southeast-1"),
		SESAccessKeyID:     getEnv("SES_ACCESS_KEY_ID", ""),
		SESSecretAccessKey: getEnv("SES_SECRET_ACCESS_KEY", ""),
	}
}

func GetWhatsAppConfig() WhatsAppConfig {
	return WhatsAppConfig{
		Enabled: getBool("WHATSAPP_ENABLED", false),
		DataDir: getEnv("WHATSAPP_DATA_DIR", "data"),
	}
}

func GetQueueConfig() QueueConfig {
	return QueueConfig{
		Driver:            getEnv("QUEUE_DRIVER", "memory"),
		BufferSize:        getInt("QUEUE_BUFFER_SIZE", 256),
		ClaimMinIdleTime:  getDuration("QUEUE_CLAIM_MIN_IDLE", 5*time.Second),
		MaxRetryCount:     getInt("QUEUE_MAX_RETRY", 5),
		MaxRetryWhatsApp:  getInt("QUEUE_MAX_RETRY_WHATSAPP", 0),
		MaxRetryInstagram: getInt("QUEUE_MAX_RETRY_INSTAGRAM", 0),
		ReadBlockTime:     getDuration("QUEUE_READ_BLOCK", 2*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		panic(err)
	}
	return value
}

func getBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		panic(err)
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		panic(err)
	}
	return value
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
