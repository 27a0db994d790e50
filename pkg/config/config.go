package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	GoogleClientID     string
	GoogleClientSecret string

	// Sync pipeline tuning
	SyncInterval     time.Duration
	MaxEmailsPerRun  int64
	QueryWindowDays  int
	AccountSyncDelay time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	syncInterval := 15 * time.Minute
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			syncInterval = parsed
		}
	}

	accountDelay := 2 * time.Second
	if v := os.Getenv("ACCOUNT_SYNC_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			accountDelay = parsed
		}
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=sellerops port=5432 sslmode=disable"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		SyncInterval:       syncInterval,
		MaxEmailsPerRun:    getEnvInt64("MAX_EMAILS_PER_RUN", 50),
		QueryWindowDays:    int(getEnvInt64("QUERY_WINDOW_DAYS", 30)),
		AccountSyncDelay:   accountDelay,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
