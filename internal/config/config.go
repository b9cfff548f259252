package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal images
)

// Storage backends
const (
	BackendMemory     = "memory"
	BackendClickHouse = "clickhouse"
	BackendSQLite     = "sqlite"
)

// Config holds the application configuration
type Config struct {
	Port           string
	LogDevelopment bool
	Location       *time.Location // calendar dates ("today") are taken here

	StorageBackend string

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	SQLitePath string

	// Telegram front-end, disabled when the token is empty
	TelegramToken  string
	AllowedUserIDs []int64
	WebhookMode    bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL     string // URL for webhook (required if WebhookMode is true)
}

// BotEnabled reports whether the Telegram front-end should run
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Port:           getEnv("PORT", "8080"),
		LogDevelopment: os.Getenv("LOG_DEVELOPMENT") == "true",
		StorageBackend: getEnv("STORAGE_BACKEND", BackendClickHouse),
	}

	timezone := getEnv("TIMEZONE", "UTC")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", timezone, err)
	}
	config.Location = location

	switch config.StorageBackend {
	case BackendMemory:
	case BackendSQLite:
		config.SQLitePath = getEnv("SQLITE_PATH", "./data/library.db")
	case BackendClickHouse:
		if err := loadClickHouse(config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (expected memory, clickhouse or sqlite)", config.StorageBackend)
	}

	if err := loadTelegram(config); err != nil {
		return nil, err
	}
	return config, nil
}

func loadClickHouse(config *Config) error {
	config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if config.ClickHouseHost == "" {
		return fmt.Errorf("CLICKHOUSE_HOST is required when STORAGE_BACKEND is clickhouse")
	}

	portStr := os.Getenv("CLICKHOUSE_PORT")
	if portStr == "" {
		config.ClickHousePort = 9000 // Default ClickHouse native port
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
		}
		config.ClickHousePort = port
	}

	config.ClickHouseDatabase = getEnv("CLICKHOUSE_DATABASE", "default")
	config.ClickHouseUser = getEnv("CLICKHOUSE_USER", "default")
	config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	return nil
}

func loadTelegram(config *Config) error {
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil
	}

	allowedIDsStr := os.Getenv("ALLOWED_USER_IDS")
	if allowedIDsStr == "" {
		return fmt.Errorf("ALLOWED_USER_IDS is required with TELEGRAM_BOT_TOKEN (comma-separated list of Telegram user IDs)")
	}
	for _, idStr := range strings.Split(allowedIDsStr, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user ID in ALLOWED_USER_IDS: %s", idStr)
		}
		config.AllowedUserIDs = append(config.AllowedUserIDs, id)
	}

	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}
	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
