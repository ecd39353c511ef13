package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Storage driver names accepted by STORAGE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Storage StorageConfig
	MongoDB MongoDBConfig
	Events  EventsConfig
	Reorder ReorderConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string
}

// StorageConfig selects the ledger backing store.
type StorageConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// EventsConfig configures the event sink. An empty WebhookURL disables
// outbound event delivery.
type EventsConfig struct {
	WebhookURL string
}

// ReorderConfig holds the reorder pass schedule.
type ReorderConfig struct {
	CronSchedule string
	RunTimeout   time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	runTimeout, err := time.ParseDuration(getenvWithDefault("REORDER_RUN_TIMEOUT", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REORDER_RUN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver: getenvWithDefault("STORAGE_DRIVER", DriverMongo),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "warehouse"),
		},
		Events: EventsConfig{
			WebhookURL: os.Getenv("EVENT_WEBHOOK_URL"),
		},
		Reorder: ReorderConfig{
			CronSchedule: getenvWithDefault("REORDER_CRON_SCHEDULE", "@every 1m"),
			RunTimeout:   runTimeout,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", DriverMongo, DriverMemory)
	}

	if c.Reorder.CronSchedule == "" {
		return errors.New("REORDER_CRON_SCHEDULE must be provided")
	}

	if c.Reorder.RunTimeout <= 0 {
		return errors.New("REORDER_RUN_TIMEOUT must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
