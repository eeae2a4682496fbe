// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the references database and backup staging
	Port     int
	LogLevel string
	DevMode  bool

	// Pluggy (source) credentials
	PluggyClientID     string
	PluggyClientSecret string

	// YNAB (ledger) credentials
	YNABAccessToken string
	YNABBudgetID    string

	// Sync behaviour
	SyncSchedule    string // cron spec for the background sync job
	SyncPageSize    int    // Pluggy page size per request
	SyncConcurrency int    // references synced in parallel
	SyncOverlapDays int    // cursor rewind applied to each window start

	Backup *BackupConfig
}

// BackupConfig holds off-site backup configuration.
// Backups are disabled when the bucket or credentials are empty.
type BackupConfig struct {
	Endpoint  string // S3-compatible endpoint URL (e.g. Cloudflare R2)
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Schedule  string // cron spec for the backup job
	Keep      int    // number of backups retained remotely
}

// Enabled reports whether backups are configured.
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Bucket != "" && b.AccessKey != "" && b.SecretKey != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadForTooling reads configuration without requiring API credentials.
// Used by administrative commands that only touch the local database.
func LoadForTooling() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory, resolve to absolute path and ensure it exists
	dataDir := getEnv("LEDGERLINK_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8000),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		PluggyClientID:     getEnv("PLUGGY_CLIENT_ID", ""),
		PluggyClientSecret: getEnv("PLUGGY_CLIENT_SECRET", ""),

		YNABAccessToken: getEnv("YNAB_ACCESS_TOKEN", ""),
		YNABBudgetID:    getEnv("YNAB_BUDGET_ID", ""),

		SyncSchedule:    getEnv("SYNC_SCHEDULE", "@every 6h"),
		SyncPageSize:    getEnvAsInt("SYNC_PAGE_SIZE", 20),
		SyncConcurrency: getEnvAsInt("SYNC_CONCURRENCY", 4),
		SyncOverlapDays: getEnvAsInt("SYNC_OVERLAP_DAYS", 3),

		Backup: &BackupConfig{
			Endpoint:  getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:    getEnv("BACKUP_S3_REGION", "auto"),
			Bucket:    getEnv("BACKUP_S3_BUCKET", ""),
			AccessKey: getEnv("BACKUP_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("BACKUP_S3_SECRET_KEY", ""),
			Schedule:  getEnv("BACKUP_SCHEDULE", "@daily"),
			Keep:      getEnvAsInt("BACKUP_KEEP", 14),
		},
	}

	return cfg, nil
}

// Validate checks if required configuration is present.
// Credentials are optional in dev mode so the server can come up without
// talking to either external API.
func (c *Config) Validate() error {
	if c.DevMode {
		return nil
	}

	if c.PluggyClientID == "" || c.PluggyClientSecret == "" {
		return fmt.Errorf("PLUGGY_CLIENT_ID and PLUGGY_CLIENT_SECRET are required")
	}
	if c.YNABAccessToken == "" {
		return fmt.Errorf("YNAB_ACCESS_TOKEN is required")
	}
	if c.SyncPageSize <= 0 {
		return fmt.Errorf("SYNC_PAGE_SIZE must be positive, got %d", c.SyncPageSize)
	}
	if c.SyncConcurrency <= 0 {
		return fmt.Errorf("SYNC_CONCURRENCY must be positive, got %d", c.SyncConcurrency)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
