package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LEDGERLINK_DATA_DIR", t.TempDir())
	t.Setenv("PLUGGY_CLIENT_ID", "client")
	t.Setenv("PLUGGY_CLIENT_SECRET", "secret")
	t.Setenv("YNAB_ACCESS_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "@every 6h", cfg.SyncSchedule)
	assert.Equal(t, 20, cfg.SyncPageSize)
	assert.Equal(t, 4, cfg.SyncConcurrency)
	assert.Equal(t, 3, cfg.SyncOverlapDays)
	assert.False(t, cfg.Backup.Enabled())
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("LEDGERLINK_DATA_DIR", t.TempDir())
	t.Setenv("PLUGGY_CLIENT_ID", "")
	t.Setenv("PLUGGY_CLIENT_SECRET", "")
	t.Setenv("YNAB_ACCESS_TOKEN", "")
	t.Setenv("DEV_MODE", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DevModeSkipsCredentialCheck(t *testing.T) {
	t.Setenv("LEDGERLINK_DATA_DIR", t.TempDir())
	t.Setenv("PLUGGY_CLIENT_ID", "")
	t.Setenv("PLUGGY_CLIENT_SECRET", "")
	t.Setenv("YNAB_ACCESS_TOKEN", "")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DevMode)
}

func TestValidate_PageSize(t *testing.T) {
	cfg := &Config{
		PluggyClientID:     "a",
		PluggyClientSecret: "b",
		YNABAccessToken:    "c",
		SyncPageSize:       0,
		SyncConcurrency:    1,
	}

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestBackupConfig_Enabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *BackupConfig
		enabled bool
	}{
		{"nil config", nil, false},
		{"empty bucket", &BackupConfig{AccessKey: "k", SecretKey: "s"}, false},
		{"missing credentials", &BackupConfig{Bucket: "b"}, false},
		{"fully configured", &BackupConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.enabled, tt.cfg.Enabled())
		})
	}
}
