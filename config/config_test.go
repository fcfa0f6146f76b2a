package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/adapters/logger"
)

var configKeys = []string{
	"CONFIG_PATH", "DB_PATH", "LOG_LEVEL", "LOG_FORMAT", "HTTP_ADDR", "API_TOKEN", "GIN_MODE",
	"SHUTDOWN_TIMEOUT_SECONDS", "RECALC_CRON", "RUN_RECALC_ON_START", "INITIAL_BALANCE", "TRACING_ENABLED",
}

// clearEnv blanks every key so values from the host environment do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	// Keep godotenv from picking up a stray .env in the package directory.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "./data/trades.db", cfg.DBPath)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.APIToken)
	assert.Equal(t, "0 */5 * * * *", cfg.RecalcCron)
	assert.True(t, cfg.RunRecalcOnStart)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10000.0, cfg.InitialBalance)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/journal.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("API_TOKEN", "secret")
	t.Setenv("RUN_RECALC_ON_START", "false")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/journal.db", cfg.DBPath)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "secret", cfg.APIToken)
	assert.False(t, cfg.RunRecalcOnStart)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfig_YAMLBaseWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "journal.yaml")
	yml := `
database:
  path: /var/lib/journal.db
http:
  addr: ":9090"
recalc:
  cron: "*/30 * * * * *"
  run_on_start: false
tracing:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/journal.db", cfg.DBPath)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "*/30 * * * * *", cfg.RecalcCron)
	assert.False(t, cfg.RunRecalcOnStart)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoadConfig_ValidationErrorsCollected(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "abc")
	t.Setenv("INITIAL_BALANCE", "-5")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT_SECONDS")
	assert.Contains(t, err.Error(), "INITIAL_BALANCE")
}

func TestLoadConfig_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unterminated"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	_, err := LoadConfig()
	assert.Error(t, err)
}
