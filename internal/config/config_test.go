package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/triage-api/pkg/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.Equal(t, time.Second, cfg.Outbox.PollInterval)
	assert.Zero(t, cfg.Triage.ResourceCacheTTL)
	assert.Equal(t, uint32(5), cfg.Redis.FailureThreshold)
	assert.True(t, cfg.Triage.SeedResources)
}

func TestLoadConfig_File(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
database:
  host: db.internal
  name: casualties
outbox:
  poll_interval: 250ms
triage:
  resource_cache_ttl: 2s
smtp:
  host: smtp.field.local
  to: ["a@x", "b@x"]
log:
  level: debug
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "casualties", cfg.Database.Name)
	assert.Equal(t, 250*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Triage.ResourceCacheTTL)
	assert.Equal(t, []string{"a@x", "b@x"}, cfg.SMTP.To)
	assert.Equal(t, "smtp.field.local", cfg.SMTP.ToEmailConfig().Host)
	assert.Equal(t, logger.DebugLevel, cfg.Log.ToLoggerConfig().Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, "database:\n  host: from-file\n")
	t.Setenv("DB_HOST", "from-env")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 3, cfg.Database.MaxOpenConns)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Contains(t, cfg.Database.DSN(), "host=from-env port=6543")
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := writeConfig(t, "outbox:\n  batch_size: 0\n")
	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size")
}

func TestConversions(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	wc := cfg.Outbox.ToWorkerConfig()
	assert.Equal(t, cfg.Outbox.BatchSize, wc.BatchSize)
	assert.Equal(t, cfg.Outbox.RetryDelay, wc.RetryDelay)

	bc := cfg.Redis.ToBrokerConfig()
	assert.Equal(t, cfg.Redis.URL, bc.URL)
	assert.Equal(t, cfg.Redis.OpenTimeout, bc.OpenTimeout)
}
