package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  sqlite_path: /tmp/tenancy-test.db
subscription:
  reminder_days: [3, 1]
  lock_wait: 2s
payment:
  default_provider: stripe
  stripe:
    secret_key: sk_test_123
`)

	cfg, err := Load("test", path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/tenancy-test.db", cfg.Database.SQLitePath)
	assert.Equal(t, []int{3, 1}, cfg.Subscription.ReminderDays)
	assert.Equal(t, 2*time.Second, cfg.Subscription.LockWait)
	assert.Equal(t, "stripe", cfg.Payment.DefaultProvider)
	assert.Equal(t, "sk_test_123", cfg.Payment.Stripe.SecretKey)

	// Untouched keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Subscription.LockTTL)
	assert.Equal(t, "configs/plans.yaml", cfg.Subscription.PlanCatalog)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Same(t, cfg, Get())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("TENANCY_SERVER_PORT", "9100")
	t.Setenv("TENANCY_REDIS_ENABLED", "true")

	cfg, err := Load("", path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "debug", cfg.Server.Mode)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "server: [unterminated\n")

	_, err := Load("test", path)
	assert.Error(t, err)
}
