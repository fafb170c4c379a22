package config_test

import (
	"testing"
	"time"

	"github.com/straye-as/erp-gateway/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "./config/adapters", cfg.Backends.ConfigDir)
	assert.Equal(t, 3600, cfg.Session.TTL)
	assert.Equal(t, "@every 5m", cfg.Session.SweepSchedule)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Secrets.Source)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Contains(t, cfg.RateLimit.WhitelistPaths, "/health")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SESSION_TTL", "120")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 120, cfg.Session.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadTokenSecretFromEnv(t *testing.T) {
	t.Setenv("SESSION_TOKEN_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.Session.TokenSecret)
}

func TestDurationHelpers(t *testing.T) {
	cfg := config.Config{
		Session: config.SessionConfig{TTL: 90},
		Server:  config.ServerConfig{ReadTimeout: 10, WriteTimeout: 20, RequestTimeout: 30},
	}

	assert.Equal(t, 90*time.Second, cfg.Session.TTLDuration())
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeoutDuration())
	assert.Equal(t, 20*time.Second, cfg.Server.WriteTimeoutDuration())
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeoutDuration())
}
