package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auth-service", cfg.App.Name)
	assert.Equal(t, "3001", cfg.App.Port)
	assert.Equal(t, "ecommerce-auth-service", cfg.Auth.Issuer)
	assert.Equal(t, "ecommerce-users", cfg.Auth.Audience)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL())
	assert.Equal(t, 30*time.Minute, cfg.Auth.ResetTokenTTL())
	assert.Equal(t, 2*time.Second, cfg.Redis.OperationTimeout())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_HOURS", "2")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_DAYS", "1")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshTokenTTL())
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestTTLFallbacksForNonPositiveValues(t *testing.T) {
	auth := AuthConfig{}
	assert.Equal(t, 24*time.Hour, auth.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, auth.RefreshTokenTTL())
	assert.Equal(t, 30*time.Minute, auth.ResetTokenTTL())

	app := AppConfig{}
	assert.Equal(t, time.Duration(0), app.RequestTimeout())
}
