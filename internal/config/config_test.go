package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, ModeRemote, cfg.Store.Mode)
	assert.Equal(t, "file", cfg.Local.Driver)
	assert.Equal(t, 60, cfg.JWT.AccessExpiry)
	assert.Equal(t, 24, cfg.JWT.SessionTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Server.TrustProxy)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("STORE_MODE", "LOCAL")
	t.Setenv("LOCAL_DRIVER", "SQLite")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("CLICK_RATE_LIMIT", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://safgati.com, ,https://admin.safgati.com")

	cfg := Load()

	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, ModeLocal, cfg.Store.Mode)
	assert.Equal(t, "sqlite", cfg.Local.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.ClickRequests)
	assert.Equal(t, []string{"https://safgati.com", "https://admin.safgati.com"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.IsDevelopment())
}

func TestSplitList(t *testing.T) {
	assert.Empty(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,b,"))
}
