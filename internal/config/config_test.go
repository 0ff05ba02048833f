package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("JWT_SECRET", "s3cret")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "marketplace", cfg.MongoDB)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
		assert.Equal(t, "token", cfg.CookieName)
		assert.False(t, cfg.CookieSecure)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://db:27017")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("TOKEN_TTL", "90m")
		t.Setenv("COOKIE_SECURE", "true")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
		assert.True(t, cfg.CookieSecure)
		assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("JWT_SECRET", "")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("TOKEN_TTL", "soon")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestSlogLevelFallback(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
