package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("GOOGLE_OAUTH_MODE", "")
	t.Setenv("SESSION_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, GoogleModeMock, cfg.GoogleMode)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Nil(t, cfg.OAuth)
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("GOOGLE_OAUTH_MODE", "mock")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestPostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GOOGLE_OAUTH_MODE", "mock")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLiveGoogleNeedsCredentials(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("GOOGLE_OAUTH_MODE", "live")
	t.Setenv("OAUTH_REDIRECT_URL", "https://api.cardfeed.test")
	t.Setenv("GOOGLE_CLIENT_ID", "")

	_, err := Load()
	assert.ErrorContains(t, err, "GOOGLE_CLIENT_ID")

	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.cardfeed.test/api/v1/auth/google/callback", cfg.OAuth.GoogleConfig.RedirectURL)
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{RedisPort: "6379"}
	assert.Empty(t, cfg.RedisAddr())
	cfg.RedisHost = "cache"
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
}
