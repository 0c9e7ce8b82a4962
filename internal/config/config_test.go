package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ENV", "PORT", "JWT_SECRET", "JWT_TTL", "BCRYPT_COST", "STORE_BACKEND", "ALLOWED_ORIGINS", "REDIS_URI"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 15*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "jwt", cfg.CookieName)
	assert.Equal(t, StoreMongo, cfg.StoreBackend)
	assert.Empty(t, cfg.RedisURI)
	assert.Len(t, cfg.AllowedOrigins, 2)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("STORE_BACKEND", "MEMORY")

	cfg := Load()
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("JWT_TTL", "fifteen days")
	t.Setenv("BCRYPT_COST", "ten")

	cfg := Load()
	assert.Equal(t, 15*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestValidateProductionSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	cfg := Load()
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET must be set")

	t.Setenv("JWT_SECRET", "short")
	cfg = Load()
	assert.ErrorContains(t, cfg.Validate(), "at least 32")

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg = Load()
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsProduction())
}

func TestValidateRanges(t *testing.T) {
	t.Setenv("ENV", "")
	cfg := Load()
	cfg.BcryptCost = 3
	cfg.TokenTTL = 0
	cfg.StoreBackend = "postgres"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "BCRYPT_COST")
	assert.ErrorContains(t, err, "JWT_TTL")
	assert.ErrorContains(t, err, "STORE_BACKEND")
}
