package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
}

func TestLoad_Defaults(t *testing.T) {
	setSecrets(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.AllowsAnyOrigin())
	assert.False(t, cfg.DB.AutoSchema)

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, cfg.ReportLocation).Zone()
	assert.Equal(t, 5*3600+30*60, offset)
}

func TestLoad_Overrides(t *testing.T) {
	setSecrets(t)
	t.Setenv("STORE_BACKEND", "MEMORY")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_AUTO_SCHEMA", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.DB.AutoSchema)
	assert.Contains(t, cfg.DB.DSN(), "dbname=tripplanner")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing secrets", func(t *testing.T) {
		t.Setenv("ACCESS_TOKEN_SECRET", "")
		t.Setenv("REFRESH_TOKEN_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		setSecrets(t)
		t.Setenv("STORE_BACKEND", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		setSecrets(t)
		t.Setenv("ACCESS_TOKEN_TTL", "forever")
		_, err := Load()
		assert.Error(t, err)
	})
}
