package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8008", cfg.AppPort)
	require.Equal(t, "marketplace.db", cfg.DBPath)
	require.Equal(t, 60*time.Second, cfg.CacheTTL)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_PORT", ":9000")
	t.Setenv("CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.AppPort) // leading colon stripped
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestLoad_JWTSettings(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "development-insecure-secret-change-me", cfg.JWTSecret)
	require.Equal(t, "marketplace-api", cfg.JWTIssuer)
	require.Equal(t, "marketplace-clients", cfg.JWTAudience)

	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("JWT_ISSUER", "marketplace-api-prod")

	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "prod-secret", cfg.JWTSecret)
	require.Equal(t, "marketplace-api-prod", cfg.JWTIssuer)
}
