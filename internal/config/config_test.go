package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopcompare/backend/internal/config"
)

func TestLoad(t *testing.T) {
	t.Setenv("SHOPCOMPARE_ADDR", ":9999")
	t.Setenv("SHOPCOMPARE_LOG_LEVEL", "debug")
	t.Setenv("SHOPCOMPARE_DB_DRIVER", "MySQL")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "13777")
	t.Setenv("DB_USER", "avnadmin")
	t.Setenv("SHOPCOMPARE_DB_QUERY_TIMEOUT", "3s")
	t.Setenv("SHOPCOMPARE_GUEST_DAILY_LIMIT", "7")
	t.Setenv("SHOPCOMPARE_PRUNE_INTERVAL", "15m")
	t.Setenv("SHOPCOMPARE_TIMEZONE", "Asia/Ho_Chi_Minh")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("CATALOG_BASE_URL", "https://tiki.example/")
	t.Setenv("SHOPCOMPARE_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")

	cfg := config.Load()
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, config.DriverMySQL, cfg.DB.Driver)
	require.Equal(t, "db.internal", cfg.DB.Host)
	require.Equal(t, 13777, cfg.DB.Port)
	require.Equal(t, "avnadmin", cfg.DB.User)
	require.Equal(t, 3*time.Second, cfg.DB.QueryTimeout)
	require.Equal(t, 7, cfg.Limits.GuestDaily)
	require.Equal(t, 10, cfg.Limits.UserDaily)
	require.Equal(t, 15*time.Minute, cfg.Limits.PruneInterval)
	require.Equal(t, "Asia/Ho_Chi_Minh", cfg.Location.String())
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	require.Equal(t, "https://tiki.example", cfg.Catalog.BaseURL)
	require.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SHOPCOMPARE_ADDR", "SHOPCOMPARE_LOG_LEVEL", "SHOPCOMPARE_DB_DRIVER", "SHOPCOMPARE_DB_PATH",
		"SHOPCOMPARE_GUEST_DAILY_LIMIT", "SHOPCOMPARE_USER_DAILY_LIMIT", "SHOPCOMPARE_TIMEZONE",
		"AI_PROVIDER", "AI_MODEL", "SHOPCOMPARE_TOKEN_TTL", "CACHE_TTL",
		"SHOPCOMPARE_RATE_LIMIT_RETENTION", "SHOPCOMPARE_PRUNE_INTERVAL", "SHOPCOMPARE_TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()
	require.Equal(t, ":8000", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, config.DriverSQLite, cfg.DB.Driver)
	require.Contains(t, cfg.DB.Path, "shopcompare.db")
	require.Equal(t, 5, cfg.Limits.GuestDaily)
	require.Equal(t, 10, cfg.Limits.UserDaily)
	require.Equal(t, "openai", cfg.AI.Provider)
	require.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	require.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 7*24*time.Hour, cfg.Limits.Retention)
	require.Equal(t, time.Hour, cfg.Limits.PruneInterval)
	require.Equal(t, time.Local, cfg.Location)
	require.Empty(t, cfg.TrustedProxies)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SHOPCOMPARE_USER_DAILY_LIMIT", "-3")
	t.Setenv("SHOPCOMPARE_TOKEN_TTL", "soon")
	t.Setenv("SHOPCOMPARE_SWAGGER", "maybe")
	t.Setenv("SHOPCOMPARE_TIMEZONE", "Mars/Olympus")

	cfg := config.Load()
	require.Equal(t, 10, cfg.Limits.UserDaily)
	require.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	require.True(t, cfg.Swagger)
	require.Equal(t, time.Local, cfg.Location)
}

func TestLoad_AnthropicProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("AI_MODEL", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg := config.Load()
	require.Equal(t, "anthropic", cfg.AI.Provider)
	require.Equal(t, "sk-ant", cfg.AI.APIKey)
	require.Contains(t, cfg.AI.Model, "claude")
}
