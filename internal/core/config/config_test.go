package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("CACHE_TTL_SECONDS")
	os.Unsetenv("PLATFORM_TIMEOUT_MS")
	os.Unsetenv("PLATFORM_SANDBOX")

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 300, cfg.CacheTTLSeconds)
	assert.Equal(t, 30000, cfg.PlatformTimeoutMS)
	assert.False(t, cfg.PlatformSandbox)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("REDIS_URL", "redis://localhost:6379")
	os.Setenv("SHOPEE_PARTNER_ID", "1194848")
	os.Setenv("SHOPEE_PARTNER_KEY", "testkey")
	os.Setenv("SHOPEE_SHOP_ID", "226159527")
	os.Setenv("SHOPEE_ACCESS_TOKEN", "token123")
	defer func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("REDIS_URL")
		os.Unsetenv("SHOPEE_PARTNER_ID")
		os.Unsetenv("SHOPEE_PARTNER_KEY")
		os.Unsetenv("SHOPEE_SHOP_ID")
		os.Unsetenv("SHOPEE_ACCESS_TOKEN")
	}()

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "1194848", cfg.Shopee.PartnerID)
	assert.Equal(t, "testkey", cfg.Shopee.PartnerKey)
	assert.True(t, cfg.Shopee.Configured())
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
LAZADA_APP_KEY=appkey
LAZADA_APP_SECRET=secret
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.True(t, cfg.Lazada.Configured())
	assert.False(t, cfg.TikTok.Configured())
}

// TestConfigured verifies the per-platform credential checks.
func TestConfigured(t *testing.T) {
	assert.False(t, ShopeeConfig{PartnerID: "1"}.Configured())
	assert.True(t, ShopeeConfig{PartnerID: "1", PartnerKey: "k"}.Configured())
	assert.False(t, TikTokConfig{AppKey: "k"}.Configured())
	assert.True(t, TikTokConfig{AppKey: "k", AppSecret: "s"}.Configured())
	assert.False(t, ZaloOAConfig{AppID: "a"}.Configured())
	assert.True(t, ZaloOAConfig{AccessToken: "t"}.Configured())
}
