package adapters

import (
	"net/http"
	"testing"

	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConnector_EachPlatform wires every credential type to its adapter.
func TestNewConnector_EachPlatform(t *testing.T) {
	tests := []struct {
		name  string
		cfg   domain.ConnectorConfig
		check func(t *testing.T, platform ports.Platform)
	}{
		{
			name: "shopee",
			cfg: domain.ConnectorConfig{
				Platform:    domain.PlatformShopee,
				Credentials: shopeeTestCreds(),
			},
			check: func(t *testing.T, platform ports.Platform) {
				assert.IsType(t, &ShopeeAdapter{}, platform)
				// Shopee exposes the pagination and auth capabilities.
				_, ok := platform.(ports.ProductPager)
				assert.True(t, ok)
				_, ok = platform.(ports.OrderPager)
				assert.True(t, ok)
				_, ok = platform.(ports.AuthProvider)
				assert.True(t, ok)
			},
		},
		{
			name: "tiktok-shop",
			cfg: domain.ConnectorConfig{
				Platform:    domain.PlatformTikTokShop,
				Credentials: tiktokTestCreds(),
			},
			check: func(t *testing.T, platform ports.Platform) {
				assert.IsType(t, &TikTokAdapter{}, platform)
				_, ok := platform.(ports.AuthProvider)
				assert.True(t, ok)
			},
		},
		{
			name: "lazada",
			cfg: domain.ConnectorConfig{
				Platform:    domain.PlatformLazada,
				Credentials: lazadaTestCreds(),
			},
			check: func(t *testing.T, platform ports.Platform) {
				assert.IsType(t, &LazadaAdapter{}, platform)
				_, ok := platform.(ports.AuthProvider)
				assert.True(t, ok)
			},
		},
		{
			name: "zalo-oa",
			cfg: domain.ConnectorConfig{
				Platform:    domain.PlatformZaloOA,
				Credentials: domain.ZaloOACredentials{AppID: "a", SecretKey: "s", AccessToken: "t"},
			},
			check: func(t *testing.T, platform ports.Platform) {
				assert.IsType(t, &ZaloOAAdapter{}, platform)
				// Zalo OA has no auth flow.
				_, ok := platform.(ports.AuthProvider)
				assert.False(t, ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform, err := NewConnector(tt.cfg)
			require.NoError(t, err)
			tt.check(t, platform)
		})
	}
}

// TestNewConnector_MissingPlatform rejects an empty discriminator.
func TestNewConnector_MissingPlatform(t *testing.T) {
	_, err := NewConnector(domain.ConnectorConfig{Credentials: shopeeTestCreds()})
	require.Error(t, err)

	var ce *domain.ConnectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeMissingPlatform, ce.Code)
	assert.Equal(t, http.StatusBadRequest, ce.StatusCode)
}

// TestNewConnector_MissingCredentials rejects nil credentials.
func TestNewConnector_MissingCredentials(t *testing.T) {
	_, err := NewConnector(domain.ConnectorConfig{Platform: domain.PlatformShopee})
	require.Error(t, err)

	var ce *domain.ConnectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeMissingCredentials, ce.Code)
}

// TestNewConnector_UnsupportedPlatform rejects unknown discriminators.
func TestNewConnector_UnsupportedPlatform(t *testing.T) {
	_, err := NewConnector(domain.ConnectorConfig{
		Platform:    "amazon",
		Credentials: shopeeTestCreds(),
	})
	require.Error(t, err)

	var ce *domain.ConnectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeUnsupportedPlatform, ce.Code)
	assert.Contains(t, ce.Message, "amazon")
}

// TestNewConnector_CredentialMismatch rejects credentials of another
// platform.
func TestNewConnector_CredentialMismatch(t *testing.T) {
	_, err := NewConnector(domain.ConnectorConfig{
		Platform:    domain.PlatformLazada,
		Credentials: shopeeTestCreds(),
	})
	require.Error(t, err)

	var ce *domain.ConnectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeInvalidParams, ce.Code)
}
