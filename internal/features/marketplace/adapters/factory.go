package adapters

import (
	"fmt"
	"net/http"

	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/ports"
)

// NewConnector builds the platform adapter selected by the config. The
// credential type must match the platform discriminator.
func NewConnector(cfg domain.ConnectorConfig) (ports.Platform, error) {
	if cfg.Platform == "" {
		return nil, domain.NewConnectorError("Platform type is required", domain.CodeMissingPlatform, http.StatusBadRequest, nil)
	}
	if cfg.Credentials == nil {
		return nil, domain.NewConnectorError("Credentials are required", domain.CodeMissingCredentials, http.StatusBadRequest, nil)
	}

	switch cfg.Platform {
	case domain.PlatformShopee:
		creds, ok := cfg.Credentials.(domain.ShopeeCredentials)
		if !ok {
			return nil, credentialMismatch(cfg)
		}
		return NewShopeeAdapter(creds, cfg), nil

	case domain.PlatformTikTokShop:
		creds, ok := cfg.Credentials.(domain.TikTokShopCredentials)
		if !ok {
			return nil, credentialMismatch(cfg)
		}
		return NewTikTokAdapter(creds, cfg), nil

	case domain.PlatformLazada:
		creds, ok := cfg.Credentials.(domain.LazadaCredentials)
		if !ok {
			return nil, credentialMismatch(cfg)
		}
		return NewLazadaAdapter(creds, cfg), nil

	case domain.PlatformZaloOA:
		creds, ok := cfg.Credentials.(domain.ZaloOACredentials)
		if !ok {
			return nil, credentialMismatch(cfg)
		}
		return NewZaloOAAdapter(creds, cfg), nil

	default:
		return nil, domain.NewConnectorError(
			fmt.Sprintf("Unsupported platform: %s", cfg.Platform),
			domain.CodeUnsupportedPlatform,
			http.StatusBadRequest,
			nil,
		)
	}
}

func credentialMismatch(cfg domain.ConnectorConfig) *domain.ConnectorError {
	return domain.NewConnectorError(
		fmt.Sprintf("Credentials for platform %s do not match platform %s",
			cfg.Credentials.PlatformType(), cfg.Platform),
		domain.CodeInvalidParams,
		http.StatusBadRequest,
		nil,
	)
}
