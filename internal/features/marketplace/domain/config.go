package domain

import "time"

// PlatformType discriminates the supported marketplaces.
type PlatformType string

const (
	PlatformShopee     PlatformType = "shopee"
	PlatformTikTokShop PlatformType = "tiktok-shop"
	PlatformLazada     PlatformType = "lazada"
	PlatformZaloOA     PlatformType = "zalo-oa"
)

// Credentials is the discriminated credential union. Each variant holds
// exactly the secrets its platform's signing scheme needs.
type Credentials interface {
	// PlatformType names the platform the credentials belong to.
	PlatformType() PlatformType
}

// ShopeeCredentials authenticate against the Shopee Open Platform.
type ShopeeCredentials struct {
	// PartnerID is the Shopee partner identifier included in every signature.
	PartnerID string
	// PartnerKey is the HMAC key material.
	PartnerKey string
	// ShopID identifies the authorized shop for shop-level endpoints.
	ShopID string
	// AccessToken is optional at construction time; required only for
	// shop-level calls, never for the auth endpoints.
	AccessToken string
}

func (ShopeeCredentials) PlatformType() PlatformType { return PlatformShopee }

// TikTokShopCredentials authenticate against the TikTok Shop open API.
type TikTokShopCredentials struct {
	AppKey      string
	AppSecret   string
	ShopID      string
	AccessToken string
}

func (TikTokShopCredentials) PlatformType() PlatformType { return PlatformTikTokShop }

// LazadaCredentials authenticate against the Lazada Open Platform.
type LazadaCredentials struct {
	AppKey      string
	AppSecret   string
	AccessToken string
}

func (LazadaCredentials) PlatformType() PlatformType { return PlatformLazada }

// ZaloOACredentials authenticate against the Zalo Official Account API, which
// uses a pre-provisioned bearer-style token instead of request signing.
type ZaloOACredentials struct {
	AppID       string
	SecretKey   string
	AccessToken string
}

func (ZaloOACredentials) PlatformType() PlatformType { return PlatformZaloOA }

// ConnectorConfig selects and configures one platform connector.
type ConnectorConfig struct {
	// Platform discriminates which adapter to build.
	Platform PlatformType
	// Credentials must match the platform.
	Credentials Credentials
	// Sandbox switches to the vendor's sandbox endpoint where one exists.
	Sandbox bool
	// Timeout bounds every outbound call; defaults to 30s when zero.
	Timeout time.Duration
	// BaseURL overrides the vendor endpoint. Mainly for tests; for Shopee any
	// path segment baked into this URL becomes part of the signed path.
	BaseURL string
	// AuthBaseURL overrides the vendor's token-exchange host where that host
	// differs from the API host (TikTok, Lazada).
	AuthBaseURL string
}

// DefaultTimeout is applied when ConnectorConfig.Timeout is zero.
const DefaultTimeout = 30 * time.Second
