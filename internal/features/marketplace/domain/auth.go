package domain

// TokenResult is the normalized outcome of a token exchange or refresh.
// Exactly one of ShopID / MainAccountID is set for Shopee shop-level vs
// account-level authorizations; both are empty for other platforms.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpireIn is the access token lifetime in seconds.
	ExpireIn int64 `json:"expire_in"`
	// PartnerID echoes the Shopee partner the token was issued to.
	PartnerID string `json:"partner_id,omitempty"`
	ShopID    string `json:"shop_id,omitempty"`
	// MainAccountID is set for Shopee umbrella-account authorizations.
	MainAccountID string `json:"main_account_id,omitempty"`
	// Raw is the full vendor response with camelCase keys.
	Raw map[string]any `json:"raw,omitempty"`
}
