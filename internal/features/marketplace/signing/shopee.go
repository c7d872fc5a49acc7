package signing

import (
	"fmt"
	"time"
)

// ShopeeSigner produces Shopee Open Platform v2 signatures.
//
// Base string: {partnerId}{fullApiPath}{unixSeconds}, with
// {accessToken}{shopId} appended only when both are present (shop-level
// endpoints). The path must be the full path exactly as the vendor sees it,
// including any prefix baked into the configured host.
type ShopeeSigner struct {
	PartnerID  string
	PartnerKey string
	// Now defaults to time.Now when nil.
	Now Clock
}

// Timestamp returns the current unix time in seconds. Shopee signs seconds,
// not milliseconds.
func (s *ShopeeSigner) Timestamp() int64 {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	return now().Unix()
}

// Sign computes the shop-level signature. The accessToken+shopID suffix is
// appended only when both are non-empty.
func (s *ShopeeSigner) Sign(fullAPIPath string, timestamp int64, accessToken, shopID string) string {
	base := fmt.Sprintf("%s%s%d", s.PartnerID, fullAPIPath, timestamp)
	if accessToken != "" && shopID != "" {
		base += accessToken + shopID
	}
	return hmacSHA256Hex(s.PartnerKey, base)
}

// SignPublic computes the public-level signature used by the auth endpoints
// (token get/refresh, auth-link generation), which never carry the
// token+shop suffix because no token exists yet.
func (s *ShopeeSigner) SignPublic(fullAPIPath string, timestamp int64) string {
	return s.Sign(fullAPIPath, timestamp, "", "")
}
