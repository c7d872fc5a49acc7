package signing

import (
	"fmt"
	"time"
)

// TikTokSigner produces TikTok Shop signatures.
//
// Base string: {appKey}{requestPath}{unixSeconds} keyed with the app secret.
// The signed path carries no query string; the access token travels in the
// x-tts-access-token header and is never part of the signature.
type TikTokSigner struct {
	AppKey    string
	AppSecret string
	// Now defaults to time.Now when nil.
	Now Clock
}

// Timestamp returns the current unix time in seconds.
func (s *TikTokSigner) Timestamp() int64 {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	return now().Unix()
}

// Sign computes the hex HMAC-SHA256 digest for the given request path.
func (s *TikTokSigner) Sign(apiPath string, timestamp int64) string {
	base := fmt.Sprintf("%s%s%d", s.AppKey, apiPath, timestamp)
	return hmacSHA256Hex(s.AppSecret, base)
}
