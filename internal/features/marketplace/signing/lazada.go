package signing

import (
	"strconv"
	"strings"
	"time"
)

// LazadaSigner produces Lazada Open Platform signatures.
//
// Base string: the api path followed by every request parameter key
// immediately followed by its value, keys sorted lexicographically, no
// separators. The digest is uppercase hex. Every parameter that will be sent
// (app key, timestamp, sign method, access token, call params) must be in the
// map — the signature is computed only after the parameter set is final, or
// the server-side recomputation will not match.
type LazadaSigner struct {
	AppKey    string
	AppSecret string
	// Now defaults to time.Now when nil.
	Now Clock
}

// Timestamp returns the current unix time in milliseconds, as a string.
// Lazada signs milliseconds, unlike Shopee and TikTok.
func (s *LazadaSigner) Timestamp() string {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	return strconv.FormatInt(now().UnixMilli(), 10)
}

// Sign computes the uppercase hex HMAC-SHA256 digest over the sorted
// concatenation of the api path and all signing-relevant parameters.
func (s *LazadaSigner) Sign(apiPath string, params map[string]string) string {
	return strings.ToUpper(hmacSHA256Hex(s.AppSecret, sortedConcat(apiPath, params)))
}
