// Package signing implements the per-platform request signatures. Every
// marketplace defines its own canonical string; a mismatched signature is
// rejected by the vendor as an opaque auth error, so the concatenation rules
// here must match the vendor's reconstruction byte for byte.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// Clock supplies the current time. Signers read the wall clock through this
// indirection so tests can pin timestamps and assert exact digests.
type Clock func() time.Time

func hmacSHA256Hex(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// SortedConcat joins the api path with every key immediately followed by its
// value, keys in lexicographic order, no separators. This is the Lazada
// canonical-string layout.
func sortedConcat(apiPath string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(apiPath)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	return b.String()
}
