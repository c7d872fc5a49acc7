// Package keycase converts JSON object keys between snake_case and camelCase.
// Marketplace APIs disagree on key style (Shopee/Lazada/Zalo use snake_case,
// parts of TikTok use camelCase), so decoded payloads are normalized before
// they cross the adapter boundary.
package keycase

import "strings"

// ToCamelKey converts a snake_case key to camelCase.
// Every "_x" where x is a lowercase ASCII letter becomes "X"; all other
// characters pass through unchanged. A key already in camelCase is a fixed
// point of this conversion.
func ToCamelKey(key string) string {
	if !strings.ContainsRune(key, '_') {
		return key
	}

	var b strings.Builder
	b.Grow(len(key))

	for i := 0; i < len(key); i++ {
		if key[i] == '_' && i+1 < len(key) && key[i+1] >= 'a' && key[i+1] <= 'z' {
			b.WriteByte(key[i+1] - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(key[i])
	}

	return b.String()
}

// ToSnakeKey converts a camelCase key to snake_case.
// Every uppercase ASCII letter X becomes "_x". There is no special case for a
// leading uppercase letter: "Name" becomes "_name". Downstream vendor payloads
// depend on this exact behavior, so it is preserved as-is.
func ToSnakeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)

	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'A' && c <= 'Z' {
			b.WriteByte('_')
			b.WriteByte(c - 'A' + 'a')
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}

// ToCamel recursively converts the keys of a decoded JSON value to camelCase.
// It recurses into map[string]any and []any only; every other value (strings,
// numbers, booleans, nil, and non-map types such as time.Time) passes through
// untouched.
func ToCamel(value any) any {
	return transform(value, ToCamelKey)
}

// ToSnake recursively converts the keys of a decoded JSON value to snake_case.
// Traversal rules match ToCamel.
func ToSnake(value any) any {
	return transform(value, ToSnakeKey)
}

func transform(value any, convert func(string) string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[convert(key)] = transform(val, convert)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = transform(item, convert)
		}
		return out
	default:
		return value
	}
}
