package keycase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestToCamelKey verifies the snake_case to camelCase string rule.
func TestToCamelKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"order_sn", "orderSn"},
		{"item_id_list", "itemIdList"},
		{"access_token", "accessToken"},
		{"already", "already"},
		{"alreadyCamel", "alreadyCamel"},
		{"", ""},
		// Underscore not followed by a lowercase letter passes through.
		{"_1abc", "_1abc"},
		{"trailing_", "trailing_"},
		{"double__x", "double_X"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToCamelKey(tt.input))
		})
	}
}

// TestToSnakeKey verifies the camelCase to snake_case string rule, including
// the documented leading-underscore behavior for leading capitals.
func TestToSnakeKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"orderSn", "order_sn"},
		{"itemIdList", "item_id_list"},
		{"already_snake", "already_snake"},
		{"", ""},
		// No leading-uppercase special case: this is observed behavior the
		// vendors' payload shapes rely on, not an accident to fix.
		{"Name", "_name"},
		{"SellerSku", "_seller_sku"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToSnakeKey(tt.input))
		})
	}
}

// TestToCamelKey_FixedPoint verifies double-transformation safety: a key that
// is already camelCase is unchanged by another ToCamelKey pass.
func TestToCamelKey_FixedPoint(t *testing.T) {
	keys := []string{"order_sn", "itemIdList", "payment_info"}
	for _, key := range keys {
		once := ToCamelKey(key)
		assert.Equal(t, once, ToCamelKey(once))
	}
}

// TestToSnakeKey_NotFixedPointForLeadingCaps documents that ToSnake is not a
// perfect inverse for keys with leading capitals.
func TestToSnakeKey_NotFixedPointForLeadingCaps(t *testing.T) {
	assert.Equal(t, "_name", ToSnakeKey(ToCamelKey("_name")))
	// Round trip through camel loses the distinction between "Name" and "_name".
	assert.Equal(t, "Name", ToCamelKey("_name"))
}

// TestToCamel_Recursive verifies recursion into nested objects and arrays.
func TestToCamel_Recursive(t *testing.T) {
	input := map[string]any{
		"order_sn":     "SN123",
		"total_amount": 150000.0,
		"item_list": []any{
			map[string]any{
				"item_id":   float64(1),
				"item_name": "Widget",
			},
		},
		"recipient_address": map[string]any{
			"full_address": "123 Main St",
			"zipcode":      "70000",
		},
	}

	result, ok := ToCamel(input).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "SN123", result["orderSn"])
	assert.Equal(t, 150000.0, result["totalAmount"])

	items, ok := result["itemList"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	item, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Widget", item["itemName"])
	assert.Equal(t, float64(1), item["itemId"])

	addr, ok := result["recipientAddress"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "123 Main St", addr["fullAddress"])
}

// TestToSnake_Recursive verifies the reverse direction.
func TestToSnake_Recursive(t *testing.T) {
	input := map[string]any{
		"orderSn": "SN123",
		"lineItems": []any{
			map[string]any{"productId": "p1"},
		},
	}

	result, ok := ToSnake(input).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "SN123", result["order_sn"])
	items := result["line_items"].([]any)
	assert.Equal(t, "p1", items[0].(map[string]any)["product_id"])
}

// TestTransform_PrimitivesPassThrough verifies primitives and nil are untouched.
func TestTransform_PrimitivesPassThrough(t *testing.T) {
	assert.Nil(t, ToCamel(nil))
	assert.Equal(t, "plain_string", ToCamel("plain_string"))
	assert.Equal(t, 42.5, ToCamel(42.5))
	assert.Equal(t, true, ToSnake(true))
	assert.Nil(t, ToSnake(nil))
}

// TestTransform_NonMapStructsPassThrough verifies non-map values such as
// timestamps are not corrupted by traversal.
func TestTransform_NonMapStructsPassThrough(t *testing.T) {
	now := time.Now()
	input := map[string]any{"created_at": now}

	result := ToCamel(input).(map[string]any)
	assert.Equal(t, now, result["createdAt"])
}

// TestTransform_ArraysOfPrimitives verifies element-wise mapping over arrays.
func TestTransform_ArraysOfPrimitives(t *testing.T) {
	input := []any{"a_b", float64(1), nil, map[string]any{"image_url": "u"}}

	result := ToCamel(input).([]any)
	assert.Equal(t, "a_b", result[0])
	assert.Equal(t, float64(1), result[1])
	assert.Nil(t, result[2])
	assert.Equal(t, "u", result[3].(map[string]any)["imageUrl"])
}
