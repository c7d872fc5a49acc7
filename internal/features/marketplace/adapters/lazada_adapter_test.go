package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/signing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lazadaTestCreds() domain.LazadaCredentials {
	return domain.LazadaCredentials{
		AppKey:      "appkey",
		AppSecret:   "secret",
		AccessToken: "lz-token",
	}
}

func newLazadaTestAdapter(serverURL string) *LazadaAdapter {
	return NewLazadaAdapter(lazadaTestCreds(), domain.ConnectorConfig{
		Platform: domain.PlatformLazada,
		BaseURL:  serverURL,
	})
}

// verifyLazadaSign recomputes the signature from the received query the way
// the vendor would and compares it to the sign parameter.
func verifyLazadaSign(t *testing.T, r *http.Request, appSecret string) {
	t.Helper()

	params := map[string]string{}
	for key, vals := range r.URL.Query() {
		if key == "sign" {
			continue
		}
		params[key] = vals[0]
	}

	signer := &signing.LazadaSigner{AppKey: params["app_key"], AppSecret: appSecret}
	assert.Equal(t, signer.Sign(r.URL.Path, params), r.URL.Query().Get("sign"))
}

// TestLazadaAdapter_GetProducts verifies the signature covers every query
// parameter and fields are normalized from the attributes block.
func TestLazadaAdapter_GetProducts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, lazadaPathProductsGet, r.URL.Path)

		query := r.URL.Query()
		assert.Equal(t, "appkey", query.Get("app_key"))
		assert.Equal(t, "sha256", query.Get("sign_method"))
		assert.Equal(t, "lz-token", query.Get("access_token"))
		assert.Equal(t, "all", query.Get("filter"))
		verifyLazadaSign(t, r, "secret")

		writeJSON(t, w, map[string]any{
			"code": "0",
			"data": map[string]any{
				"products": []map[string]any{{
					"item_id":      445566,
					"created_time": "1700000000000",
					"updated_time": "1700000100000",
					"attributes": map[string]any{
						"name":        "Desk Lamp",
						"description": "LED lamp",
						"price":       29.9,
						"quantity":    8,
						"SellerSku":   "DL-01",
						"status":      "active",
						"Images":      map[string]any{"Image": []string{"https://img/lamp.jpg"}},
					},
					"skus": []map[string]any{{"price": 29.9, "quantity": 8}},
				}},
			},
		})
	}))
	defer ts.Close()

	adapter := newLazadaTestAdapter(ts.URL)
	products, err := adapter.GetProducts(context.Background(), domain.ProductQuery{})
	require.NoError(t, err)
	require.Len(t, products, 1)

	product := products[0]
	assert.Equal(t, "445566", product.ID)
	assert.Equal(t, "Desk Lamp", product.Name)
	assert.Equal(t, "29.9", product.Price.String())
	assert.Equal(t, "SGD", product.Currency)
	assert.Equal(t, 8, product.Stock)
	assert.Equal(t, "DL-01", product.SKU)
	assert.Equal(t, []string{"https://img/lamp.jpg"}, product.Images)
	assert.Equal(t, domain.ProductStatusActive, product.Status)
	assert.Equal(t, int64(1700000000), product.CreatedAt.Unix())
}

// TestLazadaAdapter_VendorError verifies a non-"0" string code maps to a
// ConnectorError carrying that code.
func TestLazadaAdapter_VendorError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"code":    "1",
			"message": "Something went wrong",
		})
	}))
	defer ts.Close()

	adapter := newLazadaTestAdapter(ts.URL)
	_, err := adapter.GetProducts(context.Background(), domain.ProductQuery{})
	require.Error(t, err)

	var ce *domain.ConnectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "1", ce.Code)
	assert.Equal(t, "Something went wrong", ce.Message)
	assert.Equal(t, http.StatusBadRequest, ce.StatusCode)
	assert.NotNil(t, ce.PlatformError)
}

// TestLazadaAdapter_CreateProduct verifies the Request/Product payload shape
// with merged platform-specific attributes, and the create-then-refetch flow.
func TestLazadaAdapter_CreateProduct(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case lazadaPathCreate:
			var body struct {
				Request struct {
					Product struct {
						PrimaryCategory string         `json:"PrimaryCategory"`
						Attributes      map[string]any `json:"Attributes"`
					} `json:"Product"`
				} `json:"Request"`
			}
			require.NoError(t, decodeBody(r, &body))
			assert.Equal(t, "100", body.Request.Product.PrimaryCategory)
			assert.Equal(t, "Desk Lamp", body.Request.Product.Attributes["name"])
			assert.Equal(t, "DL-01", body.Request.Product.Attributes["SellerSku"])
			assert.Equal(t, "White", body.Request.Product.Attributes["color_family"])

			writeJSON(t, w, map[string]any{
				"code": "0",
				"data": map[string]any{"item_id": 445566},
			})
		case lazadaPathProductGet:
			assert.Equal(t, "445566", r.URL.Query().Get("item_id"))
			writeJSON(t, w, map[string]any{
				"code": "0",
				"data": map[string]any{
					"item_id": 445566,
					"attributes": map[string]any{
						"name":   "Desk Lamp",
						"status": "active",
					},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	adapter := newLazadaTestAdapter(ts.URL)
	product, err := adapter.CreateProduct(context.Background(), domain.ProductInput{
		Name:       "Desk Lamp",
		SKU:        "DL-01",
		CategoryID: "100",
		PlatformSpecific: map[string]any{
			"color_family": "White",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "445566", product.ID)
}

// TestLazadaAdapter_GetOrders verifies the default 30-day window and order
// normalization from the billing address.
func TestLazadaAdapter_GetOrders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.NotEmpty(t, query.Get("created_after"))
		assert.NotEmpty(t, query.Get("created_before"))
		verifyLazadaSign(t, r, "secret")

		writeJSON(t, w, map[string]any{
			"code": "0",
			"data": map[string]any{
				"orders": []map[string]any{{
					"order_id":            9001,
					"order_number":        "LZ-9001",
					"statuses":            []string{"pending"},
					"price":               "59.80",
					"customer_first_name": "Tan",
					"customer_last_name":  "Wei",
					"created_at":          "2023-11-14T22:13:20Z",
					"updated_at":          "2023-11-14T23:00:00Z",
					"address_billing": map[string]any{
						"first_name": "Tan",
						"last_name":  "Wei",
						"phone":      "+6590000000",
						"address1":   "1 Raffles Place",
						"city":       "Singapore",
						"country":    "SG",
						"post_code":  "048616",
					},
					"items": []map[string]any{
						{"order_item_id": 1, "name": "Desk Lamp", "paid_price": 29.9, "shop_sku": "DL-01"},
						{"order_item_id": 2, "name": "Desk Lamp", "paid_price": 29.9, "shop_sku": "DL-01"},
					},
				}},
			},
		})
	}))
	defer ts.Close()

	adapter := newLazadaTestAdapter(ts.URL)
	orders, err := adapter.GetOrders(context.Background(), domain.OrderQuery{})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	order := orders[0]
	assert.Equal(t, "9001", order.ID)
	assert.Equal(t, "LZ-9001", order.OrderNumber)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "59.8", order.TotalAmount.String())
	assert.Equal(t, "Tan Wei", order.Customer.Name)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 1, order.Items[0].Quantity)
	require.NotNil(t, order.ShippingAddress)
	assert.Equal(t, "048616", order.ShippingAddress.PostalCode)
}

// TestLazadaAdapter_GetAccessToken verifies the token exchange signs the
// uuid and code but not the stored access token, and reads top-level fields.
func TestLazadaAdapter_GetAccessToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, lazadaPathTokenCreate, r.URL.Path)

		query := r.URL.Query()
		assert.Equal(t, "authcode", query.Get("code"))
		assert.Equal(t, "uuid-1", query.Get("uuid"))
		// Token endpoints authenticate with the signature alone.
		assert.Empty(t, query.Get("access_token"))
		verifyLazadaSign(t, r, "secret")

		writeJSON(t, w, map[string]any{
			"code":          "0",
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"expires_in":    604800,
		})
	}))
	defer ts.Close()

	adapter := newLazadaTestAdapter(ts.URL)
	result, err := adapter.GetAccessToken(context.Background(), "authcode", "uuid-1", "")
	require.NoError(t, err)

	assert.Equal(t, "at-1", result.AccessToken)
	assert.Equal(t, "rt-1", result.RefreshToken)
	assert.Equal(t, int64(604800), result.ExpireIn)
	assert.Contains(t, result.Raw, "refreshToken")
}

// TestLazadaAdapter_GenerateAuthURL verifies the static auth host link.
func TestLazadaAdapter_GenerateAuthURL(t *testing.T) {
	adapter := NewLazadaAdapter(lazadaTestCreds(), domain.ConnectorConfig{Platform: domain.PlatformLazada})

	authURL, err := adapter.GenerateAuthURL("https://example.com/cb", "uuid-1")
	require.NoError(t, err)
	assert.Contains(t, authURL, lazadaAuthURL)
	assert.Contains(t, authURL, "client_id=appkey")
	assert.Contains(t, authURL, "response_type=code")
	assert.Contains(t, authURL, "uuid=uuid-1")
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// TestLazadaTime covers the vendor's two timestamp forms.
func TestLazadaTime(t *testing.T) {
	assert.Equal(t, int64(1700000000), lazadaTime("1700000000000").Unix())
	assert.Equal(t, int64(1700000000), lazadaTime("2023-11-14T22:13:20Z").Unix())
	assert.True(t, lazadaTime("").IsZero())
	assert.True(t, lazadaTime("not-a-time").IsZero())
}
