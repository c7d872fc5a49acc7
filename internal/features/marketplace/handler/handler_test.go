package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/ports"
	"ecom-connector/internal/features/marketplace/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPlatform returns canned data. It implements ports.Platform only, so
// pagination and auth routes hit the NOT_SUPPORTED path.
type stubPlatform struct {
	products  []domain.Product
	orders    []domain.Order
	healthErr error

	lastStatus string
}

func (s *stubPlatform) GetProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubPlatform) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, domain.NewConnectorError("Product not found", domain.CodeProductNotFound, http.StatusNotFound, nil)
}

func (s *stubPlatform) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	product := domain.Product{ID: "new", Name: input.Name, Price: input.Price}
	s.products = append(s.products, product)
	return &product, nil
}

func (s *stubPlatform) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	return s.GetProductByID(ctx, id)
}

func (s *stubPlatform) GetOrders(ctx context.Context, query domain.OrderQuery) ([]domain.Order, error) {
	return s.orders, nil
}

func (s *stubPlatform) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return &s.orders[i], nil
		}
	}
	return nil, domain.NewConnectorError("Order not found", domain.CodeOrderNotFound, http.StatusNotFound, nil)
}

func (s *stubPlatform) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	s.lastStatus = status
	return s.GetOrderByID(ctx, id)
}

func (s *stubPlatform) HealthCheck(ctx context.Context) error {
	return s.healthErr
}

func setupApp(platforms map[domain.PlatformType]ports.Platform) *fiber.App {
	app := fiber.New()
	svc := service.NewMarketplaceService(platforms, nil, 0)
	NewMarketplaceHandler(svc).RegisterRoutes(app)
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v))
}

func TestMarketplaceHandler_GetProducts(t *testing.T) {
	stub := &stubPlatform{products: []domain.Product{{
		ID:       "123",
		Name:     "Wireless Mouse",
		Price:    decimal.NewFromInt(159000),
		Currency: "VND",
		Status:   domain.ProductStatusActive,
	}}}
	app := setupApp(map[domain.PlatformType]ports.Platform{domain.PlatformShopee: stub})

	req := httptest.NewRequest("GET", "/platforms/shopee/products?limit=10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []domain.Product
	decodeResponse(t, resp, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "123", products[0].ID)
	assert.Equal(t, "VND", products[0].Currency)
}

func TestMarketplaceHandler_GetProductByID_NotFound(t *testing.T) {
	app := setupApp(map[domain.PlatformType]ports.Platform{domain.PlatformShopee: &stubPlatform{}})

	req := httptest.NewRequest("GET", "/platforms/shopee/products/999", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body ErrorResponse
	decodeResponse(t, resp, &body)
	assert.Equal(t, domain.CodeProductNotFound, body.Code)
	assert.Equal(t, "Product not found", body.Message)
}

func TestMarketplaceHandler_UnknownPlatform(t *testing.T) {
	app := setupApp(map[domain.PlatformType]ports.Platform{})

	req := httptest.NewRequest("GET", "/platforms/amazon/products", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	decodeResponse(t, resp, &body)
	assert.Equal(t, domain.CodeUnsupportedPlatform, body.Code)
}

func TestMarketplaceHandler_CreateProduct(t *testing.T) {
	stub := &stubPlatform{}
	app := setupApp(map[domain.PlatformType]ports.Platform{domain.PlatformShopee: stub})

	payload, _ := json.Marshal(domain.ProductInput{
		Name:  "New Product",
		Price: decimal.NewFromInt(5000),
	})
	req := httptest.NewRequest("POST", "/platforms/shopee/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var product domain.Product
	decodeResponse(t, resp, &product)
	assert.Equal(t, "new", product.ID)
	assert.Equal(t, "New Product", product.Name)
}

func TestMarketplaceHandler_CreateProduct_BadPayload(t *testing.T) {
	app := setupApp(map[domain.PlatformType]ports.Platform{domain.PlatformShopee: &stubPlatform{}})

	req := httptest.NewRequest("POST", "/platforms/shopee/products", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	decodeResponse(t, resp, &body)
	assert.Equal(t, domain.CodeInvalidParams, body.Code)
}

func TestMarketplaceHandler_UpdateOrderStatus(t *testing.T) {
	stub := &stubPlatform{orders: []domain.Order{{
		ID:     "order-1",
		Status: "SHIPPING",
	}}}
	app := setupApp(map[domain.PlatformType]ports.Platform{domain.PlatformZaloOA: stub})

	payload, _ := json.Marshal(UpdateOrderStatusRequest{Status: "SHIPPING"})
	req := httptest.NewRequest("POST", "/platforms/zalo-oa/orders/order-1/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SHIPPING", stub.lastStatus)
}

func TestMarketplaceHandler_UpdateOrderStatus_MissingStatus(t *testing.T) {
	app := setupApp(map[domain.PlatformType]ports.Platform{domain.PlatformZaloOA: &stubPlatform{}})

	req := httptest.NewRequest("POST", "/platforms/zalo-oa/orders/order-1/status", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMarketplaceHandler_Auth_NotSupported(t *testing.T) {
	app := setupApp(map[domain.PlatformType]ports.Platform{domain.PlatformZaloOA: &stubPlatform{}})

	req := httptest.NewRequest("GET", "/platforms/zalo-oa/auth/url?redirect_url=https://cb", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	var body ErrorResponse
	decodeResponse(t, resp, &body)
	assert.Equal(t, domain.CodeNotSupported, body.Code)
}

func TestMarketplaceHandler_Pagination_NotSupported(t *testing.T) {
	app := setupApp(map[domain.PlatformType]ports.Platform{domain.PlatformLazada: &stubPlatform{}})

	req := httptest.NewRequest("GET", "/platforms/lazada/products/all", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestMarketplaceHandler_ListPlatforms(t *testing.T) {
	app := setupApp(map[domain.PlatformType]ports.Platform{
		domain.PlatformShopee: &stubPlatform{},
		domain.PlatformZaloOA: &stubPlatform{},
	})

	req := httptest.NewRequest("GET", "/platforms", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Platforms []string `json:"platforms"`
	}
	decodeResponse(t, resp, &body)
	assert.Equal(t, []string{"shopee", "zalo-oa"}, body.Platforms)
}

func TestMarketplaceHandler_Health(t *testing.T) {
	t.Run("AllHealthy", func(t *testing.T) {
		app := setupApp(map[domain.PlatformType]ports.Platform{domain.PlatformShopee: &stubPlatform{}})

		req := httptest.NewRequest("GET", "/health", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		decodeResponse(t, resp, &body)
		assert.Equal(t, "ok", body["shopee"])
	})

	t.Run("OneUnhealthy", func(t *testing.T) {
		app := setupApp(map[domain.PlatformType]ports.Platform{
			domain.PlatformShopee: &stubPlatform{},
			domain.PlatformLazada: &stubPlatform{
				healthErr: domain.NewConnectorError("down", "error_auth", http.StatusBadRequest, nil),
			},
		})

		req := httptest.NewRequest("GET", "/health", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body map[string]string
		decodeResponse(t, resp, &body)
		assert.Equal(t, "ok", body["shopee"])
		assert.Contains(t, body["lazada"], "down")
	})
}
