package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"ecom-connector/internal/core/cache"
	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPlatform counts calls and returns canned data.
type stubPlatform struct {
	products     []domain.Product
	orders       []domain.Order
	productCalls int
	healthErr    error
}

func (s *stubPlatform) GetProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	s.productCalls++
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
	return nil, domain.NewConnectorError("Order not found", domain.CodeOrderNotFound, http.StatusNotFound, nil)
}

func (s *stubPlatform) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	return nil, domain.NewConnectorError("unsupported", domain.CodeNotSupported, http.StatusNotImplemented, nil)
}

func (s *stubPlatform) HealthCheck(ctx context.Context) error {
	return s.healthErr
}

func newTestService(t *testing.T, platform ports.Platform) (*MarketplaceService, *cache.RedisAdapter) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisCache, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { redisCache.Close() })

	svc := NewMarketplaceService(map[domain.PlatformType]ports.Platform{
		domain.PlatformShopee: platform,
	}, redisCache, time.Minute)
	return svc, redisCache
}

// TestGetProducts_CacheReadThrough verifies the second identical query is
// served from Redis without touching the platform.
func TestGetProducts_CacheReadThrough(t *testing.T) {
	stub := &stubPlatform{products: []domain.Product{{
		ID:    "123",
		Name:  "Wireless Mouse",
		Price: decimal.NewFromInt(159000),
	}}}
	svc, _ := newTestService(t, stub)
	ctx := context.Background()

	first, err := svc.GetProducts(ctx, "shopee", domain.ProductQuery{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, stub.productCalls)

	second, err := svc.GetProducts(ctx, "shopee", domain.ProductQuery{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "123", second[0].ID)
	assert.True(t, second[0].Price.Equal(decimal.NewFromInt(159000)))

	// Served from cache: the platform was not called again.
	assert.Equal(t, 1, stub.productCalls)
}

// TestGetProducts_DistinctQueriesMiss verifies different queries get their
// own cache entries.
func TestGetProducts_DistinctQueriesMiss(t *testing.T) {
	stub := &stubPlatform{products: []domain.Product{{ID: "123"}}}
	svc, _ := newTestService(t, stub)
	ctx := context.Background()

	_, err := svc.GetProducts(ctx, "shopee", domain.ProductQuery{})
	require.NoError(t, err)
	_, err = svc.GetProducts(ctx, "shopee", domain.ProductQuery{Limit: 5})
	require.NoError(t, err)

	assert.Equal(t, 2, stub.productCalls)
}

// TestGetProducts_NoCache verifies a nil cache always hits the platform.
func TestGetProducts_NoCache(t *testing.T) {
	stub := &stubPlatform{products: []domain.Product{{ID: "123"}}}
	svc := NewMarketplaceService(map[domain.PlatformType]ports.Platform{
		domain.PlatformShopee: stub,
	}, nil, 0)
	ctx := context.Background()

	_, err := svc.GetProducts(ctx, "shopee", domain.ProductQuery{})
	require.NoError(t, err)
	_, err = svc.GetProducts(ctx, "shopee", domain.ProductQuery{})
	require.NoError(t, err)

	assert.Equal(t, 2, stub.productCalls)
}

// TestCreateProduct_InvalidatesListing verifies a create drops the cached
// default listing.
func TestCreateProduct_InvalidatesListing(t *testing.T) {
	stub := &stubPlatform{products: []domain.Product{{ID: "123"}}}
	svc, _ := newTestService(t, stub)
	ctx := context.Background()

	_, err := svc.GetProducts(ctx, "shopee", domain.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.productCalls)

	_, err = svc.CreateProduct(ctx, "shopee", domain.ProductInput{Name: "New"})
	require.NoError(t, err)

	// The next listing misses the cache and sees the new product.
	products, err := svc.GetProducts(ctx, "shopee", domain.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, stub.productCalls)
	assert.Len(t, products, 2)
}

// TestPlatform_Unknown rejects unconfigured platform names.
func TestPlatform_Unknown(t *testing.T) {
	svc := NewMarketplaceService(map[domain.PlatformType]ports.Platform{}, nil, 0)

	_, err := svc.GetProducts(context.Background(), "amazon", domain.ProductQuery{})
	require.Error(t, err)

	var ce *domain.ConnectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeUnsupportedPlatform, ce.Code)
}

// TestAuth_NotSupported verifies auth calls on a platform without an auth
// flow fail with NOT_SUPPORTED.
func TestAuth_NotSupported(t *testing.T) {
	stub := &stubPlatform{}
	svc := NewMarketplaceService(map[domain.PlatformType]ports.Platform{
		domain.PlatformZaloOA: stub,
	}, nil, 0)

	_, err := svc.GenerateAuthURL("zalo-oa", "https://cb", "")
	require.Error(t, err)

	var ce *domain.ConnectorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CodeNotSupported, ce.Code)
	assert.Equal(t, http.StatusNotImplemented, ce.StatusCode)
}

// TestPagination_NotSupported verifies pagination calls on a platform
// without the capability fail with NOT_SUPPORTED.
func TestPagination_NotSupported(t *testing.T) {
	stub := &stubPlatform{}
	svc := NewMarketplaceService(map[domain.PlatformType]ports.Platform{
		domain.PlatformLazada: stub,
	}, nil, 0)

	_, err := svc.GetAllProducts(context.Background(), "lazada", "", 0)
	require.Error(t, err)
	assert.Equal(t, domain.CodeNotSupported, domain.ErrorCode(err))
}

// TestHealthCheck reports per-platform outcomes.
func TestHealthCheck(t *testing.T) {
	healthy := &stubPlatform{}
	unhealthy := &stubPlatform{healthErr: domain.NewConnectorError("down", "error_auth", http.StatusBadRequest, nil)}

	svc := NewMarketplaceService(map[domain.PlatformType]ports.Platform{
		domain.PlatformShopee: healthy,
		domain.PlatformLazada: unhealthy,
	}, nil, 0)

	results := svc.HealthCheck(context.Background())
	require.Len(t, results, 2)
	assert.NoError(t, results["shopee"])
	assert.Error(t, results["lazada"])
}

// TestPlatforms lists configured platforms sorted.
func TestPlatforms(t *testing.T) {
	svc := NewMarketplaceService(map[domain.PlatformType]ports.Platform{
		domain.PlatformZaloOA: &stubPlatform{},
		domain.PlatformShopee: &stubPlatform{},
	}, nil, 0)

	assert.Equal(t, []string{"shopee", "zalo-oa"}, svc.Platforms())
}
