package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"ecom-connector/internal/core/cache"
	"ecom-connector/internal/core/logger"
	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/ports"

	"go.uber.org/zap"
)

// MarketplaceService fronts the configured platform connectors. Product
// listings go through an optional read-through cache; everything else is a
// pass-through to the adapter.
type MarketplaceService struct {
	platforms map[domain.PlatformType]ports.Platform
	cache     cache.Cache
	cacheTTL  time.Duration
}

// NewMarketplaceService creates a service over the given platform registry.
// The cache may be nil, in which case every listing hits the vendor.
func NewMarketplaceService(platforms map[domain.PlatformType]ports.Platform, c cache.Cache, cacheTTL time.Duration) *MarketplaceService {
	return &MarketplaceService{
		platforms: platforms,
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

// Platforms returns the configured platform names, sorted for stable output.
func (s *MarketplaceService) Platforms() []string {
	names := make([]string, 0, len(s.platforms))
	for name := range s.platforms {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// Platform resolves a configured connector by name.
func (s *MarketplaceService) Platform(name string) (ports.Platform, error) {
	platform, ok := s.platforms[domain.PlatformType(name)]
	if !ok {
		return nil, domain.NewConnectorError(
			fmt.Sprintf("Unsupported platform: %s", name),
			domain.CodeUnsupportedPlatform,
			http.StatusBadRequest,
			nil,
		)
	}
	return platform, nil
}

func productListKey(platform string, query domain.ProductQuery) string {
	return fmt.Sprintf("marketplace:products:%s:%d:%d:%d:%s:%s",
		platform, query.Limit, query.Offset, query.Page, query.Status, query.CategoryID)
}

// GetProducts lists products for one platform, serving repeated queries from
// the cache when one is configured. Cache failures fall through to the
// vendor; they never fail the request.
func (s *MarketplaceService) GetProducts(ctx context.Context, platformName string, query domain.ProductQuery) ([]domain.Product, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}

	key := productListKey(platformName, query)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var products []domain.Product
			if err := json.Unmarshal(cached, &products); err == nil {
				logger.Get().Debug("Product list served from cache",
					zap.String("platform", platformName),
					zap.String("key", key),
				)
				return products, nil
			}
		}
	}

	products, err := platform.GetProducts(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(products); err == nil {
			if err := s.cache.Set(ctx, key, encoded, s.cacheTTL); err != nil {
				logger.Get().Warn("Failed to cache product list",
					zap.String("platform", platformName),
					zap.Error(err),
				)
			}
		}
	}
	return products, nil
}

// GetProductByID fetches one product from one platform.
func (s *MarketplaceService) GetProductByID(ctx context.Context, platformName, id string) (*domain.Product, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	return platform.GetProductByID(ctx, id)
}

// CreateProduct creates a product and drops any cached listings for the
// platform's default query, since they are now stale.
func (s *MarketplaceService) CreateProduct(ctx context.Context, platformName string, input domain.ProductInput) (*domain.Product, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}

	product, err := platform.CreateProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	s.invalidateProductLists(ctx, platformName)
	return product, nil
}

// UpdateProduct applies a partial update and invalidates cached listings.
func (s *MarketplaceService) UpdateProduct(ctx context.Context, platformName, id string, patch domain.ProductPatch) (*domain.Product, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}

	product, err := platform.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidateProductLists(ctx, platformName)
	return product, nil
}

// invalidateProductLists removes the default-query listing entry. Listings
// under other queries expire by TTL.
func (s *MarketplaceService) invalidateProductLists(ctx context.Context, platformName string) {
	if s.cache == nil {
		return
	}
	key := productListKey(platformName, domain.ProductQuery{})
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Warn("Failed to invalidate product list cache",
			zap.String("platform", platformName),
			zap.Error(err),
		)
	}
}

// GetOrders lists orders for one platform. Orders are never cached.
func (s *MarketplaceService) GetOrders(ctx context.Context, platformName string, query domain.OrderQuery) ([]domain.Order, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	return platform.GetOrders(ctx, query)
}

// GetOrderByID fetches one order from one platform.
func (s *MarketplaceService) GetOrderByID(ctx context.Context, platformName, id string) (*domain.Order, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	return platform.GetOrderByID(ctx, id)
}

// UpdateOrderStatus mutates order state on one platform.
func (s *MarketplaceService) UpdateOrderStatus(ctx context.Context, platformName, id, status string) (*domain.Order, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	return platform.UpdateOrderStatus(ctx, id, status)
}

// GetProductsWithPagination exposes the pagination-aware listing where the
// platform supports it.
func (s *MarketplaceService) GetProductsWithPagination(ctx context.Context, platformName string, query domain.ProductQuery) (*domain.ProductPage, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	pager, ok := platform.(ports.ProductPager)
	if !ok {
		return nil, notSupported(platformName, "paginated product listing")
	}
	return pager.GetProductsWithPagination(ctx, query)
}

// GetAllProducts auto-paginates where the platform supports it.
func (s *MarketplaceService) GetAllProducts(ctx context.Context, platformName, status string, maxItems int) ([]domain.Product, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	pager, ok := platform.(ports.ProductPager)
	if !ok {
		return nil, notSupported(platformName, "product auto-pagination")
	}
	return pager.GetAllProducts(ctx, status, maxItems)
}

// GetOrdersWithPagination exposes cursor pagination where supported.
func (s *MarketplaceService) GetOrdersWithPagination(ctx context.Context, platformName string, query domain.OrderQuery) (*domain.OrderPage, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	pager, ok := platform.(ports.OrderPager)
	if !ok {
		return nil, notSupported(platformName, "paginated order listing")
	}
	return pager.GetOrdersWithPagination(ctx, query)
}

// GetAllOrders auto-paginates orders where supported.
func (s *MarketplaceService) GetAllOrders(ctx context.Context, platformName string, query domain.OrderQuery, maxItems int) ([]domain.Order, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	pager, ok := platform.(ports.OrderPager)
	if !ok {
		return nil, notSupported(platformName, "order auto-pagination")
	}
	return pager.GetAllOrders(ctx, query, maxItems)
}

// GenerateAuthURL builds the authorization link where the platform has an
// auth flow.
func (s *MarketplaceService) GenerateAuthURL(platformName, redirectURL, state string) (string, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return "", err
	}
	provider, ok := platform.(ports.AuthProvider)
	if !ok {
		return "", notSupported(platformName, "authorization")
	}
	return provider.GenerateAuthURL(redirectURL, state)
}

// GetAccessToken exchanges an authorization code where supported.
func (s *MarketplaceService) GetAccessToken(ctx context.Context, platformName, code, shopID, mainAccountID string) (*domain.TokenResult, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	provider, ok := platform.(ports.AuthProvider)
	if !ok {
		return nil, notSupported(platformName, "authorization")
	}
	return provider.GetAccessToken(ctx, code, shopID, mainAccountID)
}

// RefreshAccessToken renews tokens where supported.
func (s *MarketplaceService) RefreshAccessToken(ctx context.Context, platformName, refreshToken, shopID, mainAccountID string) (*domain.TokenResult, error) {
	platform, err := s.Platform(platformName)
	if err != nil {
		return nil, err
	}
	provider, ok := platform.(ports.AuthProvider)
	if !ok {
		return nil, notSupported(platformName, "authorization")
	}
	return provider.RefreshAccessToken(ctx, refreshToken, shopID, mainAccountID)
}

// HealthCheck probes every configured platform and returns the failures
// keyed by platform name.
func (s *MarketplaceService) HealthCheck(ctx context.Context) map[string]error {
	results := make(map[string]error, len(s.platforms))
	for name, platform := range s.platforms {
		results[string(name)] = platform.HealthCheck(ctx)
	}
	return results
}

func notSupported(platformName, capability string) *domain.ConnectorError {
	return domain.NewConnectorError(
		fmt.Sprintf("Platform %s does not support %s", platformName, capability),
		domain.CodeNotSupported,
		http.StatusNotImplemented,
		nil,
	)
}
