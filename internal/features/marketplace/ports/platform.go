package ports

import (
	"context"

	"ecom-connector/internal/features/marketplace/domain"
)

// Platform is the capability set every marketplace adapter implements.
// This is a Secondary Port (Driven Port); one implementation exists per
// platform and none share state.
type Platform interface {
	// GetProducts lists products. Adapters apply platform-chosen page sizes
	// when the query leaves Limit at zero.
	GetProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error)
	// GetProductByID fetches one product; fails with PRODUCT_NOT_FOUND when
	// the vendor returns no matching item.
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	// CreateProduct creates a product, then re-fetches it by the returned id
	// because vendors return partial data from create calls.
	CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	// UpdateProduct applies a partial update, sending only the fields present
	// in the patch, then re-fetches the product.
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	// GetOrders lists orders, defaulting to a trailing 30-day window when the
	// query carries no explicit date range.
	GetOrders(ctx context.Context, query domain.OrderQuery) ([]domain.Order, error)
	// GetOrderByID fetches one order; fails with ORDER_NOT_FOUND when absent.
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateOrderStatus mutates order state where the vendor supports it and
	// fails with NOT_SUPPORTED where it does not (Shopee).
	UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error)
	// HealthCheck verifies the vendor API is reachable with the configured
	// credentials.
	HealthCheck(ctx context.Context) error
}

// AuthProvider is the optional OAuth-style capability, present for platforms
// that support shop authorization (Shopee, TikTok Shop, Lazada).
type AuthProvider interface {
	// GenerateAuthURL builds the vendor authorization link. The state value is
	// the Lazada uuid; other platforms ignore it.
	GenerateAuthURL(redirectURL, state string) (string, error)
	// GetAccessToken exchanges an authorization code. For Shopee exactly one
	// of shopID / mainAccountID must be provided; for Lazada shopID carries
	// the uuid; TikTok ignores both.
	GetAccessToken(ctx context.Context, code, shopID, mainAccountID string) (*domain.TokenResult, error)
	// RefreshAccessToken renews an access token using the refresh token, with
	// the same Shopee identifier exclusivity rule.
	RefreshAccessToken(ctx context.Context, refreshToken, shopID, mainAccountID string) (*domain.TokenResult, error)
}

// ProductPager is the optional pagination-aware product capability (Shopee).
type ProductPager interface {
	// GetProductsWithPagination returns one page plus pagination metadata.
	GetProductsWithPagination(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error)
	// GetAllProducts auto-paginates with an offset cursor until the vendor
	// signals end-of-results or maxItems is reached. A maxItems of zero means
	// the built-in safety cap.
	GetAllProducts(ctx context.Context, status string, maxItems int) ([]domain.Product, error)
}

// OrderPager is the optional pagination-aware order capability (Shopee).
type OrderPager interface {
	// GetOrdersWithPagination returns one page plus the continuation cursor.
	GetOrdersWithPagination(ctx context.Context, query domain.OrderQuery) (*domain.OrderPage, error)
	// GetAllOrders auto-paginates with the vendor's cursor until exhausted or
	// maxItems is reached. A maxItems of zero means the built-in safety cap.
	GetAllOrders(ctx context.Context, query domain.OrderQuery, maxItems int) ([]domain.Order, error)
}
