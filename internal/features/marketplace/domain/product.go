package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the normalized product state shared by all platforms.
// Vendor-specific vocabularies (NORMAL, ACTIVE, 1, ...) are always mapped onto
// one of these three values.
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

// Product is the common product entity returned by every platform adapter.
type Product struct {
	// ID is the platform-side product identifier, stringified.
	ID string `json:"id"`
	// Name is the product title.
	Name string `json:"name"`
	// Description is the product description, empty when the vendor omits it.
	Description string `json:"description,omitempty"`
	// Price is the product price; smallest-currency-unit semantics vary by vendor.
	Price decimal.Decimal `json:"price"`
	// Currency is the ISO currency code (e.g., VND, SGD).
	Currency string `json:"currency"`
	// Stock is the available quantity.
	Stock int `json:"stock"`
	// SKU is the seller-defined stock keeping unit.
	SKU string `json:"sku,omitempty"`
	// Images holds product image URLs.
	Images []string `json:"images,omitempty"`
	// CategoryID is the platform category identifier, stringified.
	CategoryID string `json:"category_id,omitempty"`
	// Status is the normalized product status.
	Status ProductStatus `json:"status"`
	// CreatedAt is when the vendor created the product.
	CreatedAt time.Time `json:"created_at,omitempty"`
	// UpdatedAt is when the vendor last updated the product.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	// PlatformSpecific retains the original vendor payload for lossless round-trip.
	PlatformSpecific any `json:"platform_specific,omitempty"`
}

// ProductInput is the common shape for creating a product.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty"`
	Stock       int             `json:"stock"`
	SKU         string          `json:"sku,omitempty"`
	Images      []string        `json:"images,omitempty"`
	CategoryID  string          `json:"category_id,omitempty"`
	Status      ProductStatus   `json:"status,omitempty"`
	// PlatformSpecific carries extra vendor fields merged verbatim into the
	// create payload (weights, logistics info, brand ids, ...).
	PlatformSpecific map[string]any `json:"platform_specific,omitempty"`
}

// ProductPatch is a partial product update. Only non-nil fields are sent to
// the vendor.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
}

// ProductQuery filters product listings.
type ProductQuery struct {
	// Limit is the page size; each platform applies its own default when zero.
	Limit int `json:"limit,omitempty"`
	// Offset is the zero-based item offset for offset-paginated platforms.
	Offset int `json:"offset,omitempty"`
	// Page is the one-based page number for page-paginated platforms.
	Page int `json:"page,omitempty"`
	// Status is a vendor-vocabulary status filter (e.g., NORMAL for Shopee).
	Status string `json:"status,omitempty"`
	// CategoryID narrows results to one category where supported.
	CategoryID string `json:"category_id,omitempty"`
	// Search is a free-text filter where supported.
	Search string `json:"search,omitempty"`
}

// ProductPage is one page of products plus the vendor's pagination metadata.
type ProductPage struct {
	Products    []Product `json:"products"`
	TotalCount  int       `json:"total_count"`
	HasNextPage bool      `json:"has_next_page"`
	NextOffset  int       `json:"next_offset"`
}
