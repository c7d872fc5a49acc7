package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the common order entity. Status keeps the vendor's own vocabulary:
// marketplaces use incompatible order state machines, so no cross-platform
// normalization is attempted.
type Order struct {
	// ID is the platform-side order identifier, stringified.
	ID string `json:"id"`
	// OrderNumber is the human-readable order reference.
	OrderNumber string `json:"order_number"`
	// Status is the vendor-specific order status string, passed through as-is.
	Status string `json:"status"`
	// TotalAmount is the order total.
	TotalAmount decimal.Decimal `json:"total_amount"`
	// Currency is the ISO currency code.
	Currency string `json:"currency"`
	// Items contains the purchased line items.
	Items []OrderItem `json:"items"`
	// Customer is the buyer.
	Customer Customer `json:"customer"`
	// ShippingAddress is the delivery address, when the vendor provides one.
	ShippingAddress *Address `json:"shipping_address,omitempty"`
	// CreatedAt is when the order was placed.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the order was last modified.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	// PlatformSpecific retains the original vendor payload.
	PlatformSpecific any `json:"platform_specific,omitempty"`
}

// OrderItem is an individual line item within an order.
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	SKU         string          `json:"sku,omitempty"`
}

// Customer is the buyer attached to an order.
type Customer struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	PlatformSpecific any    `json:"platform_specific,omitempty"`
}

// Address is a shipping or billing address.
type Address struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country"`
	PostalCode   string `json:"postal_code"`
}

// OrderQuery filters order listings. When no date range is given, adapters
// default to a trailing 30-day window.
type OrderQuery struct {
	Limit     int       `json:"limit,omitempty"`
	Offset    int       `json:"offset,omitempty"`
	Page      int       `json:"page,omitempty"`
	Status    string    `json:"status,omitempty"`
	StartDate time.Time `json:"start_date,omitempty"`
	EndDate   time.Time `json:"end_date,omitempty"`
	// Cursor is the continuation cursor for cursor-paginated platforms.
	Cursor string `json:"cursor,omitempty"`
}

// OrderPage is one page of orders plus the vendor's continuation state.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	More       bool    `json:"more"`
	NextCursor string  `json:"next_cursor,omitempty"`
}
