package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ecom-connector/internal/core/httpclient"
	"ecom-connector/internal/features/marketplace/domain"

	"github.com/shopspring/decimal"
)

const (
	zaloEndpoint = "https://openapi.zalo.me"

	zaloPathProductList   = "/oa/product/list"
	zaloPathProductDetail = "/oa/product/detail"
	zaloPathProductCreate = "/oa/product/create"
	zaloPathProductUpdate = "/oa/product/update"
	zaloPathOrderList     = "/oa/order/list"
	zaloPathOrderDetail   = "/oa/order/detail"
	zaloPathOrderUpdate   = "/oa/order/update"

	zaloDefaultPageSize = 20
)

// zaloOrderStatusNames maps the vendor's numeric order states onto the
// strings this client exposes; zaloOrderStatusCodes is its reverse.
var zaloOrderStatusNames = map[int]string{
	0: "PENDING",
	1: "CONFIRMED",
	2: "SHIPPING",
	3: "COMPLETED",
	4: "CANCELLED",
}

var zaloOrderStatusCodes = map[string]int{
	"PENDING":   0,
	"CONFIRMED": 1,
	"SHIPPING":  2,
	"COMPLETED": 3,
	"CANCELLED": 4,
}

// ZaloOAAdapter implements the Platform port against the Zalo Official
// Account API. Zalo OA uses a pre-provisioned access token header instead of
// request signing, and offers no auth flow through this client.
type ZaloOAAdapter struct {
	client  *http.Client
	creds   domain.ZaloOACredentials
	baseURL string
}

// NewZaloOAAdapter creates a Zalo OA adapter from the given credentials.
func NewZaloOAAdapter(creds domain.ZaloOACredentials, cfg domain.ConnectorConfig) *ZaloOAAdapter {
	baseURL := zaloEndpoint
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}

	return &ZaloOAAdapter{
		client:  httpclient.NewClient(timeout),
		creds:   creds,
		baseURL: baseURL,
	}
}

// zaloEnvelope is the common Zalo response wrapper; error 0 is success.
type zaloEnvelope struct {
	Error   int             `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *ZaloOAAdapter) request(ctx context.Context, method, apiPath string, params url.Values, body any) (*zaloEnvelope, error) {
	target := a.baseURL + apiPath
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", a.creds.AccessToken)

	raw, status, err := doJSON(a.client, req)
	if err != nil {
		return nil, err
	}

	var env zaloEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if status >= http.StatusBadRequest || env.Error != 0 {
		message := env.Message
		if message == "" {
			message = http.StatusText(status)
		}
		if status < http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		return nil, domain.NewConnectorError(message, strconv.Itoa(env.Error), status, json.RawMessage(raw))
	}
	return &env, nil
}

type zaloProduct struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Status      int      `json:"status"`
	Images      []string `json:"images"`
	CreateTime  int64    `json:"created_time"`
	UpdateTime  int64    `json:"updated_time"`
}

func mapZaloProduct(product zaloProduct, raw json.RawMessage) domain.Product {
	status := domain.ProductStatusInactive
	if product.Status == 1 {
		status = domain.ProductStatusActive
	}

	return domain.Product{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       decimal.NewFromFloat(product.Price),
		Currency:    "VND",
		// The list and detail responses carry no stock information.
		Stock:            0,
		Images:           product.Images,
		Status:           status,
		CreatedAt:        time.Unix(product.CreateTime, 0),
		UpdatedAt:        time.Unix(product.UpdateTime, 0),
		PlatformSpecific: camelPayload(raw),
	}
}

type zaloOrder struct {
	ID          string  `json:"id"`
	OrderCode   string  `json:"order_code"`
	Status      int     `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	CreateTime  int64   `json:"created_time"`
	Items       []struct {
		ProductID   string  `json:"product_id"`
		ProductName string  `json:"product_name"`
		Quantity    int     `json:"quantity"`
		Price       float64 `json:"price"`
	} `json:"items"`
	Customer struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
		Phone  string `json:"phone"`
	} `json:"customer"`
}

func mapZaloOrder(order zaloOrder, raw json.RawMessage) domain.Order {
	status, ok := zaloOrderStatusNames[order.Status]
	if !ok {
		status = "UNKNOWN"
	}

	items := make([]domain.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       decimal.NewFromFloat(item.Price),
		})
	}

	return domain.Order{
		ID:          order.ID,
		OrderNumber: order.OrderCode,
		Status:      status,
		TotalAmount: decimal.NewFromFloat(order.TotalAmount),
		Currency:    "VND",
		Items:       items,
		Customer: domain.Customer{
			ID:    order.Customer.UserID,
			Name:  order.Customer.Name,
			Phone: order.Customer.Phone,
		},
		CreatedAt:        time.Unix(order.CreateTime, 0),
		PlatformSpecific: camelPayload(raw),
	}
}

// GetProducts lists products with offset pagination.
func (a *ZaloOAAdapter) GetProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = zaloDefaultPageSize
	}

	params := url.Values{}
	params.Set("offset", strconv.Itoa(query.Offset))
	params.Set("limit", strconv.Itoa(limit))

	env, err := a.request(ctx, http.MethodGet, zaloPathProductList, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch products from Zalo OA", domain.CodeFetchProductsError)
	}

	var data struct {
		Products []json.RawMessage `json:"products"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch products from Zalo OA", domain.CodeFetchProductsError)
		}
	}

	products := make([]domain.Product, 0, len(data.Products))
	for _, raw := range data.Products {
		var product zaloProduct
		if err := json.Unmarshal(raw, &product); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch products from Zalo OA", domain.CodeFetchProductsError)
		}
		products = append(products, mapZaloProduct(product, raw))
	}
	return products, nil
}

// GetProductByID fetches one product.
func (a *ZaloOAAdapter) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	params := url.Values{}
	params.Set("product_id", id)

	env, err := a.request(ctx, http.MethodGet, zaloPathProductDetail, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch product %s from Zalo OA", id), domain.CodeFetchProductError)
	}

	var product zaloProduct
	if err := json.Unmarshal(env.Data, &product); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch product %s from Zalo OA", id), domain.CodeFetchProductError)
	}
	if product.ID == "" {
		return nil, domain.NewConnectorError("Product not found", domain.CodeProductNotFound, http.StatusNotFound, nil)
	}

	mapped := mapZaloProduct(product, env.Data)
	return &mapped, nil
}

// CreateProduct creates a product, then re-fetches it by the returned id.
func (a *ZaloOAAdapter) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	price, _ := input.Price.Float64()
	body := map[string]any{
		"name":        input.Name,
		"description": input.Description,
		"price":       price,
	}
	if len(input.Images) > 0 {
		body["images"] = input.Images
	}
	for key, value := range input.PlatformSpecific {
		body[key] = value
	}

	env, err := a.request(ctx, http.MethodPost, zaloPathProductCreate, nil, body)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to create product on Zalo OA", domain.CodeCreateProductError)
	}

	var created struct {
		ProductID string `json:"product_id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return nil, domain.WrapError(err, "Failed to create product on Zalo OA", domain.CodeCreateProductError)
	}

	product, err := a.GetProductByID(ctx, created.ProductID)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to create product on Zalo OA", domain.CodeCreateProductError)
	}
	return product, nil
}

// UpdateProduct applies a partial update, then re-fetches the product.
func (a *ZaloOAAdapter) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	body := map[string]any{
		"product_id": id,
	}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Price != nil {
		price, _ := patch.Price.Float64()
		body["price"] = price
	}

	if _, err := a.request(ctx, http.MethodPost, zaloPathProductUpdate, nil, body); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update product %s on Zalo OA", id), domain.CodeUpdateProductError)
	}

	product, err := a.GetProductByID(ctx, id)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update product %s on Zalo OA", id), domain.CodeUpdateProductError)
	}
	return product, nil
}

// GetOrders lists orders with offset pagination.
func (a *ZaloOAAdapter) GetOrders(ctx context.Context, query domain.OrderQuery) ([]domain.Order, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = zaloDefaultPageSize
	}

	params := url.Values{}
	params.Set("offset", strconv.Itoa(query.Offset))
	params.Set("limit", strconv.Itoa(limit))

	env, err := a.request(ctx, http.MethodGet, zaloPathOrderList, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch orders from Zalo OA", domain.CodeFetchOrdersError)
	}

	var data struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch orders from Zalo OA", domain.CodeFetchOrdersError)
		}
	}

	orders := make([]domain.Order, 0, len(data.Orders))
	for _, raw := range data.Orders {
		var order zaloOrder
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch orders from Zalo OA", domain.CodeFetchOrdersError)
		}
		orders = append(orders, mapZaloOrder(order, raw))
	}
	return orders, nil
}

// GetOrderByID fetches one order.
func (a *ZaloOAAdapter) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	params := url.Values{}
	params.Set("order_id", id)

	env, err := a.request(ctx, http.MethodGet, zaloPathOrderDetail, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch order %s from Zalo OA", id), domain.CodeFetchOrderError)
	}

	var order zaloOrder
	if err := json.Unmarshal(env.Data, &order); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch order %s from Zalo OA", id), domain.CodeFetchOrderError)
	}
	if order.ID == "" {
		return nil, domain.NewConnectorError("Order not found", domain.CodeOrderNotFound, http.StatusNotFound, nil)
	}

	mapped := mapZaloOrder(order, env.Data)
	return &mapped, nil
}

// UpdateOrderStatus translates the status string back to the vendor's
// numeric code, posts the update, then re-fetches the order. An unknown
// status string is rejected before any call is made.
func (a *ZaloOAAdapter) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	code, ok := zaloOrderStatusCodes[status]
	if !ok {
		return nil, domain.NewConnectorError(
			fmt.Sprintf("Unknown order status %q", status),
			domain.CodeInvalidParams,
			http.StatusBadRequest,
			nil,
		)
	}

	body := map[string]any{
		"order_id": id,
		"status":   code,
	}
	if _, err := a.request(ctx, http.MethodPost, zaloPathOrderUpdate, nil, body); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update order %s status on Zalo OA", id), domain.CodeUpdateOrderError)
	}

	order, err := a.GetOrderByID(ctx, id)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update order %s status on Zalo OA", id), domain.CodeUpdateOrderError)
	}
	return order, nil
}

// HealthCheck verifies reachability and credentials with a one-item listing.
func (a *ZaloOAAdapter) HealthCheck(ctx context.Context) error {
	_, err := a.GetProducts(ctx, domain.ProductQuery{Limit: 1})
	return err
}
