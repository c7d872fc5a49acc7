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
	"ecom-connector/internal/core/keycase"
	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/signing"

	"github.com/shopspring/decimal"
)

const (
	lazadaEndpoint        = "https://api.lazada.com/rest"
	lazadaSandboxEndpoint = "https://api.lazada.sg/rest"
	lazadaAuthURL         = "https://auth.lazada.com/oauth/authorize"

	lazadaPathProductsGet  = "/products/get"
	lazadaPathProductGet   = "/product/item/get"
	lazadaPathCreate       = "/product/create"
	lazadaPathUpdate       = "/product/update"
	lazadaPathOrdersGet    = "/orders/get"
	lazadaPathOrderGet     = "/order/get"
	lazadaPathOrderPack    = "/order/pack"
	lazadaPathTokenCreate  = "/auth/token/create"
	lazadaPathTokenRefresh = "/auth/token/refresh"

	lazadaDefaultPageSize = 20
)

// LazadaAdapter implements the Platform and AuthProvider ports against the
// Lazada Open Platform REST API.
type LazadaAdapter struct {
	client  *http.Client
	creds   domain.LazadaCredentials
	signer  *signing.LazadaSigner
	baseURL string
}

// NewLazadaAdapter creates a Lazada adapter from the given credentials.
func NewLazadaAdapter(creds domain.LazadaCredentials, cfg domain.ConnectorConfig) *LazadaAdapter {
	baseURL := lazadaEndpoint
	if cfg.Sandbox {
		baseURL = lazadaSandboxEndpoint
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}

	return &LazadaAdapter{
		client: httpclient.NewClient(timeout),
		creds:  creds,
		signer: &signing.LazadaSigner{
			AppKey:    creds.AppKey,
			AppSecret: creds.AppSecret,
		},
		baseURL: baseURL,
	}
}

// lazadaEnvelope is the common Lazada response wrapper; the success code is
// the string "0", not a number.
type lazadaEnvelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

// request signs and executes one call. The signature covers the api path and
// every query parameter (common and call-specific); JSON bodies are sent
// unsigned alongside the signed query.
func (a *LazadaAdapter) request(ctx context.Context, method, apiPath string, params map[string]string, body any) (*lazadaEnvelope, []byte, error) {
	signParams := map[string]string{
		"app_key":     a.creds.AppKey,
		"timestamp":   a.signer.Timestamp(),
		"sign_method": "sha256",
	}
	if a.creds.AccessToken != "" {
		signParams["access_token"] = a.creds.AccessToken
	}
	for key, value := range params {
		signParams[key] = value
	}

	query := url.Values{}
	for key, value := range signParams {
		query.Set(key, value)
	}
	query.Set("sign", a.signer.Sign(apiPath, signParams))

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+apiPath+"?"+query.Encode(), reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, status, err := doJSON(a.client, req)
	if err != nil {
		return nil, nil, err
	}

	var env lazadaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if status >= http.StatusBadRequest || env.Code != "0" {
		message := env.Message
		if message == "" {
			message = http.StatusText(status)
		}
		if status < http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		code := env.Code
		if code == "" {
			code = "LAZADA_ERROR"
		}
		return nil, nil, domain.NewConnectorError(message, code, status, json.RawMessage(raw))
	}

	return &env, raw, nil
}

type lazadaProduct struct {
	ItemID      int64  `json:"item_id"`
	CreatedTime string `json:"created_time"`
	UpdatedTime string `json:"updated_time"`
	Attributes  struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Quantity    int     `json:"quantity"`
		SellerSKU   string  `json:"SellerSku"`
		Status      string  `json:"status"`
		Images      struct {
			Image []string `json:"Image"`
		} `json:"Images"`
	} `json:"attributes"`
	SKUs []struct {
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	} `json:"skus"`
}

// lazadaTime parses the vendor's timestamp forms: millisecond epoch strings
// on products, ISO strings on orders.
func lazadaTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms)
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed
	}
	if parsed, err := time.Parse("2006-01-02 15:04:05 -0700", value); err == nil {
		return parsed
	}
	return time.Time{}
}

func mapLazadaProduct(product lazadaProduct, raw json.RawMessage) domain.Product {
	attrs := product.Attributes

	price := attrs.Price
	stock := attrs.Quantity
	if len(product.SKUs) > 0 {
		if price == 0 {
			price = product.SKUs[0].Price
		}
		if stock == 0 {
			stock = product.SKUs[0].Quantity
		}
	}

	status := domain.ProductStatusInactive
	if attrs.Status == "active" {
		status = domain.ProductStatusActive
	}

	return domain.Product{
		ID:               strconv.FormatInt(product.ItemID, 10),
		Name:             attrs.Name,
		Description:      attrs.Description,
		Price:            decimal.NewFromFloat(price),
		Currency:         "SGD",
		Stock:            stock,
		SKU:              attrs.SellerSKU,
		Images:           attrs.Images.Image,
		Status:           status,
		CreatedAt:        lazadaTime(product.CreatedTime),
		UpdatedAt:        lazadaTime(product.UpdatedTime),
		PlatformSpecific: camelPayload(raw),
	}
}

type lazadaOrder struct {
	OrderID           int64    `json:"order_id"`
	OrderNumber       string   `json:"order_number"`
	Statuses          []string `json:"statuses"`
	Price             string   `json:"price"`
	CustomerFirstName string   `json:"customer_first_name"`
	CustomerLastName  string   `json:"customer_last_name"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
	AddressBilling    *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		Address1  string `json:"address1"`
		Address2  string `json:"address2"`
		City      string `json:"city"`
		Country   string `json:"country"`
		PostCode  string `json:"post_code"`
	} `json:"address_billing"`
	Items []struct {
		OrderItemID int64   `json:"order_item_id"`
		Name        string  `json:"name"`
		PaidPrice   float64 `json:"paid_price"`
		ShopSKU     string  `json:"shop_sku"`
	} `json:"items"`
}

func mapLazadaOrder(order lazadaOrder, raw json.RawMessage) domain.Order {
	total, _ := decimal.NewFromString(order.Price)

	status := "UNKNOWN"
	if len(order.Statuses) > 0 {
		status = order.Statuses[0]
	}

	items := make([]domain.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.OrderItem{
			ProductID:   strconv.FormatInt(item.OrderItemID, 10),
			ProductName: item.Name,
			// The orders response carries one entry per purchased unit.
			Quantity: 1,
			Price:    decimal.NewFromFloat(item.PaidPrice),
			SKU:      item.ShopSKU,
		})
	}

	var address *domain.Address
	if order.AddressBilling != nil {
		billing := order.AddressBilling
		address = &domain.Address{
			FullName:     billing.FirstName + " " + billing.LastName,
			Phone:        billing.Phone,
			AddressLine1: billing.Address1,
			AddressLine2: billing.Address2,
			City:         billing.City,
			Country:      billing.Country,
			PostalCode:   billing.PostCode,
		}
	}

	return domain.Order{
		ID:          strconv.FormatInt(order.OrderID, 10),
		OrderNumber: order.OrderNumber,
		Status:      status,
		TotalAmount: total,
		Currency:    "SGD",
		Items:       items,
		Customer: domain.Customer{
			ID:   strconv.FormatInt(order.OrderID, 10),
			Name: order.CustomerFirstName + " " + order.CustomerLastName,
		},
		ShippingAddress:  address,
		CreatedAt:        lazadaTime(order.CreatedAt),
		UpdatedAt:        lazadaTime(order.UpdatedAt),
		PlatformSpecific: camelPayload(raw),
	}
}

// GetProducts lists products with offset pagination.
func (a *LazadaAdapter) GetProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = lazadaDefaultPageSize
	}

	params := map[string]string{
		"filter": "all",
		"offset": strconv.Itoa(query.Offset),
		"limit":  strconv.Itoa(limit),
	}

	env, _, err := a.request(ctx, http.MethodGet, lazadaPathProductsGet, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch products from Lazada", domain.CodeFetchProductsError)
	}

	var data struct {
		Products []json.RawMessage `json:"products"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch products from Lazada", domain.CodeFetchProductsError)
		}
	}

	products := make([]domain.Product, 0, len(data.Products))
	for _, raw := range data.Products {
		var product lazadaProduct
		if err := json.Unmarshal(raw, &product); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch products from Lazada", domain.CodeFetchProductsError)
		}
		products = append(products, mapLazadaProduct(product, raw))
	}
	return products, nil
}

// GetProductByID fetches one product.
func (a *LazadaAdapter) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	env, _, err := a.request(ctx, http.MethodGet, lazadaPathProductGet, map[string]string{"item_id": id}, nil)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch product %s from Lazada", id), domain.CodeFetchProductError)
	}

	var product lazadaProduct
	if err := json.Unmarshal(env.Data, &product); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch product %s from Lazada", id), domain.CodeFetchProductError)
	}
	if product.ItemID == 0 {
		return nil, domain.NewConnectorError("Product not found", domain.CodeProductNotFound, http.StatusNotFound, nil)
	}

	mapped := mapLazadaProduct(product, env.Data)
	return &mapped, nil
}

// CreateProduct creates a product using the vendor's Request/Product payload
// shape, then re-fetches it by the returned item id.
func (a *LazadaAdapter) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	categoryID := input.CategoryID
	if categoryID == "" {
		categoryID = "0"
	}

	price, _ := input.Price.Float64()
	attributes := map[string]any{
		"name":        input.Name,
		"description": input.Description,
		"price":       price,
		"quantity":    input.Stock,
		"SellerSku":   input.SKU,
	}
	for key, value := range input.PlatformSpecific {
		attributes[key] = value
	}

	body := map[string]any{
		"Request": map[string]any{
			"Product": map[string]any{
				"PrimaryCategory": categoryID,
				"Attributes":      attributes,
			},
		},
	}

	env, _, err := a.request(ctx, http.MethodPost, lazadaPathCreate, nil, body)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to create product on Lazada", domain.CodeCreateProductError)
	}

	var created struct {
		ItemID int64 `json:"item_id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return nil, domain.WrapError(err, "Failed to create product on Lazada", domain.CodeCreateProductError)
	}

	product, err := a.GetProductByID(ctx, strconv.FormatInt(created.ItemID, 10))
	if err != nil {
		return nil, domain.WrapError(err, "Failed to create product on Lazada", domain.CodeCreateProductError)
	}
	return product, nil
}

// UpdateProduct applies a partial attribute update, then re-fetches the
// product.
func (a *LazadaAdapter) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	attributes := map[string]any{}
	if patch.Name != nil {
		attributes["name"] = *patch.Name
	}
	if patch.Description != nil {
		attributes["description"] = *patch.Description
	}
	if patch.Price != nil {
		price, _ := patch.Price.Float64()
		attributes["price"] = price
	}
	if patch.Stock != nil {
		attributes["quantity"] = *patch.Stock
	}

	body := map[string]any{
		"Request": map[string]any{
			"Product": map[string]any{
				"ItemId":     numberOrString(id),
				"Attributes": attributes,
			},
		},
	}

	if _, _, err := a.request(ctx, http.MethodPost, lazadaPathUpdate, nil, body); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update product %s on Lazada", id), domain.CodeUpdateProductError)
	}

	product, err := a.GetProductByID(ctx, id)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update product %s on Lazada", id), domain.CodeUpdateProductError)
	}
	return product, nil
}

// GetOrders lists orders within the query's date range, defaulting to the
// trailing 30 days.
func (a *LazadaAdapter) GetOrders(ctx context.Context, query domain.OrderQuery) ([]domain.Order, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = lazadaDefaultPageSize
	}

	createdBefore := query.EndDate
	if createdBefore.IsZero() {
		createdBefore = time.Now()
	}
	createdAfter := query.StartDate
	if createdAfter.IsZero() {
		createdAfter = createdBefore.Add(-30 * 24 * time.Hour)
	}

	params := map[string]string{
		"created_after":  createdAfter.UTC().Format(time.RFC3339),
		"created_before": createdBefore.UTC().Format(time.RFC3339),
		"offset":         strconv.Itoa(query.Offset),
		"limit":          strconv.Itoa(limit),
	}
	if query.Status != "" {
		params["status"] = query.Status
	}

	env, _, err := a.request(ctx, http.MethodGet, lazadaPathOrdersGet, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch orders from Lazada", domain.CodeFetchOrdersError)
	}

	var data struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch orders from Lazada", domain.CodeFetchOrdersError)
		}
	}

	orders := make([]domain.Order, 0, len(data.Orders))
	for _, raw := range data.Orders {
		var order lazadaOrder
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch orders from Lazada", domain.CodeFetchOrdersError)
		}
		orders = append(orders, mapLazadaOrder(order, raw))
	}
	return orders, nil
}

// GetOrderByID fetches one order.
func (a *LazadaAdapter) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	env, _, err := a.request(ctx, http.MethodGet, lazadaPathOrderGet, map[string]string{"order_id": id}, nil)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch order %s from Lazada", id), domain.CodeFetchOrderError)
	}

	var order lazadaOrder
	if err := json.Unmarshal(env.Data, &order); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch order %s from Lazada", id), domain.CodeFetchOrderError)
	}
	if order.OrderID == 0 {
		return nil, domain.NewConnectorError("Order not found", domain.CodeOrderNotFound, http.StatusNotFound, nil)
	}

	mapped := mapLazadaOrder(order, env.Data)
	return &mapped, nil
}

// UpdateOrderStatus packs the order (the only status transition the vendor
// exposes through this endpoint), then re-fetches it.
func (a *LazadaAdapter) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	body := map[string]any{
		"order_id": numberOrString(id),
		"status":   status,
	}
	if _, _, err := a.request(ctx, http.MethodPost, lazadaPathOrderPack, nil, body); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update order %s status on Lazada", id), domain.CodeUpdateOrderError)
	}

	order, err := a.GetOrderByID(ctx, id)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update order %s status on Lazada", id), domain.CodeUpdateOrderError)
	}
	return order, nil
}

// HealthCheck verifies reachability and credentials with a one-item listing.
func (a *LazadaAdapter) HealthCheck(ctx context.Context) error {
	_, err := a.GetProducts(ctx, domain.ProductQuery{Limit: 1})
	return err
}

// GenerateAuthURL builds the seller authorization link. The state argument is
// the uuid Lazada echoes back on the callback.
func (a *LazadaAdapter) GenerateAuthURL(redirectURL, state string) (string, error) {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("redirect_uri", redirectURL)
	query.Set("client_id", a.creds.AppKey)
	query.Set("uuid", state)
	return lazadaAuthURL + "?" + query.Encode(), nil
}

// tokenRequest performs a signed auth call without the stored access token:
// token endpoints authenticate with the signature alone.
func (a *LazadaAdapter) tokenRequest(ctx context.Context, apiPath string, params map[string]string) (*domain.TokenResult, error) {
	signParams := map[string]string{
		"app_key":     a.creds.AppKey,
		"timestamp":   a.signer.Timestamp(),
		"sign_method": "sha256",
	}
	for key, value := range params {
		signParams[key] = value
	}

	query := url.Values{}
	for key, value := range signParams {
		query.Set(key, value)
	}
	query.Set("sign", a.signer.Sign(apiPath, signParams))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+apiPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	raw, status, err := doJSON(a.client, req)
	if err != nil {
		return nil, err
	}

	var env lazadaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if status >= http.StatusBadRequest || env.Code != "0" {
		message := env.Message
		if message == "" {
			message = http.StatusText(status)
		}
		if status < http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		code := env.Code
		if code == "" {
			code = "LAZADA_ERROR"
		}
		return nil, domain.NewConnectorError(message, code, status, json.RawMessage(raw))
	}

	// Token fields live at the top level of the envelope, not under data.
	var token struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	result := &domain.TokenResult{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpireIn:     token.ExpiresIn,
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		if camel, ok := keycase.ToCamel(body).(map[string]any); ok {
			result.Raw = camel
		}
	}
	return result, nil
}

// GetAccessToken exchanges an authorization code. The shopID argument carries
// the uuid used during authorization; mainAccountID is ignored.
func (a *LazadaAdapter) GetAccessToken(ctx context.Context, code, shopID, _ string) (*domain.TokenResult, error) {
	params := map[string]string{"code": code}
	if shopID != "" {
		params["uuid"] = shopID
	}

	result, err := a.tokenRequest(ctx, lazadaPathTokenCreate, params)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to get access token", domain.CodeAuthError)
	}
	return result, nil
}

// RefreshAccessToken renews tokens with a signed refresh call.
func (a *LazadaAdapter) RefreshAccessToken(ctx context.Context, refreshToken, _, _ string) (*domain.TokenResult, error) {
	result, err := a.tokenRequest(ctx, lazadaPathTokenRefresh, map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, domain.WrapError(err, "Failed to refresh access token", domain.CodeAuthError)
	}
	return result, nil
}
