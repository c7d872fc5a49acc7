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
	tiktokEndpoint        = "https://open-api.tiktokglobalshop.com"
	tiktokSandboxEndpoint = "https://open-api-sandbox.tiktokglobalshop.com"
	tiktokAuthEndpoint    = "https://auth.tiktok-shops.com"

	tiktokPathProductList  = "/api/products/search"
	tiktokPathProductGet   = "/api/products/details"
	tiktokPathStockUpdate  = "/api/products/stocks"
	tiktokPathOrderList    = "/api/orders/search"
	tiktokPathOrderGet     = "/api/orders/detail/query"
	tiktokPathOrderStatus  = "/api/orders/status"
	tiktokPathProductV2    = "/product/202309/products"
	tiktokPathAuthorize    = "/oauth/authorize"
	tiktokPathTokenGet     = "/api/v2/token/get"
	tiktokPathTokenRefresh = "/api/token/refreshToken"

	tiktokDefaultPageSize = 20
)

// TikTokAdapter implements the Platform and AuthProvider ports against the
// TikTok Shop open API.
type TikTokAdapter struct {
	client  *http.Client
	creds   domain.TikTokShopCredentials
	signer  *signing.TikTokSigner
	baseURL string
	// authBaseURL is the separate token-exchange host. Token exchange is
	// unsigned; refresh goes through the main host with a signature.
	authBaseURL string
}

// NewTikTokAdapter creates a TikTok Shop adapter from the given credentials.
func NewTikTokAdapter(creds domain.TikTokShopCredentials, cfg domain.ConnectorConfig) *TikTokAdapter {
	baseURL := tiktokEndpoint
	if cfg.Sandbox {
		baseURL = tiktokSandboxEndpoint
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	authBaseURL := tiktokAuthEndpoint
	if cfg.AuthBaseURL != "" {
		authBaseURL = cfg.AuthBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}

	return &TikTokAdapter{
		client: httpclient.NewClient(timeout),
		creds:  creds,
		signer: &signing.TikTokSigner{
			AppKey:    creds.AppKey,
			AppSecret: creds.AppSecret,
		},
		baseURL:     baseURL,
		authBaseURL: authBaseURL,
	}
}

// tiktokEnvelope is the common TikTok response wrapper; code 0 is success.
type tiktokEnvelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

// request signs and executes one call against the main API host. The access
// token travels in the x-tts-access-token header and is never signed.
func (a *TikTokAdapter) request(ctx context.Context, method, apiPath string, params url.Values, body any) (*tiktokEnvelope, error) {
	timestamp := a.signer.Timestamp()

	query := url.Values{}
	for key, vals := range params {
		for _, v := range vals {
			query.Add(key, v)
		}
	}
	query.Set("app_key", a.creds.AppKey)
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("sign", a.signer.Sign(apiPath, timestamp))

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

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+apiPath+"?"+query.Encode(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-tts-access-token", a.creds.AccessToken)

	return a.execute(req)
}

func (a *TikTokAdapter) execute(req *http.Request) (*tiktokEnvelope, error) {
	raw, status, err := doJSON(a.client, req)
	if err != nil {
		return nil, err
	}

	var env tiktokEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if status >= http.StatusBadRequest || env.Code != 0 {
		message := env.Message
		if message == "" {
			message = http.StatusText(status)
		}
		if status < http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		return nil, domain.NewConnectorError(message, strconv.Itoa(env.Code), status, json.RawMessage(raw))
	}
	return &env, nil
}

type tiktokProduct struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CategoryID  string `json:"category_id"`
	CreateTime  int64  `json:"create_time"`
	UpdateTime  int64  `json:"update_time"`
	Price       struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"price"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	SKUs []struct {
		SellerSKU string `json:"seller_sku"`
		Quantity  int    `json:"quantity"`
	} `json:"skus"`
}

func mapTikTokProduct(product tiktokProduct, raw json.RawMessage) domain.Product {
	price, _ := decimal.NewFromString(product.Price.Amount)

	images := make([]string, 0, len(product.Images))
	for _, image := range product.Images {
		images = append(images, image.URL)
	}

	stock := 0
	sku := ""
	if len(product.SKUs) > 0 {
		stock = product.SKUs[0].Quantity
		sku = product.SKUs[0].SellerSKU
	}

	status := domain.ProductStatusInactive
	if product.Status == "ACTIVE" {
		status = domain.ProductStatusActive
	}

	return domain.Product{
		ID:               product.ID,
		Name:             product.Title,
		Description:      product.Description,
		Price:            price,
		Currency:         product.Price.Currency,
		Stock:            stock,
		SKU:              sku,
		Images:           images,
		CategoryID:       product.CategoryID,
		Status:           status,
		CreatedAt:        time.Unix(product.CreateTime, 0),
		UpdatedAt:        time.Unix(product.UpdateTime, 0),
		PlatformSpecific: camelPayload(raw),
	}
}

type tiktokOrder struct {
	ID          string `json:"id"`
	OrderStatus string `json:"order_status"`
	CreateTime  int64  `json:"create_time"`
	UpdateTime  int64  `json:"update_time"`
	PaymentInfo struct {
		TotalAmount string `json:"total_amount"`
		Currency    string `json:"currency"`
	} `json:"payment_info"`
	LineItems []struct {
		ProductID   string `json:"product_id"`
		ProductName string `json:"product_name"`
		Quantity    int    `json:"quantity"`
		SalePrice   string `json:"sale_price"`
		SKUID       string `json:"sku_id"`
	} `json:"line_items"`
	BuyerInfo struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"buyer_info"`
	RecipientAddress *struct {
		Name         string `json:"name"`
		Phone        string `json:"phone"`
		AddressLine1 string `json:"address_line1"`
		AddressLine2 string `json:"address_line2"`
		City         string `json:"city"`
		State        string `json:"state"`
		RegionCode   string `json:"region_code"`
		PostalCode   string `json:"postal_code"`
	} `json:"recipient_address"`
}

func mapTikTokOrder(order tiktokOrder, raw json.RawMessage) domain.Order {
	total, _ := decimal.NewFromString(order.PaymentInfo.TotalAmount)

	items := make([]domain.OrderItem, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		price, _ := decimal.NewFromString(item.SalePrice)
		items = append(items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       price,
			SKU:         item.SKUID,
		})
	}

	var address *domain.Address
	if order.RecipientAddress != nil {
		recipient := order.RecipientAddress
		address = &domain.Address{
			FullName:     recipient.Name,
			Phone:        recipient.Phone,
			AddressLine1: recipient.AddressLine1,
			AddressLine2: recipient.AddressLine2,
			City:         recipient.City,
			State:        recipient.State,
			Country:      recipient.RegionCode,
			PostalCode:   recipient.PostalCode,
		}
	}

	return domain.Order{
		ID:          order.ID,
		OrderNumber: order.ID,
		Status:      order.OrderStatus,
		TotalAmount: total,
		Currency:    order.PaymentInfo.Currency,
		Items:       items,
		Customer: domain.Customer{
			ID:    order.BuyerInfo.ID,
			Name:  order.BuyerInfo.Name,
			Email: order.BuyerInfo.Email,
		},
		ShippingAddress:  address,
		CreatedAt:        time.Unix(order.CreateTime, 0),
		UpdatedAt:        time.Unix(order.UpdateTime, 0),
		PlatformSpecific: camelPayload(raw),
	}
}

// GetProducts lists products with page-number pagination.
func (a *TikTokAdapter) GetProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = tiktokDefaultPageSize
	}

	params := url.Values{}
	params.Set("page_number", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(limit))
	if query.Status != "" {
		params.Set("search_status", query.Status)
	}

	env, err := a.request(ctx, http.MethodGet, tiktokPathProductList, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch products from TikTok Shop", domain.CodeFetchProductsError)
	}

	var data struct {
		Products []json.RawMessage `json:"products"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch products from TikTok Shop", domain.CodeFetchProductsError)
		}
	}

	products := make([]domain.Product, 0, len(data.Products))
	for _, raw := range data.Products {
		var product tiktokProduct
		if err := json.Unmarshal(raw, &product); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch products from TikTok Shop", domain.CodeFetchProductsError)
		}
		products = append(products, mapTikTokProduct(product, raw))
	}
	return products, nil
}

// GetProductByID fetches one product.
func (a *TikTokAdapter) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	params := url.Values{}
	params.Set("product_id", id)

	env, err := a.request(ctx, http.MethodGet, tiktokPathProductGet, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch product %s from TikTok Shop", id), domain.CodeFetchProductError)
	}

	var product tiktokProduct
	if err := json.Unmarshal(env.Data, &product); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch product %s from TikTok Shop", id), domain.CodeFetchProductError)
	}
	if product.ID == "" {
		return nil, domain.NewConnectorError("Product not found", domain.CodeProductNotFound, http.StatusNotFound, nil)
	}

	mapped := mapTikTokProduct(product, env.Data)
	return &mapped, nil
}

// CreateProduct creates a product through the versioned v2 endpoint, then
// re-fetches it by the returned id.
func (a *TikTokAdapter) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	images := make([]map[string]any, 0, len(input.Images))
	for _, imageURL := range input.Images {
		images = append(images, map[string]any{"url": imageURL})
	}

	body := map[string]any{
		"title":       input.Name,
		"description": input.Description,
		"price":       input.Price.String(),
		"skus": []map[string]any{{
			"seller_sku": input.SKU,
			"quantity":   input.Stock,
		}},
	}
	if input.CategoryID != "" {
		body["category_id"] = input.CategoryID
	}
	if len(images) > 0 {
		body["images"] = images
	}
	for key, value := range input.PlatformSpecific {
		body[key] = value
	}

	env, err := a.request(ctx, http.MethodPost, tiktokPathProductV2, nil, body)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to create product on TikTok Shop", domain.CodeCreateProductError)
	}

	var created struct {
		ProductID string `json:"product_id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return nil, domain.WrapError(err, "Failed to create product on TikTok Shop", domain.CodeCreateProductError)
	}

	product, err := a.GetProductByID(ctx, created.ProductID)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to create product on TikTok Shop", domain.CodeCreateProductError)
	}
	return product, nil
}

// UpdateProduct applies a partial update via the stock endpoint, then
// re-fetches the product.
func (a *TikTokAdapter) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	body := map[string]any{
		"product_id": id,
	}
	if patch.Name != nil {
		body["title"] = *patch.Name
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Price != nil {
		body["price"] = patch.Price.String()
	}
	if patch.Stock != nil {
		body["skus"] = []map[string]any{{"quantity": *patch.Stock}}
	}

	if _, err := a.request(ctx, http.MethodPut, tiktokPathStockUpdate, nil, body); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update product %s on TikTok Shop", id), domain.CodeUpdateProductError)
	}

	product, err := a.GetProductByID(ctx, id)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update product %s on TikTok Shop", id), domain.CodeUpdateProductError)
	}
	return product, nil
}

// GetOrders lists orders with page-number pagination.
func (a *TikTokAdapter) GetOrders(ctx context.Context, query domain.OrderQuery) ([]domain.Order, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = tiktokDefaultPageSize
	}

	params := url.Values{}
	params.Set("page_number", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(limit))
	if query.Status != "" {
		params.Set("order_status", query.Status)
	}

	env, err := a.request(ctx, http.MethodGet, tiktokPathOrderList, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch orders from TikTok Shop", domain.CodeFetchOrdersError)
	}

	var data struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch orders from TikTok Shop", domain.CodeFetchOrdersError)
		}
	}

	orders := make([]domain.Order, 0, len(data.Orders))
	for _, raw := range data.Orders {
		var order tiktokOrder
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, domain.WrapError(err, "Failed to fetch orders from TikTok Shop", domain.CodeFetchOrdersError)
		}
		orders = append(orders, mapTikTokOrder(order, raw))
	}
	return orders, nil
}

// GetOrderByID fetches one order.
func (a *TikTokAdapter) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	params := url.Values{}
	params.Set("order_id", id)

	env, err := a.request(ctx, http.MethodGet, tiktokPathOrderGet, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch order %s from TikTok Shop", id), domain.CodeFetchOrderError)
	}

	var order tiktokOrder
	if err := json.Unmarshal(env.Data, &order); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch order %s from TikTok Shop", id), domain.CodeFetchOrderError)
	}
	if order.ID == "" {
		return nil, domain.NewConnectorError("Order not found", domain.CodeOrderNotFound, http.StatusNotFound, nil)
	}

	mapped := mapTikTokOrder(order, env.Data)
	return &mapped, nil
}

// UpdateOrderStatus mutates the order state, then re-fetches the order.
func (a *TikTokAdapter) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	body := map[string]any{
		"order_id": id,
		"status":   status,
	}
	if _, err := a.request(ctx, http.MethodPost, tiktokPathOrderStatus, nil, body); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update order %s status on TikTok Shop", id), domain.CodeUpdateOrderError)
	}

	order, err := a.GetOrderByID(ctx, id)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update order %s status on TikTok Shop", id), domain.CodeUpdateOrderError)
	}
	return order, nil
}

// HealthCheck verifies reachability and credentials with a one-item listing.
func (a *TikTokAdapter) HealthCheck(ctx context.Context) error {
	_, err := a.GetProducts(ctx, domain.ProductQuery{Limit: 1})
	return err
}

// GenerateAuthURL builds the seller authorization link on the auth host.
func (a *TikTokAdapter) GenerateAuthURL(redirectURL, state string) (string, error) {
	query := url.Values{}
	query.Set("app_key", a.creds.AppKey)
	if state != "" {
		query.Set("state", state)
	}
	if redirectURL != "" {
		query.Set("redirect_uri", redirectURL)
	}
	return a.authBaseURL + tiktokPathAuthorize + "?" + query.Encode(), nil
}

// GetAccessToken exchanges an authorization code on the dedicated auth host.
// Unlike every other TikTok call this one is unsigned: the app secret itself
// travels as a query parameter. The shopID / mainAccountID arguments are
// ignored.
func (a *TikTokAdapter) GetAccessToken(ctx context.Context, code, _, _ string) (*domain.TokenResult, error) {
	query := url.Values{}
	query.Set("app_key", a.creds.AppKey)
	query.Set("app_secret", a.creds.AppSecret)
	query.Set("auth_code", code)
	query.Set("grant_type", "authorized_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.authBaseURL+tiktokPathTokenGet+"?"+query.Encode(), nil)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to get access token", domain.CodeAuthError)
	}

	env, err := a.execute(req)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to get access token", domain.CodeAuthError)
	}

	result, err := tiktokTokenResult(env.Data)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to get access token", domain.CodeAuthError)
	}
	return result, nil
}

// RefreshAccessToken renews tokens through the main host with a signed
// request; the refresh asymmetry (signed here, unsigned on exchange) is the
// vendor's own.
func (a *TikTokAdapter) RefreshAccessToken(ctx context.Context, refreshToken, _, _ string) (*domain.TokenResult, error) {
	params := url.Values{}
	params.Set("refresh_token", refreshToken)
	params.Set("grant_type", "refresh_token")

	env, err := a.request(ctx, http.MethodGet, tiktokPathTokenRefresh, params, nil)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to refresh access token", domain.CodeAuthError)
	}

	result, err := tiktokTokenResult(env.Data)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to refresh access token", domain.CodeAuthError)
	}
	return result, nil
}

func tiktokTokenResult(data json.RawMessage) (*domain.TokenResult, error) {
	var token struct {
		AccessToken          string `json:"access_token"`
		RefreshToken         string `json:"refresh_token"`
		AccessTokenExpireIn  int64  `json:"access_token_expire_in"`
		RefreshTokenExpireIn int64  `json:"refresh_token_expire_in"`
	}
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	result := &domain.TokenResult{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpireIn:     token.AccessTokenExpireIn,
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err == nil {
		if camel, ok := keycase.ToCamel(body).(map[string]any); ok {
			result.Raw = camel
		}
	}
	return result, nil
}

// camelPayload decodes a raw vendor payload into a camelCase-keyed map for
// the PlatformSpecific field.
func camelPayload(raw json.RawMessage) any {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return keycase.ToCamel(payload)
}
