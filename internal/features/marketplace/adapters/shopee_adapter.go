package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ecom-connector/internal/core/httpclient"
	"ecom-connector/internal/core/keycase"
	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/signing"

	"github.com/shopspring/decimal"
)

const (
	shopeeEndpoint        = "https://partner.shopeemobile.com"
	shopeeSandboxEndpoint = "https://openplatform.sandbox.test-stable.shopee.sg"

	shopeePathItemList     = "/api/v2/product/get_item_list"
	shopeePathItemBaseInfo = "/api/v2/product/get_item_base_info"
	shopeePathAddItem      = "/api/v2/product/add_item"
	shopeePathUpdateItem   = "/api/v2/product/update_item"
	shopeePathOrderList    = "/api/v2/order/get_order_list"
	shopeePathOrderDetail  = "/api/v2/order/get_order_detail"
	shopeePathAuthPartner  = "/api/v2/shop/auth_partner"
	shopeePathTokenGet     = "/api/v2/auth/token/get"
	shopeePathTokenRefresh = "/api/v2/auth/access_token/get"

	shopeeProductPageSize = 20
	shopeeOrderPageSize   = 100
	shopeeAutoPageSize    = 50

	// maxAutoPaginateItems caps every auto-paginating loop so a vendor that
	// keeps reporting more pages can never make the client loop forever.
	maxAutoPaginateItems = 10000
)

// shopeeOrderOptionalFields is the fixed field list sent to get_order_detail.
// The vendor omits most order fields unless each one is requested by name.
var shopeeOrderOptionalFields = []string{
	"buyer_user_id",
	"buyer_username",
	"estimated_shipping_fee",
	"recipient_address",
	"actual_shipping_fee",
	"goods_to_declare",
	"note",
	"note_update_time",
	"item_list",
	"pay_time",
	"dropshipper",
	"dropshipper_phone",
	"split_up",
	"buyer_cancel_reason",
	"cancel_by",
	"cancel_reason",
	"actual_shipping_fee_confirmed",
	"buyer_cpf_id",
	"fulfillment_flag",
	"pickup_done_time",
	"package_list",
	"shipping_carrier",
	"payment_method",
	"total_amount",
	"invoice_data",
	"order_chargeable_weight_gram",
	"return_request_due_date",
	"edt",
	"payment_info",
}

// ShopeeAdapter implements the Platform, AuthProvider, ProductPager and
// OrderPager ports against the Shopee Open Platform v2 API.
type ShopeeAdapter struct {
	client *http.Client
	creds  domain.ShopeeCredentials
	signer *signing.ShopeeSigner
	// baseURL is the configured host; any path segment it carries becomes
	// part of every signed path.
	baseURL    string
	pathPrefix string
}

// NewShopeeAdapter creates a Shopee adapter from the given credentials.
func NewShopeeAdapter(creds domain.ShopeeCredentials, cfg domain.ConnectorConfig) *ShopeeAdapter {
	baseURL := shopeeEndpoint
	if cfg.Sandbox {
		baseURL = shopeeSandboxEndpoint
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}

	pathPrefix := ""
	if u, err := url.Parse(baseURL); err == nil {
		pathPrefix = strings.TrimSuffix(u.Path, "/")
	}

	return &ShopeeAdapter{
		client: httpclient.NewClient(timeout),
		creds:  creds,
		signer: &signing.ShopeeSigner{
			PartnerID:  creds.PartnerID,
			PartnerKey: creds.PartnerKey,
		},
		baseURL:    baseURL,
		pathPrefix: pathPrefix,
	}
}

// shopeeEnvelope is the common Shopee response wrapper. Success is signaled
// by an absent or empty error field.
type shopeeEnvelope struct {
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Response  json.RawMessage `json:"response"`
}

// fullAPIPath prepends any base-URL path prefix to the api route. Omitting
// the prefix would produce a wrong signature that the vendor rejects as an
// auth error, not a bad path.
func (a *ShopeeAdapter) fullAPIPath(apiPath string) string {
	if !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}
	return a.pathPrefix + apiPath
}

// request signs and executes one call. Shop-level calls append shop_id and
// access_token to the query and to the signature base; auth endpoints must
// pass shopLevel=false since no token exists yet.
func (a *ShopeeAdapter) request(ctx context.Context, method, apiPath string, params url.Values, body any, shopLevel bool) (*shopeeEnvelope, []byte, error) {
	timestamp := a.signer.Timestamp()
	fullPath := a.fullAPIPath(apiPath)

	var sign string
	if shopLevel {
		sign = a.signer.Sign(fullPath, timestamp, a.creds.AccessToken, a.creds.ShopID)
	} else {
		sign = a.signer.SignPublic(fullPath, timestamp)
	}

	query := url.Values{}
	for key, vals := range params {
		for _, v := range vals {
			query.Add(key, v)
		}
	}
	query.Set("partner_id", a.creds.PartnerID)
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("sign", sign)
	if shopLevel {
		query.Set("shop_id", a.creds.ShopID)
		if a.creds.AccessToken != "" {
			query.Set("access_token", a.creds.AccessToken)
		}
	}

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

	var env shopeeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if status >= http.StatusBadRequest {
		return nil, nil, shopeeVendorError(&env, raw, status)
	}
	if env.Error != "" {
		return nil, nil, shopeeVendorError(&env, raw, http.StatusBadRequest)
	}

	return &env, raw, nil
}

func shopeeVendorError(env *shopeeEnvelope, raw []byte, status int) *domain.ConnectorError {
	code := env.Error
	if code == "" {
		code = "SHOPEE_ERROR"
	}
	message := env.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return domain.NewConnectorError(message, code, status, json.RawMessage(raw))
}

// shopeeItem mirrors the fields of get_item_base_info this client maps; the
// vendor has migrated price/stock/description into nested structures, so both
// the flat legacy fields and the nested ones are read.
type shopeeItem struct {
	ItemID      int64    `json:"item_id"`
	ItemName    string   `json:"item_name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	ItemSKU     string   `json:"item_sku"`
	Images      []string `json:"images"`
	CategoryID  int64    `json:"category_id"`
	ItemStatus  string   `json:"item_status"`
	CreateTime  int64    `json:"create_time"`
	UpdateTime  int64    `json:"update_time"`

	PriceInfo []struct {
		Currency      string  `json:"currency"`
		CurrentPrice  float64 `json:"current_price"`
		OriginalPrice float64 `json:"original_price"`
	} `json:"price_info"`
	Image struct {
		ImageURLList []string `json:"image_url_list"`
	} `json:"image"`
	StockInfoV2 struct {
		SummaryInfo struct {
			TotalAvailableStock int `json:"total_available_stock"`
		} `json:"summary_info"`
	} `json:"stock_info_v2"`
	DescriptionInfo struct {
		ExtendedDescription struct {
			FieldList []struct {
				Text string `json:"text"`
			} `json:"field_list"`
		} `json:"extended_description"`
	} `json:"description_info"`
}

func mapShopeeProduct(item shopeeItem, raw json.RawMessage) domain.Product {
	price := item.Price
	currency := "VND"
	if len(item.PriceInfo) > 0 {
		info := item.PriceInfo[0]
		if info.CurrentPrice != 0 {
			price = info.CurrentPrice
		} else if info.OriginalPrice != 0 {
			price = info.OriginalPrice
		}
		if info.Currency != "" {
			currency = info.Currency
		}
	}

	images := item.Image.ImageURLList
	if len(images) == 0 {
		images = item.Images
	}

	stock := item.StockInfoV2.SummaryInfo.TotalAvailableStock
	if stock == 0 {
		stock = item.Stock
	}

	description := item.Description
	if description == "" {
		fields := item.DescriptionInfo.ExtendedDescription.FieldList
		if len(fields) > 0 {
			description = fields[0].Text
		}
	}

	status := domain.ProductStatusInactive
	if item.ItemStatus == "NORMAL" {
		status = domain.ProductStatusActive
	}

	categoryID := ""
	if item.CategoryID != 0 {
		categoryID = strconv.FormatInt(item.CategoryID, 10)
	}

	var platformSpecific any
	_ = json.Unmarshal(raw, &platformSpecific)

	return domain.Product{
		ID:               strconv.FormatInt(item.ItemID, 10),
		Name:             item.ItemName,
		Description:      description,
		Price:            decimal.NewFromFloat(price),
		Currency:         currency,
		Stock:            stock,
		SKU:              item.ItemSKU,
		Images:           images,
		CategoryID:       categoryID,
		Status:           status,
		CreatedAt:        time.Unix(item.CreateTime, 0),
		UpdatedAt:        time.Unix(item.UpdateTime, 0),
		PlatformSpecific: platformSpecific,
	}
}

type shopeeOrder struct {
	OrderSN          string            `json:"order_sn"`
	OrderStatus      string            `json:"order_status"`
	TotalAmount      float64           `json:"total_amount"`
	Currency         string            `json:"currency"`
	ItemList         []shopeeOrderItem `json:"item_list"`
	BuyerUserID      int64             `json:"buyer_user_id"`
	BuyerUsername    string            `json:"buyer_username"`
	RecipientAddress *shopeeAddress    `json:"recipient_address"`
	CreateTime       int64             `json:"create_time"`
	UpdateTime       int64             `json:"update_time"`
}

type shopeeOrderItem struct {
	ItemID                 int64   `json:"item_id"`
	ItemName               string  `json:"item_name"`
	ModelQuantityPurchased int     `json:"model_quantity_purchased"`
	ModelOriginalPrice     float64 `json:"model_original_price"`
	ModelDiscountedPrice   float64 `json:"model_discounted_price"`
	ModelSKU               string  `json:"model_sku"`
	ItemSKU                string  `json:"item_sku"`
}

type shopeeAddress struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	FullAddress string `json:"full_address"`
	District    string `json:"district"`
	Town        string `json:"town"`
	City        string `json:"city"`
	State       string `json:"state"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	Zipcode     string `json:"zipcode"`
}

func mapShopeeOrder(order shopeeOrder, raw json.RawMessage) domain.Order {
	items := make([]domain.OrderItem, 0, len(order.ItemList))
	for _, item := range order.ItemList {
		price := item.ModelDiscountedPrice
		if price == 0 {
			price = item.ModelOriginalPrice
		}
		sku := item.ModelSKU
		if sku == "" {
			sku = item.ItemSKU
		}
		items = append(items, domain.OrderItem{
			ProductID:   strconv.FormatInt(item.ItemID, 10),
			ProductName: item.ItemName,
			Quantity:    item.ModelQuantityPurchased,
			Price:       decimal.NewFromFloat(price),
			SKU:         sku,
		})
	}

	var address *domain.Address
	if order.RecipientAddress != nil {
		recipient := order.RecipientAddress

		var line2Parts []string
		if recipient.District != "" {
			line2Parts = append(line2Parts, recipient.District)
		}
		if recipient.Town != "" {
			line2Parts = append(line2Parts, recipient.Town)
		}

		state := recipient.State
		if state == "" {
			state = recipient.Region
		}

		address = &domain.Address{
			FullName:     recipient.Name,
			Phone:        recipient.Phone,
			AddressLine1: recipient.FullAddress,
			AddressLine2: strings.Join(line2Parts, ", "),
			City:         recipient.City,
			State:        state,
			Country:      recipient.Country,
			PostalCode:   recipient.Zipcode,
		}
	}

	var platformSpecific any
	_ = json.Unmarshal(raw, &platformSpecific)

	return domain.Order{
		ID:          order.OrderSN,
		OrderNumber: order.OrderSN,
		Status:      order.OrderStatus,
		TotalAmount: decimal.NewFromFloat(order.TotalAmount),
		Currency:    order.Currency,
		Items:       items,
		Customer: domain.Customer{
			ID:   strconv.FormatInt(order.BuyerUserID, 10),
			Name: order.BuyerUsername,
		},
		ShippingAddress:  address,
		CreatedAt:        time.Unix(order.CreateTime, 0),
		UpdatedAt:        time.Unix(order.UpdateTime, 0),
		PlatformSpecific: platformSpecific,
	}
}

// GetProducts lists products. The vendor's list endpoint returns identifiers
// only, so this is always two-phase: list item ids, then batch-fetch details.
func (a *ShopeeAdapter) GetProducts(ctx context.Context, query domain.ProductQuery) ([]domain.Product, error) {
	page, err := a.productPage(ctx, query)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch products from Shopee", domain.CodeFetchProductsError)
	}
	return page.Products, nil
}

// GetProductsWithPagination lists one page of products along with the
// vendor's pagination metadata.
func (a *ShopeeAdapter) GetProductsWithPagination(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	page, err := a.productPage(ctx, query)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch products from Shopee", domain.CodeFetchProductsError)
	}
	return page, nil
}

func (a *ShopeeAdapter) productPage(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	pageSize := query.Limit
	if pageSize <= 0 {
		pageSize = shopeeProductPageSize
	}
	status := query.Status
	if status == "" {
		status = "NORMAL"
	}

	params := url.Values{}
	params.Set("offset", strconv.Itoa(query.Offset))
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("item_status", status)

	env, _, err := a.request(ctx, http.MethodGet, shopeePathItemList, params, nil, true)
	if err != nil {
		return nil, err
	}

	var list struct {
		Item []struct {
			ItemID int64 `json:"item_id"`
		} `json:"item"`
		ItemIDList  []int64 `json:"item_id_list"`
		TotalCount  int     `json:"total_count"`
		HasNextPage bool    `json:"has_next_page"`
		NextOffset  int     `json:"next_offset"`
	}
	if len(env.Response) > 0 {
		if err := json.Unmarshal(env.Response, &list); err != nil {
			return nil, fmt.Errorf("failed to decode item list: %w", err)
		}
	}

	ids := make([]string, 0, len(list.Item)+len(list.ItemIDList))
	for _, item := range list.Item {
		ids = append(ids, strconv.FormatInt(item.ItemID, 10))
	}
	for _, id := range list.ItemIDList {
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	page := &domain.ProductPage{
		Products:    []domain.Product{},
		TotalCount:  list.TotalCount,
		HasNextPage: list.HasNextPage,
		NextOffset:  list.NextOffset,
	}

	// Zero identifiers is an empty result, not an error.
	if len(ids) == 0 {
		return page, nil
	}

	products, err := a.fetchItemDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	page.Products = products
	return page, nil
}

func (a *ShopeeAdapter) fetchItemDetails(ctx context.Context, ids []string) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("item_id_list", strings.Join(ids, ","))
	params.Set("need_tax_info", "true")
	params.Set("need_complaint_policy", "true")

	env, _, err := a.request(ctx, http.MethodGet, shopeePathItemBaseInfo, params, nil, true)
	if err != nil {
		return nil, err
	}

	var detail struct {
		ItemList []json.RawMessage `json:"item_list"`
	}
	if len(env.Response) > 0 {
		if err := json.Unmarshal(env.Response, &detail); err != nil {
			return nil, fmt.Errorf("failed to decode item details: %w", err)
		}
	}

	products := make([]domain.Product, 0, len(detail.ItemList))
	for _, raw := range detail.ItemList {
		var item shopeeItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		products = append(products, mapShopeeProduct(item, raw))
	}
	return products, nil
}

// GetAllProducts auto-paginates with an offset cursor. Each iteration makes
// forward progress and the loop stops at the vendor-signaled end of results
// or the safety cap, whichever comes first.
func (a *ShopeeAdapter) GetAllProducts(ctx context.Context, status string, maxItems int) ([]domain.Product, error) {
	if maxItems <= 0 || maxItems > maxAutoPaginateItems {
		maxItems = maxAutoPaginateItems
	}

	var all []domain.Product
	offset := 0
	for {
		page, err := a.GetProductsWithPagination(ctx, domain.ProductQuery{
			Limit:  shopeeAutoPageSize,
			Offset: offset,
			Status: status,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, page.Products...)
		if len(all) >= maxItems {
			return all[:maxItems], nil
		}
		if !page.HasNextPage {
			return all, nil
		}

		if page.NextOffset > offset {
			offset = page.NextOffset
		} else {
			// A vendor echoing the same offset must not stall the loop.
			offset += shopeeAutoPageSize
		}
	}
}

// GetProductByID fetches one product through the batch detail endpoint.
func (a *ShopeeAdapter) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	products, err := a.fetchItemDetails(ctx, []string{id})
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch product %s from Shopee", id), domain.CodeFetchProductError)
	}
	if len(products) == 0 {
		return nil, domain.NewConnectorError("Product not found", domain.CodeProductNotFound, http.StatusNotFound, nil)
	}
	return &products[0], nil
}

// CreateProduct creates an item and re-fetches it: the add_item response
// carries only partial data.
func (a *ShopeeAdapter) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	price, _ := input.Price.Float64()
	body := map[string]any{
		"item_name":      input.Name,
		"original_price": price,
		"stock":          input.Stock,
	}
	if input.Description != "" {
		body["description"] = input.Description
	}
	if input.SKU != "" {
		body["item_sku"] = input.SKU
	}
	if input.CategoryID != "" {
		body["category_id"] = numberOrString(input.CategoryID)
	}
	if len(input.Images) > 0 {
		body["image"] = map[string]any{"image_id_list": input.Images}
	}
	for key, value := range input.PlatformSpecific {
		body[key] = value
	}

	env, _, err := a.request(ctx, http.MethodPost, shopeePathAddItem, nil, body, true)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to create product on Shopee", domain.CodeCreateProductError)
	}

	var created struct {
		ItemID int64 `json:"item_id"`
	}
	if err := json.Unmarshal(env.Response, &created); err != nil {
		return nil, domain.WrapError(err, "Failed to create product on Shopee", domain.CodeCreateProductError)
	}

	product, err := a.GetProductByID(ctx, strconv.FormatInt(created.ItemID, 10))
	if err != nil {
		return nil, domain.WrapError(err, "Failed to create product on Shopee", domain.CodeCreateProductError)
	}
	return product, nil
}

// UpdateProduct sends only the fields present in the patch to update_item,
// then re-fetches the product.
func (a *ShopeeAdapter) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	body := map[string]any{
		"item_id": numberOrString(id),
	}
	if patch.Name != nil {
		body["item_name"] = *patch.Name
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Price != nil {
		price, _ := patch.Price.Float64()
		body["original_price"] = price
	}
	if patch.Stock != nil {
		body["stock"] = *patch.Stock
	}

	if _, _, err := a.request(ctx, http.MethodPost, shopeePathUpdateItem, nil, body, true); err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update product %s on Shopee", id), domain.CodeUpdateProductError)
	}

	product, err := a.GetProductByID(ctx, id)
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to update product %s on Shopee", id), domain.CodeUpdateProductError)
	}
	return product, nil
}

// GetOrders lists orders via the two-phase list-then-detail pattern with the
// full optional-field list.
func (a *ShopeeAdapter) GetOrders(ctx context.Context, query domain.OrderQuery) ([]domain.Order, error) {
	page, err := a.orderPage(ctx, query)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch orders from Shopee", domain.CodeFetchOrdersError)
	}
	return page.Orders, nil
}

// GetOrdersWithPagination returns one page of orders plus the continuation
// cursor reported by the vendor.
func (a *ShopeeAdapter) GetOrdersWithPagination(ctx context.Context, query domain.OrderQuery) (*domain.OrderPage, error) {
	page, err := a.orderPage(ctx, query)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to fetch orders from Shopee", domain.CodeFetchOrdersError)
	}
	return page, nil
}

func (a *ShopeeAdapter) orderPage(ctx context.Context, query domain.OrderQuery) (*domain.OrderPage, error) {
	pageSize := query.Limit
	if pageSize <= 0 {
		pageSize = shopeeOrderPageSize
	}

	timeTo := query.EndDate
	if timeTo.IsZero() {
		timeTo = time.Now()
	}
	timeFrom := query.StartDate
	if timeFrom.IsZero() {
		timeFrom = timeTo.Add(-30 * 24 * time.Hour)
	}

	params := url.Values{}
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("time_range_field", "create_time")
	params.Set("time_from", strconv.FormatInt(timeFrom.Unix(), 10))
	params.Set("time_to", strconv.FormatInt(timeTo.Unix(), 10))
	if query.Status != "" {
		params.Set("order_status", query.Status)
	}
	if query.Cursor != "" {
		params.Set("cursor", query.Cursor)
	}

	env, _, err := a.request(ctx, http.MethodGet, shopeePathOrderList, params, nil, true)
	if err != nil {
		return nil, err
	}

	var list struct {
		OrderList []struct {
			OrderSN string `json:"order_sn"`
		} `json:"order_list"`
		More       bool   `json:"more"`
		NextCursor string `json:"next_cursor"`
	}
	if len(env.Response) > 0 {
		if err := json.Unmarshal(env.Response, &list); err != nil {
			return nil, fmt.Errorf("failed to decode order list: %w", err)
		}
	}

	page := &domain.OrderPage{
		Orders:     []domain.Order{},
		More:       list.More,
		NextCursor: list.NextCursor,
	}

	sns := make([]string, 0, len(list.OrderList))
	for _, order := range list.OrderList {
		sns = append(sns, order.OrderSN)
	}
	if len(sns) == 0 {
		return page, nil
	}

	orders, err := a.fetchOrderDetails(ctx, sns)
	if err != nil {
		return nil, err
	}
	page.Orders = orders
	return page, nil
}

func (a *ShopeeAdapter) fetchOrderDetails(ctx context.Context, sns []string) ([]domain.Order, error) {
	params := url.Values{}
	params.Set("order_sn_list", strings.Join(sns, ","))
	params.Set("response_optional_fields", strings.Join(shopeeOrderOptionalFields, ","))

	env, _, err := a.request(ctx, http.MethodGet, shopeePathOrderDetail, params, nil, true)
	if err != nil {
		return nil, err
	}

	var detail struct {
		OrderList []json.RawMessage `json:"order_list"`
	}
	if len(env.Response) > 0 {
		if err := json.Unmarshal(env.Response, &detail); err != nil {
			return nil, fmt.Errorf("failed to decode order details: %w", err)
		}
	}

	orders := make([]domain.Order, 0, len(detail.OrderList))
	for _, raw := range detail.OrderList {
		var order shopeeOrder
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, mapShopeeOrder(order, raw))
	}
	return orders, nil
}

// GetAllOrders auto-paginates with the vendor's continuation cursor, awaiting
// each page before requesting the next.
func (a *ShopeeAdapter) GetAllOrders(ctx context.Context, query domain.OrderQuery, maxItems int) ([]domain.Order, error) {
	if maxItems <= 0 || maxItems > maxAutoPaginateItems {
		maxItems = maxAutoPaginateItems
	}

	var all []domain.Order
	cursor := query.Cursor
	for {
		pageQuery := query
		pageQuery.Cursor = cursor

		page, err := a.GetOrdersWithPagination(ctx, pageQuery)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Orders...)
		if len(all) >= maxItems {
			return all[:maxItems], nil
		}
		// A missing or repeated cursor cannot advance the loop; treat it as
		// end of results.
		if !page.More || page.NextCursor == "" || page.NextCursor == cursor {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// GetOrderByID fetches one order through the batch detail endpoint.
func (a *ShopeeAdapter) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := a.fetchOrderDetails(ctx, []string{id})
	if err != nil {
		return nil, domain.WrapError(err, fmt.Sprintf("Failed to fetch order %s from Shopee", id), domain.CodeFetchOrderError)
	}
	if len(orders) == 0 {
		return nil, domain.NewConnectorError("Order not found", domain.CodeOrderNotFound, http.StatusNotFound, nil)
	}
	return &orders[0], nil
}

// UpdateOrderStatus always fails: Shopee's API has no direct order-status
// mutation endpoint.
func (a *ShopeeAdapter) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	return nil, domain.NewConnectorError(
		"Shopee does not support direct order status updates via API",
		domain.CodeNotSupported,
		http.StatusNotImplemented,
		nil,
	)
}

// HealthCheck verifies reachability and credentials with a one-item listing.
func (a *ShopeeAdapter) HealthCheck(ctx context.Context) error {
	_, err := a.GetProducts(ctx, domain.ProductQuery{Limit: 1})
	return err
}

// GenerateAuthURL builds the shop authorization link. Auth endpoints use the
// public-level signature: no token exists yet.
func (a *ShopeeAdapter) GenerateAuthURL(redirectURL, _ string) (string, error) {
	timestamp := a.signer.Timestamp()
	sign := a.signer.SignPublic(a.fullAPIPath(shopeePathAuthPartner), timestamp)

	query := url.Values{}
	query.Set("partner_id", a.creds.PartnerID)
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("sign", sign)
	query.Set("redirect", redirectURL)

	return a.baseURL + shopeePathAuthPartner + "?" + query.Encode(), nil
}

// validateShopeeAuthIdentifiers enforces the shop-vs-main-account exclusivity
// rule shared by token exchange and refresh.
func validateShopeeAuthIdentifiers(shopID, mainAccountID string) error {
	if shopID == "" && mainAccountID == "" {
		return domain.NewConnectorError(
			"Either shopId or mainAccountId must be provided",
			domain.CodeInvalidParams,
			http.StatusBadRequest,
			nil,
		)
	}
	if shopID != "" && mainAccountID != "" {
		return domain.NewConnectorError(
			"Cannot provide both shopId and mainAccountId, use only one",
			domain.CodeInvalidParams,
			http.StatusBadRequest,
			nil,
		)
	}
	return nil
}

type shopeeTokenResponse struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	ExpireIn      int64  `json:"expire_in"`
	PartnerID     int64  `json:"partner_id"`
	ShopID        int64  `json:"shop_id"`
	MainAccountID int64  `json:"main_account_id"`
}

func (a *ShopeeAdapter) tokenResult(raw []byte, shopID, mainAccountID string) (*domain.TokenResult, error) {
	var token shopeeTokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	result := &domain.TokenResult{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpireIn:     token.ExpireIn,
		PartnerID:    a.creds.PartnerID,
	}
	if token.PartnerID != 0 {
		result.PartnerID = strconv.FormatInt(token.PartnerID, 10)
	}

	// The response carries exactly the identifier that was supplied.
	if shopID != "" {
		result.ShopID = shopID
		if token.ShopID != 0 {
			result.ShopID = strconv.FormatInt(token.ShopID, 10)
		}
	} else {
		result.MainAccountID = mainAccountID
		if token.MainAccountID != 0 {
			result.MainAccountID = strconv.FormatInt(token.MainAccountID, 10)
		}
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		if camel, ok := keycase.ToCamel(body).(map[string]any); ok {
			result.Raw = camel
		}
	}
	return result, nil
}

// GetAccessToken exchanges an authorization code for tokens. Exactly one of
// shopID / mainAccountID must be provided.
func (a *ShopeeAdapter) GetAccessToken(ctx context.Context, code, shopID, mainAccountID string) (*domain.TokenResult, error) {
	if err := validateShopeeAuthIdentifiers(shopID, mainAccountID); err != nil {
		return nil, err
	}

	body := map[string]any{
		"code":       code,
		"partner_id": numberOrString(a.creds.PartnerID),
	}
	if shopID != "" {
		body["shop_id"] = numberOrString(shopID)
	} else {
		body["main_account_id"] = numberOrString(mainAccountID)
	}

	_, raw, err := a.request(ctx, http.MethodPost, shopeePathTokenGet, nil, body, false)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to get access token", domain.CodeAuthError)
	}

	result, err := a.tokenResult(raw, shopID, mainAccountID)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to get access token", domain.CodeAuthError)
	}
	return result, nil
}

// RefreshAccessToken renews tokens with the same identifier exclusivity rule
// as GetAccessToken.
func (a *ShopeeAdapter) RefreshAccessToken(ctx context.Context, refreshToken, shopID, mainAccountID string) (*domain.TokenResult, error) {
	if err := validateShopeeAuthIdentifiers(shopID, mainAccountID); err != nil {
		return nil, err
	}

	body := map[string]any{
		"refresh_token": refreshToken,
		"partner_id":    numberOrString(a.creds.PartnerID),
	}
	if shopID != "" {
		body["shop_id"] = numberOrString(shopID)
	} else {
		body["main_account_id"] = numberOrString(mainAccountID)
	}

	_, raw, err := a.request(ctx, http.MethodPost, shopeePathTokenRefresh, nil, body, false)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to refresh access token", domain.CodeAuthError)
	}

	result, err := a.tokenResult(raw, shopID, mainAccountID)
	if err != nil {
		return nil, domain.WrapError(err, "Failed to refresh access token", domain.CodeAuthError)
	}
	return result, nil
}
