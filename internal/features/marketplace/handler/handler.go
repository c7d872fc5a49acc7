package handler

import (
	"errors"
	"time"

	"ecom-connector/internal/features/marketplace/domain"
	"ecom-connector/internal/features/marketplace/service"

	"github.com/gofiber/fiber/v2"
)

// MarketplaceHandler handles HTTP requests for marketplace operations.
type MarketplaceHandler struct {
	marketplaceService *service.MarketplaceService
}

// NewMarketplaceHandler creates a new MarketplaceHandler.
func NewMarketplaceHandler(marketplaceService *service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{
		marketplaceService: marketplaceService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// Code is the connector error code.
	Code string `json:"code,omitempty"`
	// PlatformError is the raw vendor error payload when one exists.
	PlatformError any `json:"platform_error,omitempty"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// RegisterRoutes mounts the marketplace routes on the given router.
func (h *MarketplaceHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/platforms", h.ListPlatforms)
	router.Get("/health", h.Health)

	platform := router.Group("/platforms/:platform")
	platform.Get("/products", h.GetProducts)
	platform.Post("/products", h.CreateProduct)
	platform.Get("/products/all", h.GetAllProducts)
	platform.Get("/products/page", h.GetProductsWithPagination)
	platform.Get("/products/:id", h.GetProductByID)
	platform.Patch("/products/:id", h.UpdateProduct)
	platform.Get("/orders", h.GetOrders)
	platform.Get("/orders/all", h.GetAllOrders)
	platform.Get("/orders/page", h.GetOrdersWithPagination)
	platform.Get("/orders/:id", h.GetOrderByID)
	platform.Post("/orders/:id/status", h.UpdateOrderStatus)
	platform.Get("/auth/url", h.GenerateAuthURL)
	platform.Post("/auth/token", h.GetAccessToken)
	platform.Post("/auth/refresh", h.RefreshAccessToken)
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// fail maps a connector error onto its HTTP-equivalent status; anything else
// is a 500.
func fail(c *fiber.Ctx, err error) error {
	var ce *domain.ConnectorError
	if errors.As(err, &ce) {
		status := ce.StatusCode
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(ErrorResponse{
			Message:       ce.Message,
			Code:          ce.Code,
			PlatformError: ce.PlatformError,
			RayID:         rayID(c),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message: err.Error(),
		RayID:   rayID(c),
	})
}

// ListPlatforms godoc
// @Summary List configured platforms
// @Description Returns the marketplace platforms this deployment is configured for
// @Tags platforms
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /platforms [get]
func (h *MarketplaceHandler) ListPlatforms(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"platforms": h.marketplaceService.Platforms()})
}

// Health godoc
// @Summary Per-platform health probe
// @Description Probes every configured platform with a minimal vendor call
// @Tags platforms
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *MarketplaceHandler) Health(c *fiber.Ctx) error {
	results := h.marketplaceService.HealthCheck(c.UserContext())

	status := fiber.StatusOK
	body := make(map[string]string, len(results))
	for name, err := range results {
		if err != nil {
			body[name] = err.Error()
			status = fiber.StatusServiceUnavailable
		} else {
			body[name] = "ok"
		}
	}
	return c.Status(status).JSON(body)
}

func productQuery(c *fiber.Ctx) domain.ProductQuery {
	return domain.ProductQuery{
		Limit:      c.QueryInt("limit"),
		Offset:     c.QueryInt("offset"),
		Page:       c.QueryInt("page"),
		Status:     c.Query("status"),
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
	}
}

func orderQuery(c *fiber.Ctx) domain.OrderQuery {
	query := domain.OrderQuery{
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
		Page:   c.QueryInt("page"),
		Status: c.Query("status"),
		Cursor: c.Query("cursor"),
	}
	if raw := c.Query("start_date"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			query.StartDate = parsed
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			query.EndDate = parsed
		}
	}
	return query
}

// GetProducts godoc
// @Summary List products on a platform
// @Tags products
// @Produce json
// @Param platform path string true "Platform name (shopee, tiktok-shop, lazada, zalo-oa)"
// @Param limit query int false "Page size"
// @Param offset query int false "Item offset"
// @Param status query string false "Vendor-specific status filter"
// @Success 200 {array} domain.Product
// @Failure 400 {object} ErrorResponse
// @Router /platforms/{platform}/products [get]
func (h *MarketplaceHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.marketplaceService.GetProducts(c.UserContext(), c.Params("platform"), productQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

// GetProductByID godoc
// @Summary Fetch one product
// @Tags products
// @Produce json
// @Param platform path string true "Platform name"
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} ErrorResponse
// @Router /platforms/{platform}/products/{id} [get]
func (h *MarketplaceHandler) GetProductByID(c *fiber.Ctx) error {
	product, err := h.marketplaceService.GetProductByID(c.UserContext(), c.Params("platform"), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// CreateProduct godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param platform path string true "Platform name"
// @Param product body domain.ProductInput true "Product payload"
// @Success 201 {object} domain.Product
// @Failure 400 {object} ErrorResponse
// @Router /platforms/{platform}/products [post]
func (h *MarketplaceHandler) CreateProduct(c *fiber.Ctx) error {
	var input domain.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid product payload",
			Code:    domain.CodeInvalidParams,
			RayID:   rayID(c),
		})
	}

	product, err := h.marketplaceService.CreateProduct(c.UserContext(), c.Params("platform"), input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct godoc
// @Summary Partially update a product
// @Tags products
// @Accept json
// @Produce json
// @Param platform path string true "Platform name"
// @Param id path string true "Product ID"
// @Param patch body domain.ProductPatch true "Fields to update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} ErrorResponse
// @Router /platforms/{platform}/products/{id} [patch]
func (h *MarketplaceHandler) UpdateProduct(c *fiber.Ctx) error {
	var patch domain.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid patch payload",
			Code:    domain.CodeInvalidParams,
			RayID:   rayID(c),
		})
	}

	product, err := h.marketplaceService.UpdateProduct(c.UserContext(), c.Params("platform"), c.Params("id"), patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// GetAllProducts godoc
// @Summary Fetch every product (auto-paginated)
// @Tags products
// @Produce json
// @Param platform path string true "Platform name"
// @Param status query string false "Vendor-specific status filter"
// @Param max_items query int false "Hard cap on fetched items"
// @Success 200 {array} domain.Product
// @Failure 501 {object} ErrorResponse
// @Router /platforms/{platform}/products/all [get]
func (h *MarketplaceHandler) GetAllProducts(c *fiber.Ctx) error {
	products, err := h.marketplaceService.GetAllProducts(
		c.UserContext(), c.Params("platform"), c.Query("status"), c.QueryInt("max_items"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

// GetProductsWithPagination godoc
// @Summary List one page of products with pagination metadata
// @Tags products
// @Produce json
// @Param platform path string true "Platform name"
// @Success 200 {object} domain.ProductPage
// @Failure 501 {object} ErrorResponse
// @Router /platforms/{platform}/products/page [get]
func (h *MarketplaceHandler) GetProductsWithPagination(c *fiber.Ctx) error {
	page, err := h.marketplaceService.GetProductsWithPagination(c.UserContext(), c.Params("platform"), productQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

// GetOrders godoc
// @Summary List orders on a platform
// @Tags orders
// @Produce json
// @Param platform path string true "Platform name"
// @Param start_date query string false "RFC3339 lower bound (default: 30 days ago)"
// @Param end_date query string false "RFC3339 upper bound (default: now)"
// @Success 200 {array} domain.Order
// @Failure 400 {object} ErrorResponse
// @Router /platforms/{platform}/orders [get]
func (h *MarketplaceHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.marketplaceService.GetOrders(c.UserContext(), c.Params("platform"), orderQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// GetAllOrders godoc
// @Summary Fetch every order in a window (auto-paginated)
// @Tags orders
// @Produce json
// @Param platform path string true "Platform name"
// @Param start_date query string false "RFC3339 lower bound (default: 30 days ago)"
// @Param end_date query string false "RFC3339 upper bound (default: now)"
// @Param max_items query int false "Hard cap on fetched items"
// @Success 200 {array} domain.Order
// @Failure 501 {object} ErrorResponse
// @Router /platforms/{platform}/orders/all [get]
func (h *MarketplaceHandler) GetAllOrders(c *fiber.Ctx) error {
	orders, err := h.marketplaceService.GetAllOrders(
		c.UserContext(), c.Params("platform"), orderQuery(c), c.QueryInt("max_items"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// GetOrdersWithPagination godoc
// @Summary List one page of orders with the continuation cursor
// @Tags orders
// @Produce json
// @Param platform path string true "Platform name"
// @Param cursor query string false "Continuation cursor"
// @Success 200 {object} domain.OrderPage
// @Failure 501 {object} ErrorResponse
// @Router /platforms/{platform}/orders/page [get]
func (h *MarketplaceHandler) GetOrdersWithPagination(c *fiber.Ctx) error {
	page, err := h.marketplaceService.GetOrdersWithPagination(c.UserContext(), c.Params("platform"), orderQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

// GetOrderByID godoc
// @Summary Fetch one order
// @Tags orders
// @Produce json
// @Param platform path string true "Platform name"
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Router /platforms/{platform}/orders/{id} [get]
func (h *MarketplaceHandler) GetOrderByID(c *fiber.Ctx) error {
	order, err := h.marketplaceService.GetOrderByID(c.UserContext(), c.Params("platform"), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// UpdateOrderStatusRequest is the payload for order status updates.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus godoc
// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Param platform path string true "Platform name"
// @Param id path string true "Order ID"
// @Param status body UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} domain.Order
// @Failure 501 {object} ErrorResponse
// @Router /platforms/{platform}/orders/{id}/status [post]
func (h *MarketplaceHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "status is required",
			Code:    domain.CodeInvalidParams,
			RayID:   rayID(c),
		})
	}

	order, err := h.marketplaceService.UpdateOrderStatus(c.UserContext(), c.Params("platform"), c.Params("id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// GenerateAuthURL godoc
// @Summary Build the vendor authorization link
// @Tags auth
// @Produce json
// @Param platform path string true "Platform name"
// @Param redirect_url query string true "Callback URL"
// @Param state query string false "Opaque state / uuid"
// @Success 200 {object} map[string]string
// @Failure 501 {object} ErrorResponse
// @Router /platforms/{platform}/auth/url [get]
func (h *MarketplaceHandler) GenerateAuthURL(c *fiber.Ctx) error {
	authURL, err := h.marketplaceService.GenerateAuthURL(c.Params("platform"), c.Query("redirect_url"), c.Query("state"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"auth_url": authURL})
}

// TokenRequest is the payload for token exchange and refresh.
type TokenRequest struct {
	Code          string `json:"code,omitempty"`
	RefreshToken  string `json:"refresh_token,omitempty"`
	ShopID        string `json:"shop_id,omitempty"`
	MainAccountID string `json:"main_account_id,omitempty"`
}

// GetAccessToken godoc
// @Summary Exchange an authorization code for tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param platform path string true "Platform name"
// @Param request body TokenRequest true "Exchange parameters"
// @Success 200 {object} domain.TokenResult
// @Failure 400 {object} ErrorResponse
// @Router /platforms/{platform}/auth/token [post]
func (h *MarketplaceHandler) GetAccessToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid token request",
			Code:    domain.CodeInvalidParams,
			RayID:   rayID(c),
		})
	}

	result, err := h.marketplaceService.GetAccessToken(
		c.UserContext(), c.Params("platform"), req.Code, req.ShopID, req.MainAccountID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// RefreshAccessToken godoc
// @Summary Refresh an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param platform path string true "Platform name"
// @Param request body TokenRequest true "Refresh parameters"
// @Success 200 {object} domain.TokenResult
// @Failure 400 {object} ErrorResponse
// @Router /platforms/{platform}/auth/refresh [post]
func (h *MarketplaceHandler) RefreshAccessToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid token request",
			Code:    domain.CodeInvalidParams,
			RayID:   rayID(c),
		})
	}

	result, err := h.marketplaceService.RefreshAccessToken(
		c.UserContext(), c.Params("platform"), req.RefreshToken, req.ShopID, req.MainAccountID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}
