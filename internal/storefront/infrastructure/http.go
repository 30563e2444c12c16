package infrastructure

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"basketstore/internal/storefront/application"
	"basketstore/internal/storefront/domain"
	"basketstore/pkg/errors"
	"basketstore/pkg/middleware"
	"basketstore/pkg/money"
)

// HTTPHandler handles HTTP requests for the storefront
type HTTPHandler struct {
	customers *application.CustomerUseCase
	products  *application.ProductUseCase
	carts     *application.CartUseCase
	checkout  *application.CheckoutUseCase
	orders    *application.OrderUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(
	customers *application.CustomerUseCase,
	products *application.ProductUseCase,
	carts *application.CartUseCase,
	checkout *application.CheckoutUseCase,
	orders *application.OrderUseCase,
) *HTTPHandler {
	return &HTTPHandler{
		customers: customers,
		products:  products,
		carts:     carts,
		checkout:  checkout,
		orders:    orders,
	}
}

// RegisterRoutes registers the storefront routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/customers", h.RegisterCustomer)

	products := r.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.DELETE("/:id", h.DeactivateProduct)
	}

	carts := r.Group("/carts")
	{
		carts.GET("/:customerId", h.GetCart)
		carts.POST("/items", h.AddItem)
		carts.PUT("/items", h.UpdateItem)
		carts.DELETE("/:customerId/items/:productId", h.RemoveItem)
	}

	r.POST("/checkout", h.Checkout)

	orders := r.Group("/orders")
	{
		orders.GET("/:id", h.GetOrder)
		orders.GET("/number/:number", h.GetOrderByNumber)
		orders.POST("/:id/confirm-payment", h.ConfirmPayment)
		orders.POST("/:id/begin-preparation", h.BeginPreparation)
		orders.POST("/:id/ship", h.Ship)
		orders.POST("/:id/deliver", h.Deliver)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
}

// RegisterCustomerRequest is the request body for registering a customer
type RegisterCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// AddItemRequest is the request body for adding a product to a cart
type AddItemRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	ProductID  string `json:"product_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
}

// UpdateItemRequest is the request body for changing a line's quantity
type UpdateItemRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	ProductID  string `json:"product_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"gte=0"`
}

// AddressRequest is the delivery address part of the checkout body
type AddressRequest struct {
	Street     string `json:"street" binding:"required"`
	Number     string `json:"number" binding:"required"`
	Complement string `json:"complement"`
	District   string `json:"district" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
}

// PaymentRequest is the payment part of the checkout body
type PaymentRequest struct {
	Type         string `json:"type" binding:"required"`
	CardNumber   string `json:"card_number"`
	CardHolder   string `json:"card_holder"`
	CardExpiry   string `json:"card_expiry"`
	SecurityCode string `json:"security_code"`
}

// CheckoutRequest is the request body for converting a cart to an order
type CheckoutRequest struct {
	CustomerID      string         `json:"customer_id" binding:"required"`
	DeliveryAddress AddressRequest `json:"delivery_address" binding:"required"`
	Payment         PaymentRequest `json:"payment" binding:"required"`
}

// CancelOrderRequest is the request body for cancelling an order
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CartItemResponse is one cart line in responses
type CartItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// CartResponse is the response body for cart operations
type CartResponse struct {
	ID         string             `json:"id"`
	CustomerID string             `json:"customer_id"`
	Status     string             `json:"status"`
	Items      []CartItemResponse `json:"items"`
	ItemCount  int                `json:"item_count"`
	Total      float64            `json:"total"`
}

// OrderItemResponse is one order line in responses
type OrderItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// OrderResponse is the response body for order operations
type OrderResponse struct {
	ID              string              `json:"id"`
	Number          string              `json:"number"`
	CustomerID      string              `json:"customer_id"`
	Status          string              `json:"status"`
	Items           []OrderItemResponse `json:"items"`
	Total           float64             `json:"total"`
	DeliveryAddress string              `json:"delivery_address"`
	PaymentType     string              `json:"payment_type"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       string              `json:"created_at"`
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	Name      string  `json:"name" binding:"required"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
	OnHand    int     `json:"on_hand" binding:"gte=0"`
}

// ProductResponse is the response body for product operations
type ProductResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	OnHand    int     `json:"on_hand"`
	Active    bool    `json:"active"`
}

// CreateProduct handles POST /products
func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	price, err := money.FromFloat(req.UnitPrice)
	if err != nil {
		c.Error(errors.NewValidation("unit price must not be negative", nil))
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), application.CreateProductInput{
		Name:      req.Name,
		UnitPrice: price,
		OnHand:    req.OnHand,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toProductResponse(product),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ListProducts handles GET /products
func (h *HTTPHandler) ListProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = toProductResponse(p)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     responses,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// DeactivateProduct handles DELETE /products/:id
func (h *HTTPHandler) DeactivateProduct(c *gin.Context) {
	id, ok := parseUUID(c, c.Param("id"), "product id")
	if !ok {
		return
	}

	product, err := h.products.DeactivateProduct(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toProductResponse(product),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// RegisterCustomer handles POST /customers
func (h *HTTPHandler) RegisterCustomer(c *gin.Context) {
	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	customer, err := h.customers.RegisterCustomer(c.Request.Context(), application.RegisterCustomerInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"id":    customer.ID.String(),
			"name":  customer.Name,
			"email": customer.Email,
		},
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetCart handles GET /carts/:customerId
func (h *HTTPHandler) GetCart(c *gin.Context) {
	customerID, ok := parseUUID(c, c.Param("customerId"), "customer id")
	if !ok {
		return
	}

	cart, err := h.carts.GetOrCreateCart(c.Request.Context(), customerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toCartResponse(cart),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// AddItem handles POST /carts/items
func (h *HTTPHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	customerID, ok := parseUUID(c, req.CustomerID, "customer id")
	if !ok {
		return
	}
	productID, ok := parseUUID(c, req.ProductID, "product id")
	if !ok {
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), application.AddItemInput{
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toCartResponse(cart),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// UpdateItem handles PUT /carts/items
func (h *HTTPHandler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	customerID, ok := parseUUID(c, req.CustomerID, "customer id")
	if !ok {
		return
	}
	productID, ok := parseUUID(c, req.ProductID, "product id")
	if !ok {
		return
	}

	cart, err := h.carts.UpdateItem(c.Request.Context(), application.UpdateItemInput{
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toCartResponse(cart),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// RemoveItem handles DELETE /carts/:customerId/items/:productId
func (h *HTTPHandler) RemoveItem(c *gin.Context) {
	customerID, ok := parseUUID(c, c.Param("customerId"), "customer id")
	if !ok {
		return
	}
	productID, ok := parseUUID(c, c.Param("productId"), "product id")
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), customerID, productID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toCartResponse(cart),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// Checkout handles POST /checkout
func (h *HTTPHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	customerID, ok := parseUUID(c, req.CustomerID, "customer id")
	if !ok {
		return
	}

	address, err := domain.NewAddress(
		req.DeliveryAddress.Street,
		req.DeliveryAddress.Number,
		req.DeliveryAddress.Complement,
		req.DeliveryAddress.District,
		req.DeliveryAddress.City,
		req.DeliveryAddress.State,
		req.DeliveryAddress.PostalCode,
	)
	if err != nil {
		c.Error(err)
		return
	}

	payment, err := buildPayment(req.Payment)
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.checkout.Checkout(c.Request.Context(), application.CheckoutInput{
		CustomerID: customerID,
		Address:    address,
		Payment:    payment,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toOrderResponse(output.Order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetOrder handles GET /orders/:id
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, ok := parseUUID(c, c.Param("id"), "order id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetOrderByNumber handles GET /orders/number/:number
func (h *HTTPHandler) GetOrderByNumber(c *gin.Context) {
	order, err := h.orders.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// ConfirmPayment handles POST /orders/:id/confirm-payment
func (h *HTTPHandler) ConfirmPayment(c *gin.Context) {
	h.transition(c, h.orders.ConfirmPayment)
}

// BeginPreparation handles POST /orders/:id/begin-preparation
func (h *HTTPHandler) BeginPreparation(c *gin.Context) {
	h.transition(c, h.orders.BeginPreparation)
}

// Ship handles POST /orders/:id/ship
func (h *HTTPHandler) Ship(c *gin.Context) {
	h.transition(c, h.orders.Ship)
}

// Deliver handles POST /orders/:id/deliver
func (h *HTTPHandler) Deliver(c *gin.Context) {
	h.transition(c, h.orders.Deliver)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	id, ok := parseUUID(c, c.Param("id"), "order id")
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

func (h *HTTPHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*domain.Order, error)) {
	id, ok := parseUUID(c, c.Param("id"), "order id")
	if !ok {
		return
	}

	order, err := apply(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toOrderResponse(order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

func parseUUID(c *gin.Context, raw, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.Error(errors.NewValidation("invalid "+name, nil))
		return uuid.Nil, false
	}
	return id, true
}

func buildPayment(req PaymentRequest) (domain.Payment, error) {
	switch domain.PaymentType(req.Type) {
	case domain.PaymentTypeCard:
		return domain.NewCardPayment(req.CardNumber, req.CardHolder, req.CardExpiry, req.SecurityCode)
	case domain.PaymentTypePix:
		return domain.NewPixPayment(), nil
	case domain.PaymentTypeBoleto:
		return domain.NewBoletoPayment(), nil
	default:
		return domain.Payment{}, errors.NewValidation("payment type must be CARD, PIX or BOLETO", map[string]interface{}{
			"type": req.Type,
		})
	}
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		UnitPrice: p.UnitPrice.Float64(),
		OnHand:    p.OnHand,
		Active:    p.Active,
	}
}

func toCartResponse(cart *domain.Cart) CartResponse {
	items := make([]CartItemResponse, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Float64(),
			Subtotal:    item.Subtotal().Float64(),
		}
	}
	return CartResponse{
		ID:         cart.ID.String(),
		CustomerID: cart.CustomerID.String(),
		Status:     string(cart.Status),
		Items:      items,
		ItemCount:  cart.ItemCount(),
		Total:      cart.Total().Float64(),
	}
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Float64(),
			Subtotal:    item.Subtotal.Float64(),
		}
	}
	return OrderResponse{
		ID:              order.ID.String(),
		Number:          order.Number,
		CustomerID:      order.CustomerID.String(),
		Status:          string(order.Status),
		Items:           items,
		Total:           order.Total.Float64(),
		DeliveryAddress: order.DeliveryAddress.Formatted(),
		PaymentType:     string(order.Payment.Type),
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
