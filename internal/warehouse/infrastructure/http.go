package infrastructure

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"basketstore/internal/warehouse/application"
	"basketstore/pkg/errors"
	"basketstore/pkg/middleware"
	"basketstore/pkg/money"
)

// HTTPHandler handles HTTP requests for the warehouse
type HTTPHandler struct {
	useCase *application.WarehouseUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.WarehouseUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the warehouse routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/deliveries", h.ReceiveDelivery)

	baskets := r.Group("/baskets")
	{
		baskets.POST("/sell", h.SellBaskets)
		baskets.POST("/dispose-expired", h.DisposeExpired)
	}

	r.GET("/stock", h.GetStock)
	r.GET("/cash-register", h.GetCashRegister)
}

// ReceiveDeliveryRequest is the request body for receiving a delivery
type ReceiveDeliveryRequest struct {
	TotalQuantity  int     `json:"total_quantity" binding:"required,gt=0"`
	ValidationDate string  `json:"validation_date" binding:"required"`
	TotalCost      float64 `json:"total_cost" binding:"required,gt=0"`
	MarginPct      float64 `json:"margin_pct" binding:"gte=0"`
}

// SellBasketsRequest is the request body for selling baskets
type SellBasketsRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// ReceiveDelivery handles POST /deliveries
func (h *HTTPHandler) ReceiveDelivery(c *gin.Context) {
	var req ReceiveDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	validationDate, err := time.ParseInLocation("2006-01-02", req.ValidationDate, time.Local)
	if err != nil {
		c.Error(errors.NewValidation("validation_date must be YYYY-MM-DD", nil))
		return
	}

	totalCost, err := money.FromFloat(req.TotalCost)
	if err != nil {
		c.Error(errors.NewValidation("total cost must not be negative", nil))
		return
	}

	box, err := h.useCase.ReceiveDelivery(c.Request.Context(), application.ReceiveDeliveryInput{
		TotalQuantity:  req.TotalQuantity,
		ValidationDate: validationDate,
		TotalCost:      totalCost,
		MarginPct:      req.MarginPct,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"id":              box.ID.String(),
			"total_quantity":  box.TotalQuantity,
			"validation_date": box.ValidationDate.Format("2006-01-02"),
			"total_cost":      box.TotalCost.Float64(),
			"unit_cost":       box.UnitCost.Float64(),
			"selling_price":   box.SellingPrice.Float64(),
		},
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// SellBaskets handles POST /baskets/sell
func (h *HTTPHandler) SellBaskets(c *gin.Context) {
	var req SellBasketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	result, err := h.useCase.SellBaskets(c.Request.Context(), req.Quantity)
	if err != nil {
		c.Error(err)
		return
	}

	basketIDs := make([]string, len(result.BasketIDs))
	for i, id := range result.BasketIDs {
		basketIDs[i] = id.String()
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"transaction_id": result.TransactionID.String(),
			"quantity":       result.Quantity,
			"total_value":    result.TotalValue.Float64(),
			"basket_ids":     basketIDs,
		},
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// DisposeExpired handles POST /baskets/dispose-expired
func (h *HTTPHandler) DisposeExpired(c *gin.Context) {
	result, err := h.useCase.DisposeExpiredBaskets(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"quantity":   result.Quantity,
			"total_loss": result.TotalLoss.Float64(),
		},
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetStock handles GET /stock
func (h *HTTPHandler) GetStock(c *gin.Context) {
	info, err := h.useCase.GetStockInfo(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"total":           info.Total,
			"available":       info.Available,
			"sold":            info.Sold,
			"disposed":        info.Disposed,
			"expired":         info.Expired,
			"available_value": info.AvailableValue.Float64(),
		},
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetCashRegister handles GET /cash-register
func (h *HTTPHandler) GetCashRegister(c *gin.Context) {
	report, err := h.useCase.GetCashRegister(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"baskets_sold": report.BasketsSold,
			"revenue":      report.Revenue.Float64(),
			"cost":         report.Cost.Float64(),
			"gross_profit": report.GrossProfit,
			"margin_pct":   report.MarginPct,
		},
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}
