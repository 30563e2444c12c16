package events

import "time"

// Exchange names
const (
	ExchangeStorefront = "storefront.events"
	ExchangeWarehouse  = "warehouse.events"
)

// Routing keys
const (
	RoutingKeyCustomerRegistered = "storefront.customer.registered"
	RoutingKeyCartFinalized      = "storefront.cart.finalized"
	RoutingKeyOrderCreated       = "storefront.order.created"
	RoutingKeyDeliveryReceived   = "warehouse.delivery.received"
	RoutingKeyBasketsSold        = "warehouse.baskets.sold"
	RoutingKeyBasketsDisposed    = "warehouse.baskets.disposed"
)

// Queue names
const (
	QueueOrders          = "storefront.orders"
	QueueDelivery        = "warehouse.delivery"
	QueueBasketsSold     = "warehouse.baskets.sold"
	QueueBasketsDisposed = "warehouse.baskets.disposed"
)

// Event is the envelope every published fact is wrapped in.
type Event struct {
	Version   string      `json:"version"`
	EventType string      `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id"`
	Payload   interface{} `json:"payload"`
}

// NewEvent wraps a fact payload in the standard envelope.
func NewEvent(eventType, traceID string, payload interface{}) *Event {
	return &Event{
		Version:   "1.0",
		EventType: eventType,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// CustomerRegistered is published when a customer account is created.
type CustomerRegistered struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// CartFinalized is published when a cart transitions to FINALIZED
// during checkout. Always published before OrderCreated for the same
// cart/order pair.
type CartFinalized struct {
	CartID     string `json:"cart_id"`
	CustomerID string `json:"customer_id"`
	ItemCount  int    `json:"item_count"`
}

// OrderCreated is published after the order built from a finalized cart
// has been persisted.
type OrderCreated struct {
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

// DeliveryReceived is published when a delivery box and its baskets
// have been persisted.
type DeliveryReceived struct {
	DeliveryBoxID string `json:"delivery_box_id"`
	TotalQuantity int    `json:"total_quantity"`
}

// BasketsSold is published after a sale is committed.
type BasketsSold struct {
	Quantity      int     `json:"quantity"`
	TotalValue    float64 `json:"total_value"`
	TransactionID string  `json:"transaction_id"`
}

// BasketsDisposed is published after expired baskets are written off.
type BasketsDisposed struct {
	Quantity   int     `json:"quantity"`
	LossAmount float64 `json:"loss_amount"`
}
