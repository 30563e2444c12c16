package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"basketstore/pkg/money"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusAwaitingPayment  OrderStatus = "AGUARDANDO_PAGAMENTO"
	OrderStatusPaymentConfirmed OrderStatus = "PAGAMENTO_CONFIRMADO"
	OrderStatusInPreparation    OrderStatus = "EM_PREPARACAO"
	OrderStatusShipped          OrderStatus = "ENVIADO"
	OrderStatusDelivered        OrderStatus = "ENTREGUE"
	OrderStatusCancelled        OrderStatus = "CANCELADO"
)

// OrderItem is a historical snapshot of a cart line. Name and price are
// frozen at order creation; later catalog changes never reach it.
type OrderItem struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   money.Money
	Subtotal    money.Money
}

// Order is the order aggregate root. The item list is immutable after
// creation; the total is always recomputed from the item subtotals.
type Order struct {
	ID              uuid.UUID
	Number          string
	CustomerID      uuid.UUID
	Items           []OrderItem
	DeliveryAddress Address
	Payment         Payment
	Total           money.Money
	Status          OrderStatus
	Notes           string

	CreatedAt            time.Time
	UpdatedAt            time.Time
	PaymentConfirmedAt   *time.Time
	PreparationStartedAt *time.Time
	ShippedAt            *time.Time
	DeliveredAt          *time.Time
	CancelledAt          *time.Time
}

// NewOrderFromCart builds an order snapshot from a cart's current
// lines. The cart itself is untouched; the coordinator finalizes it
// separately.
func NewOrderFromCart(cart *Cart, address Address, payment Payment) (*Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrCartEmpty
	}

	items := make([]OrderItem, 0, len(cart.Items))
	for i := range cart.Items {
		line := &cart.Items[i]
		items = append(items, OrderItem{
			ID:          uuid.New(),
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal(),
		})
	}

	now := time.Now()
	order := &Order{
		ID:              uuid.New(),
		Number:          GenerateOrderNumber(),
		CustomerID:      cart.CustomerID,
		Items:           items,
		DeliveryAddress: address,
		Payment:         payment,
		Status:          OrderStatusAwaitingPayment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.Total = order.ComputeTotal()

	return order, nil
}

// ComputeTotal sums the item subtotals. Total is never edited
// independently of the items.
func (o *Order) ComputeTotal() money.Money {
	total := money.Zero()
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal)
	}
	return total
}

// ItemCount is the sum of item quantities.
func (o *Order) ItemCount() int {
	count := 0
	for i := range o.Items {
		count += o.Items[i].Quantity
	}
	return count
}

// ConfirmPayment transitions AGUARDANDO_PAGAMENTO -> PAGAMENTO_CONFIRMADO.
func (o *Order) ConfirmPayment() error {
	if o.Status != OrderStatusAwaitingPayment {
		return o.invalidTransition("confirm payment", OrderStatusAwaitingPayment)
	}
	now := time.Now()
	o.Status = OrderStatusPaymentConfirmed
	o.PaymentConfirmedAt = &now
	o.UpdatedAt = now
	return nil
}

// BeginPreparation transitions PAGAMENTO_CONFIRMADO -> EM_PREPARACAO.
func (o *Order) BeginPreparation() error {
	if o.Status != OrderStatusPaymentConfirmed {
		return o.invalidTransition("begin preparation", OrderStatusPaymentConfirmed)
	}
	now := time.Now()
	o.Status = OrderStatusInPreparation
	o.PreparationStartedAt = &now
	o.UpdatedAt = now
	return nil
}

// Ship transitions EM_PREPARACAO -> ENVIADO.
func (o *Order) Ship() error {
	if o.Status != OrderStatusInPreparation {
		return o.invalidTransition("ship", OrderStatusInPreparation)
	}
	now := time.Now()
	o.Status = OrderStatusShipped
	o.ShippedAt = &now
	o.UpdatedAt = now
	return nil
}

// Deliver transitions ENVIADO -> ENTREGUE.
func (o *Order) Deliver() error {
	if o.Status != OrderStatusShipped {
		return o.invalidTransition("deliver", OrderStatusShipped)
	}
	now := time.Now()
	o.Status = OrderStatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now
	return nil
}

// Cancel transitions any pre-shipment status to CANCELADO. The reason
// is appended to the free-text notes.
func (o *Order) Cancel(reason string) error {
	if !o.CanCancel() {
		return NewOrderInvalidState(o.ID, string(o.Status),
			fmt.Sprintf("order in status %s cannot be cancelled", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now

	if reason != "" {
		if o.Notes != "" {
			o.Notes += "\n"
		}
		o.Notes += "Cancelado: " + reason
	}
	return nil
}

// CanCancel reports whether the order is still cancellable.
func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusAwaitingPayment, OrderStatusPaymentConfirmed, OrderStatusInPreparation:
		return true
	default:
		return false
	}
}

// RegenerateNumber assigns a fresh order number. Used once when the
// repository reports a number collision.
func (o *Order) RegenerateNumber() {
	o.Number = GenerateOrderNumber()
}

func (o *Order) invalidTransition(action string, expected OrderStatus) error {
	return NewOrderInvalidState(o.ID, string(o.Status),
		fmt.Sprintf("cannot %s: order is %s, expected %s", action, o.Status, expected))
}

// GenerateOrderNumber builds a human-readable number in the form
// PED-YYYYMMDD-XXXXX. The suffix comes from crypto/rand; uniqueness is
// still enforced by the store, with a single regenerate-and-retry on
// collision.
func GenerateOrderNumber() string {
	now := time.Now()
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("PED-%04d%02d%02d-%05d", now.Year(), now.Month(), now.Day(), suffix)
}
