package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"basketstore/internal/storefront/domain"
	"basketstore/internal/storefront/ports"
	"basketstore/pkg/logger"
)

// OrderUseCase handles order queries and status transitions after
// checkout. Transition rules live in the domain; this layer loads,
// applies and persists.
type OrderUseCase struct {
	orders ports.OrderRepository
	ledger ports.StockLedger
	log    *logger.Logger
}

// NewOrderUseCase creates a new order use case
func NewOrderUseCase(orders ports.OrderRepository, ledger ports.StockLedger, log *logger.Logger) *OrderUseCase {
	return &OrderUseCase{
		orders: orders,
		ledger: ledger,
		log:    log,
	}
}

// GetOrder retrieves an order by ID
func (uc *OrderUseCase) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.orders.GetByID(ctx, id)
}

// GetOrderByNumber retrieves an order by its human-readable number
func (uc *OrderUseCase) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return uc.orders.GetByNumber(ctx, number)
}

// ListOrders retrieves a customer's orders, newest first
func (uc *OrderUseCase) ListOrders(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	return uc.orders.ListByCustomer(ctx, customerID)
}

// ConfirmPayment advances the order to PAGAMENTO_CONFIRMADO
func (uc *OrderUseCase) ConfirmPayment(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.transition(ctx, id, "payment confirmed", (*domain.Order).ConfirmPayment)
}

// BeginPreparation advances the order to EM_PREPARACAO
func (uc *OrderUseCase) BeginPreparation(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.transition(ctx, id, "preparation started", (*domain.Order).BeginPreparation)
}

// Ship advances the order to ENVIADO
func (uc *OrderUseCase) Ship(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.transition(ctx, id, "order shipped", (*domain.Order).Ship)
}

// Deliver advances the order to ENTREGUE
func (uc *OrderUseCase) Deliver(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.transition(ctx, id, "order delivered", (*domain.Order).Deliver)
}

// CancelOrder cancels a pre-shipment order and returns its stock
// reservations to the pool.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (*domain.Order, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(reason); err != nil {
		return nil, err
	}
	if err := uc.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	for i := range order.Items {
		uc.ledger.Release(order.Items[i].ProductID, order.Items[i].Quantity)
	}

	uc.log.WithContext(ctx).Info("order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.Number),
		zap.String("reason", reason),
	)

	return order, nil
}

func (uc *OrderUseCase) transition(ctx context.Context, id uuid.UUID, logMsg string, apply func(*domain.Order) error) (*domain.Order, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(order); err != nil {
		return nil, err
	}
	if err := uc.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info(logMsg,
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.Number),
		zap.String("status", string(order.Status)),
	)

	return order, nil
}
