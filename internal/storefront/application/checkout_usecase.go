package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"basketstore/internal/storefront/domain"
	"basketstore/internal/storefront/ports"
	"basketstore/pkg/errors"
	"basketstore/pkg/events"
	"basketstore/pkg/logger"
)

// CheckoutUseCase coordinates the cart-to-order conversion: stock
// reservation, cart finalization, order persistence and event emission.
type CheckoutUseCase struct {
	carts     ports.CartRepository
	orders    ports.OrderRepository
	products  ports.ProductRepository
	customers ports.CustomerRepository
	ledger    ports.StockLedger
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewCheckoutUseCase creates a new checkout coordinator
func NewCheckoutUseCase(
	carts ports.CartRepository,
	orders ports.OrderRepository,
	products ports.ProductRepository,
	customers ports.CustomerRepository,
	ledger ports.StockLedger,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		carts:     carts,
		orders:    orders,
		products:  products,
		customers: customers,
		ledger:    ledger,
		publisher: publisher,
		log:       log,
	}
}

// CheckoutInput represents the input for converting a cart to an order
type CheckoutInput struct {
	CustomerID uuid.UUID
	Address    domain.Address
	Payment    domain.Payment
}

// CheckoutOutput represents the result of a successful checkout
type CheckoutOutput struct {
	Order *domain.Order
}

// Checkout converts the customer's active cart into an order. Either
// every line is reserved and the order exists, or nothing is reserved
// and the cart stays active. CartFinalized is always published before
// OrderCreated.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutOutput, error) {
	customer, err := uc.customers.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	cart, err := uc.carts.FindActiveByCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrCartEmpty
	}

	// Re-validate every line against the live catalog before touching
	// any state.
	catalog := make(map[uuid.UUID]*domain.Product, len(cart.Items))
	for i := range cart.Items {
		line := &cart.Items[i]
		product, err := uc.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Available() {
			return nil, domain.NewProductUnavailable(product.Name)
		}
		catalog[line.ProductID] = product
	}

	order, err := domain.NewOrderFromCart(cart, input.Address, input.Payment)
	if err != nil {
		return nil, err
	}

	// Reserve every line, releasing what was taken if any line falls
	// short. Stock is all-or-nothing; the cart stays active until the
	// order exists.
	reserved := make([]domain.CartItem, 0, len(cart.Items))
	for i := range cart.Items {
		line := cart.Items[i]
		product := catalog[line.ProductID]
		if err := uc.ledger.Reserve(line.ProductID, product.Name, product.OnHand, line.Quantity); err != nil {
			uc.releaseAll(reserved)
			return nil, err
		}
		reserved = append(reserved, line)
	}

	if err := uc.createWithNumberRetry(ctx, order); err != nil {
		uc.releaseAll(reserved)
		return nil, err
	}

	if err := cart.Finalize(); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, cart); err != nil {
		// The order row exists and holds the reservations; the stale
		// active cart needs operator attention, not a rollback.
		uc.log.WithContext(ctx).Error("order persisted but cart finalization failed",
			zap.Error(err),
			zap.String("cart_id", cart.ID.String()),
			zap.String("order_id", order.ID.String()),
		)
		return nil, errors.NewInternal("failed to finalize cart", err)
	}

	uc.publisher.PublishAll(ctx,
		events.CartFinalized{
			CartID:     cart.ID.String(),
			CustomerID: cart.CustomerID.String(),
			ItemCount:  cart.ItemCount(),
		},
		events.OrderCreated{
			OrderID:       order.ID.String(),
			OrderNumber:   order.Number,
			CustomerID:    customer.ID.String(),
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
		},
	)

	uc.log.WithContext(ctx).Info("checkout completed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.Number),
		zap.String("customer_id", customer.ID.String()),
		zap.String("total", order.Total.String()),
	)

	return &CheckoutOutput{Order: order}, nil
}

// createWithNumberRetry persists the order, regenerating the number
// once if the first one collides. A second collision is surfaced as-is.
func (uc *CheckoutUseCase) createWithNumberRetry(ctx context.Context, order *domain.Order) error {
	err := uc.orders.Create(ctx, order)
	if err == nil || !errors.Is(err, errors.CodeConflict) {
		return err
	}

	uc.log.WithContext(ctx).Warn("order number collision, regenerating",
		zap.String("order_number", order.Number),
	)
	order.RegenerateNumber()
	return uc.orders.Create(ctx, order)
}

func (uc *CheckoutUseCase) releaseAll(reserved []domain.CartItem) {
	for i := range reserved {
		uc.ledger.Release(reserved[i].ProductID, reserved[i].Quantity)
	}
}
