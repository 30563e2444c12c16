package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"basketstore/internal/storefront/domain"
	"basketstore/internal/storefront/ports"
	"basketstore/pkg/errors"
	"basketstore/pkg/logger"
)

// CartUseCase handles cart lifecycle and mutations
type CartUseCase struct {
	carts     ports.CartRepository
	products  ports.ProductRepository
	customers ports.CustomerRepository
	ledger    ports.StockLedger
	log       *logger.Logger
}

// NewCartUseCase creates a new cart use case
func NewCartUseCase(
	carts ports.CartRepository,
	products ports.ProductRepository,
	customers ports.CustomerRepository,
	ledger ports.StockLedger,
	log *logger.Logger,
) *CartUseCase {
	return &CartUseCase{
		carts:     carts,
		products:  products,
		customers: customers,
		ledger:    ledger,
		log:       log,
	}
}

// GetOrCreateCart returns the customer's ACTIVE cart, creating an empty
// one if none exists. A customer never has more than one active cart.
func (uc *CartUseCase) GetOrCreateCart(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	cart, err := uc.carts.FindActiveByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	if _, err := uc.customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	cart = domain.NewCart(customerID)
	if err := uc.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("cart created",
		zap.String("cart_id", cart.ID.String()),
		zap.String("customer_id", customerID.String()),
	)

	return cart, nil
}

// AddItemInput represents the input for adding a product to a cart
type AddItemInput struct {
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
}

// AddItem adds a product to the customer's active cart. The product
// name and price are snapshotted into the line at this moment. The
// incremented line quantity is re-validated against current stock.
func (uc *CartUseCase) AddItem(ctx context.Context, input AddItemInput) (*domain.Cart, error) {
	cart, err := uc.GetOrCreateCart(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	product, err := uc.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	wanted := cart.ItemQuantity(product.ID) + input.Quantity
	if err := uc.ensureStock(product, wanted); err != nil {
		return nil, err
	}

	if err := cart.AddItem(product, input.Quantity); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("item added to cart",
		zap.String("cart_id", cart.ID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// UpdateItemInput represents the input for changing a line's quantity
type UpdateItemInput struct {
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
}

// UpdateItem sets a line's quantity; zero removes the line. A positive
// quantity is re-validated against current stock.
func (uc *CartUseCase) UpdateItem(ctx context.Context, input UpdateItemInput) (*domain.Cart, error) {
	cart, err := uc.carts.FindActiveByCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	if input.Quantity > 0 {
		product, err := uc.products.GetByID(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		if err := uc.ensureStock(product, input.Quantity); err != nil {
			return nil, err
		}
	}

	if err := cart.UpdateQuantity(input.ProductID, input.Quantity); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveItem removes a product's line from the customer's active cart.
func (uc *CartUseCase) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*domain.Cart, error) {
	cart, err := uc.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := cart.RemoveItem(productID); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// ClearCart removes every line from the customer's active cart.
func (uc *CartUseCase) ClearCart(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	cart, err := uc.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := cart.Clear(); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// GetCart retrieves the customer's active cart.
func (uc *CartUseCase) GetCart(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	return uc.carts.FindActiveByCustomer(ctx, customerID)
}

// ensureStock rejects a target line quantity the current stock cannot
// cover. Checkout reserves atomically later; this keeps carts honest.
func (uc *CartUseCase) ensureStock(product *domain.Product, quantity int) error {
	if uc.ledger.HasSufficientStock(product.ID, product.OnHand, quantity) {
		return nil
	}
	available := product.OnHand - uc.ledger.Reserved(product.ID)
	if available < 0 {
		available = 0
	}
	return errors.NewInsufficientStock(product.Name, quantity, available)
}
