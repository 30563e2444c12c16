package ports

import (
	"context"

	"github.com/google/uuid"

	"basketstore/internal/storefront/domain"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)

	// GetByEmail retrieves a customer by email
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

// ProductRepository defines the interface for catalog persistence
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// List retrieves all products
	List(ctx context.Context) ([]*domain.Product, error)

	// Update updates an existing product
	Update(ctx context.Context, product *domain.Product) error
}

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// Save persists a cart and its lines
	Save(ctx context.Context, cart *domain.Cart) error

	// GetByID retrieves a cart by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error)

	// FindActiveByCustomer retrieves a customer's ACTIVE cart, if any.
	// Returns a NOT_FOUND error when the customer has no active cart.
	FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error)
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create creates a new order. Returns a CONFLICT error when the
	// order number already exists.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// GetByNumber retrieves an order by its human-readable number
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)

	// Update updates an existing order
	Update(ctx context.Context, order *domain.Order) error

	// ListByCustomer retrieves a customer's orders, newest first
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error)
}

// StockLedger tracks quantities reserved by in-flight checkouts on top
// of the persisted on-hand counts. Reservations are process-local.
type StockLedger interface {
	// Reserve atomically checks availability against the given on-hand
	// count and records the reservation. Returns an INSUFFICIENT_STOCK
	// error naming the product when onHand minus already-reserved is
	// less than quantity; on error nothing is recorded.
	Reserve(productID uuid.UUID, productName string, onHand, quantity int) error

	// HasSufficientStock reports whether quantity units could be
	// reserved right now. A read-only check; nothing is recorded.
	HasSufficientStock(productID uuid.UUID, onHand, quantity int) bool

	// Release returns a reservation. Releasing more than is currently
	// reserved clamps at zero.
	Release(productID uuid.UUID, quantity int)

	// Reserved reports the quantity currently reserved for a product.
	Reserved(productID uuid.UUID) int
}

// EventPublisher defines the interface for publishing domain facts.
// Routing from fact type to exchange and routing key is fixed at the
// adapter; callers never pick destinations.
type EventPublisher interface {
	// Publish emits a single fact. Delivery is at-least-once; the
	// adapter decides how broker failures surface.
	Publish(ctx context.Context, fact interface{}) error

	// PublishAll emits the facts in argument order.
	PublishAll(ctx context.Context, facts ...interface{}) error
}
