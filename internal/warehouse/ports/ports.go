package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"basketstore/internal/warehouse/domain"
)

// BasketRepository defines the interface for delivery box and basket
// persistence
type BasketRepository interface {
	// CreateBox persists a delivery box and its generated baskets in one
	// transaction
	CreateBox(ctx context.Context, box *domain.DeliveryBox, baskets []*domain.BasicBasket) error

	// GetBox retrieves a delivery box by ID
	GetBox(ctx context.Context, id uuid.UUID) (*domain.DeliveryBox, error)

	// ListBoxes retrieves all delivery boxes
	ListBoxes(ctx context.Context) ([]*domain.DeliveryBox, error)

	// FindAvailable retrieves up to limit sellable baskets as of the
	// given moment, oldest first. FIFO order is by creation time.
	FindAvailable(ctx context.Context, asOf time.Time, limit int) ([]*domain.BasicBasket, error)

	// CountAvailable counts sellable baskets as of the given moment
	CountAvailable(ctx context.Context, asOf time.Time) (int, error)

	// FindExpired retrieves baskets past their validation date that are
	// neither sold nor disposed
	FindExpired(ctx context.Context, asOf time.Time) ([]*domain.BasicBasket, error)

	// UpdateBaskets persists status changes for the given baskets
	UpdateBaskets(ctx context.Context, baskets []*domain.BasicBasket) error

	// ListBaskets retrieves every basket; used by the stock report
	ListBaskets(ctx context.Context) ([]*domain.BasicBasket, error)

	// ListSold retrieves all SOLD baskets; used by the cash register
	// report
	ListSold(ctx context.Context) ([]*domain.BasicBasket, error)
}

// EventPublisher defines the interface for publishing warehouse facts.
// The fact type alone picks the routing key; see the adapter.
type EventPublisher interface {
	// Publish emits a single fact with at-least-once delivery
	Publish(ctx context.Context, fact interface{}) error

	// PublishAll emits the facts in argument order
	PublishAll(ctx context.Context, facts ...interface{}) error
}
