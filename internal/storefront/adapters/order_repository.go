package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"basketstore/internal/storefront/domain"
	apperrors "basketstore/pkg/errors"
	"basketstore/pkg/money"
)

// OrderModel is the GORM model for orders (persistence layer). The
// delivery address and payment descriptor are flattened into columns;
// they are immutable snapshots, never queried independently.
type OrderModel struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Number     string           `gorm:"size:20;uniqueIndex;not null"`
	CustomerID uuid.UUID        `gorm:"type:uuid;index;not null"`
	Status     string           `gorm:"size:30;not null"`
	Total      decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Notes      string           `gorm:"type:text"`
	Items      []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	Street     string `gorm:"size:200;not null"`
	HouseNum   string `gorm:"column:house_number;size:20;not null"`
	Complement string `gorm:"size:100"`
	District   string `gorm:"size:100;not null"`
	City       string `gorm:"size:100;not null"`
	State      string `gorm:"size:2;not null"`
	PostalCode string `gorm:"size:9;not null"`

	PaymentType    string `gorm:"size:10;not null"`
	CardLastDigits string `gorm:"size:4"`
	CardHolder     string `gorm:"size:100"`
	CardExpiry     string `gorm:"size:7"`

	CreatedAt            time.Time `gorm:"autoCreateTime"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime"`
	PaymentConfirmedAt   *time.Time
	PreparationStartedAt *time.Time
	ShippedAt            *time.Time
	DeliveredAt          *time.Time
	CancelledAt          *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the GORM model for order lines
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"size:100;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *gorm.DB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(db *gorm.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Migrate runs auto-migration for the order models
func (r *PostgresOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{}, &OrderItemModel{})
}

// Create persists the order and its lines. A unique violation on the
// order number surfaces as a CONFLICT so the caller can regenerate and
// retry.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := orderToModel(order)

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.NewDuplicateOrderNumber(order.Number)
		}
		return apperrors.NewInternal("failed to create order", result.Error)
	}
	return nil
}

// GetByID retrieves an order and its lines by ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return orderToDomain(&model), nil
}

// GetByNumber retrieves an order by its human-readable number
func (r *PostgresOrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Preload("Items").First(&model, "number = ?", number)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(number)
		}
		return nil, apperrors.NewInternal("failed to get order by number", result.Error)
	}

	return orderToDomain(&model), nil
}

// Update updates an order's mutable fields. Lines never change after
// creation, so they are skipped.
func (r *PostgresOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	model := orderToModel(order)

	result := r.db.WithContext(ctx).Omit("Items").Save(&model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update order", result.Error)
	}
	return nil
}

// ListByCustomer retrieves a customer's orders, newest first
func (r *PostgresOrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	var models []OrderModel

	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders", result.Error)
	}

	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = orderToDomain(&models[i])
	}
	return orders, nil
}

func orderToModel(order *domain.Order) OrderModel {
	items := make([]OrderItemModel, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemModel{
			ID:          item.ID,
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Decimal(),
			Subtotal:    item.Subtotal.Decimal(),
		}
	}
	return OrderModel{
		ID:         order.ID,
		Number:     order.Number,
		CustomerID: order.CustomerID,
		Status:     string(order.Status),
		Total:      order.Total.Decimal(),
		Notes:      order.Notes,
		Items:      items,

		Street:     order.DeliveryAddress.Street,
		HouseNum:   order.DeliveryAddress.Number,
		Complement: order.DeliveryAddress.Complement,
		District:   order.DeliveryAddress.District,
		City:       order.DeliveryAddress.City,
		State:      order.DeliveryAddress.State,
		PostalCode: order.DeliveryAddress.PostalCode,

		PaymentType:    string(order.Payment.Type),
		CardLastDigits: order.Payment.CardLastDigits,
		CardHolder:     order.Payment.CardHolder,
		CardExpiry:     order.Payment.CardExpiry,

		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
		PaymentConfirmedAt:   order.PaymentConfirmedAt,
		PreparationStartedAt: order.PreparationStartedAt,
		ShippedAt:            order.ShippedAt,
		DeliveredAt:          order.DeliveredAt,
		CancelledAt:          order.CancelledAt,
	}
}

func orderToDomain(model *OrderModel) *domain.Order {
	items := make([]domain.OrderItem, len(model.Items))
	for i, item := range model.Items {
		unitPrice, _ := money.New(item.UnitPrice)
		subtotal, _ := money.New(item.Subtotal)
		items[i] = domain.OrderItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    subtotal,
		}
	}
	total, _ := money.New(model.Total)
	return &domain.Order{
		ID:         model.ID,
		Number:     model.Number,
		CustomerID: model.CustomerID,
		Items:      items,
		DeliveryAddress: domain.Address{
			Street:     model.Street,
			Number:     model.HouseNum,
			Complement: model.Complement,
			District:   model.District,
			City:       model.City,
			State:      model.State,
			PostalCode: model.PostalCode,
		},
		Payment: domain.Payment{
			Type:           domain.PaymentType(model.PaymentType),
			CardLastDigits: model.CardLastDigits,
			CardHolder:     model.CardHolder,
			CardExpiry:     model.CardExpiry,
		},
		Total:  total,
		Status: domain.OrderStatus(model.Status),
		Notes:  model.Notes,

		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
		PaymentConfirmedAt:   model.PaymentConfirmedAt,
		PreparationStartedAt: model.PreparationStartedAt,
		ShippedAt:            model.ShippedAt,
		DeliveredAt:          model.DeliveredAt,
		CancelledAt:          model.CancelledAt,
	}
}
