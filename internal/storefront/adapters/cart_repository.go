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

// CartModel is the GORM model for carts (persistence layer)
type CartModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Status     string          `gorm:"size:20;not null;default:'ACTIVE'"`
	Items      []CartItemModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel is the GORM model for cart lines
type CartItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CartID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"size:100;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// PostgresCartRepository implements CartRepository using PostgreSQL
type PostgresCartRepository struct {
	db *gorm.DB
}

// NewPostgresCartRepository creates a new PostgreSQL cart repository
func NewPostgresCartRepository(db *gorm.DB) *PostgresCartRepository {
	return &PostgresCartRepository{db: db}
}

// Migrate runs auto-migration for the cart models
func (r *PostgresCartRepository) Migrate() error {
	return r.db.AutoMigrate(&CartModel{}, &CartItemModel{})
}

// Save persists the cart and replaces its lines in a single
// transaction. The cart aggregate is small enough that full replacement
// is simpler and safer than diffing lines.
func (r *PostgresCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	model := cartToModel(cart)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(&model).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
	if err != nil {
		return apperrors.NewInternal("failed to save cart", err)
	}
	return nil
}

// GetByID retrieves a cart and its lines by ID
func (r *PostgresCartRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	var model CartModel

	result := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("cart", id)
		}
		return nil, apperrors.NewInternal("failed to get cart", result.Error)
	}

	return cartToDomain(&model), nil
}

// FindActiveByCustomer retrieves the customer's ACTIVE cart
func (r *PostgresCartRepository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	var model CartModel

	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ? AND status = ?", customerID, domain.CartStatusActive).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewCartNotFound(customerID)
		}
		return nil, apperrors.NewInternal("failed to find active cart", result.Error)
	}

	return cartToDomain(&model), nil
}

func cartToModel(cart *domain.Cart) CartModel {
	items := make([]CartItemModel, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemModel{
			ID:          item.ID,
			CartID:      cart.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Decimal(),
		}
	}
	return CartModel{
		ID:         cart.ID,
		CustomerID: cart.CustomerID,
		Status:     string(cart.Status),
		Items:      items,
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}
}

func cartToDomain(model *CartModel) *domain.Cart {
	items := make([]domain.CartItem, len(model.Items))
	for i, item := range model.Items {
		price, _ := money.New(item.UnitPrice)
		items[i] = domain.CartItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   price,
		}
	}
	return &domain.Cart{
		ID:         model.ID,
		CustomerID: model.CustomerID,
		Items:      items,
		Status:     domain.CartStatus(model.Status),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
