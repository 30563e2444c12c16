package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"basketstore/internal/warehouse/domain"
	apperrors "basketstore/pkg/errors"
	"basketstore/pkg/money"
)

// DeliveryBoxModel is the GORM model for delivery boxes
type DeliveryBoxModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TotalQuantity  int             `gorm:"not null"`
	ValidationDate time.Time       `gorm:"not null"`
	TotalCost      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UnitCost       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SellingPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	MarginPct      float64         `gorm:"not null"`
	ReceivedAt     time.Time       `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (DeliveryBoxModel) TableName() string {
	return "delivery_boxes"
}

// BasketModel is the GORM model for baskets. created_at carries the
// FIFO order for sales.
type BasketModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DeliveryBoxID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	ValidationDate time.Time       `gorm:"index;not null"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status         string          `gorm:"size:20;index;not null;default:'AVAILABLE'"`
	CreatedAt      time.Time       `gorm:"index;not null"`
	SoldAt         *time.Time
	DisposedAt     *time.Time
}

// TableName returns the table name for GORM
func (BasketModel) TableName() string {
	return "baskets"
}

// PostgresBasketRepository implements BasketRepository using PostgreSQL
type PostgresBasketRepository struct {
	db *gorm.DB
}

// NewPostgresBasketRepository creates a new PostgreSQL basket repository
func NewPostgresBasketRepository(db *gorm.DB) *PostgresBasketRepository {
	return &PostgresBasketRepository{db: db}
}

// Migrate runs auto-migration for the warehouse models
func (r *PostgresBasketRepository) Migrate() error {
	return r.db.AutoMigrate(&DeliveryBoxModel{}, &BasketModel{})
}

// CreateBox persists a delivery box and its baskets in one transaction
func (r *PostgresBasketRepository) CreateBox(ctx context.Context, box *domain.DeliveryBox, baskets []*domain.BasicBasket) error {
	boxModel := boxToModel(box)
	basketModels := make([]BasketModel, len(baskets))
	for i, basket := range baskets {
		basketModels[i] = basketToModel(basket)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&boxModel).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(&basketModels, 500).Error
	})
	if err != nil {
		return apperrors.NewInternal("failed to create delivery box", err)
	}
	return nil
}

// GetBox retrieves a delivery box by ID
func (r *PostgresBasketRepository) GetBox(ctx context.Context, id uuid.UUID) (*domain.DeliveryBox, error) {
	var model DeliveryBoxModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewBoxNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get delivery box", result.Error)
	}

	return boxToDomain(&model), nil
}

// ListBoxes retrieves all delivery boxes
func (r *PostgresBasketRepository) ListBoxes(ctx context.Context) ([]*domain.DeliveryBox, error) {
	var models []DeliveryBoxModel

	result := r.db.WithContext(ctx).Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list delivery boxes", result.Error)
	}

	boxes := make([]*domain.DeliveryBox, len(models))
	for i := range models {
		boxes[i] = boxToDomain(&models[i])
	}
	return boxes, nil
}

// FindAvailable retrieves up to limit sellable baskets, oldest first
func (r *PostgresBasketRepository) FindAvailable(ctx context.Context, asOf time.Time, limit int) ([]*domain.BasicBasket, error) {
	var models []BasketModel

	result := r.db.WithContext(ctx).
		Where("status = ? AND validation_date >= ?", domain.BasketStatusAvailable, startOfDay(asOf)).
		Order("created_at").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to find available baskets", result.Error)
	}

	return basketsToDomain(models), nil
}

// CountAvailable counts sellable baskets as of the given moment
func (r *PostgresBasketRepository) CountAvailable(ctx context.Context, asOf time.Time) (int, error) {
	var count int64

	result := r.db.WithContext(ctx).
		Model(&BasketModel{}).
		Where("status = ? AND validation_date >= ?", domain.BasketStatusAvailable, startOfDay(asOf)).
		Count(&count)
	if result.Error != nil {
		return 0, apperrors.NewInternal("failed to count available baskets", result.Error)
	}

	return int(count), nil
}

// FindExpired retrieves baskets past their validation date that are
// neither sold nor disposed
func (r *PostgresBasketRepository) FindExpired(ctx context.Context, asOf time.Time) ([]*domain.BasicBasket, error) {
	var models []BasketModel

	result := r.db.WithContext(ctx).
		Where("validation_date < ? AND status NOT IN ?", startOfDay(asOf),
			[]string{string(domain.BasketStatusSold), string(domain.BasketStatusDisposed)}).
		Order("created_at").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to find expired baskets", result.Error)
	}

	return basketsToDomain(models), nil
}

// UpdateBaskets persists status changes for the given baskets
func (r *PostgresBasketRepository) UpdateBaskets(ctx context.Context, baskets []*domain.BasicBasket) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, basket := range baskets {
			model := basketToModel(basket)
			if err := tx.Save(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewInternal("failed to update baskets", err)
	}
	return nil
}

// ListBaskets retrieves every basket
func (r *PostgresBasketRepository) ListBaskets(ctx context.Context) ([]*domain.BasicBasket, error) {
	var models []BasketModel

	result := r.db.WithContext(ctx).Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list baskets", result.Error)
	}

	return basketsToDomain(models), nil
}

// ListSold retrieves all SOLD baskets
func (r *PostgresBasketRepository) ListSold(ctx context.Context) ([]*domain.BasicBasket, error) {
	var models []BasketModel

	result := r.db.WithContext(ctx).
		Where("status = ?", domain.BasketStatusSold).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list sold baskets", result.Error)
	}

	return basketsToDomain(models), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func boxToModel(box *domain.DeliveryBox) DeliveryBoxModel {
	return DeliveryBoxModel{
		ID:             box.ID,
		TotalQuantity:  box.TotalQuantity,
		ValidationDate: box.ValidationDate,
		TotalCost:      box.TotalCost.Decimal(),
		UnitCost:       box.UnitCost.Decimal(),
		SellingPrice:   box.SellingPrice.Decimal(),
		MarginPct:      box.MarginPct,
		ReceivedAt:     box.ReceivedAt,
	}
}

func boxToDomain(model *DeliveryBoxModel) *domain.DeliveryBox {
	totalCost, _ := money.New(model.TotalCost)
	unitCost, _ := money.New(model.UnitCost)
	sellingPrice, _ := money.New(model.SellingPrice)
	return &domain.DeliveryBox{
		ID:             model.ID,
		TotalQuantity:  model.TotalQuantity,
		ValidationDate: model.ValidationDate,
		TotalCost:      totalCost,
		UnitCost:       unitCost,
		SellingPrice:   sellingPrice,
		MarginPct:      model.MarginPct,
		ReceivedAt:     model.ReceivedAt,
	}
}

func basketToModel(basket *domain.BasicBasket) BasketModel {
	return BasketModel{
		ID:             basket.ID,
		DeliveryBoxID:  basket.DeliveryBoxID,
		ValidationDate: basket.ValidationDate,
		Price:          basket.Price.Decimal(),
		Status:         string(basket.Status),
		CreatedAt:      basket.CreatedAt,
		SoldAt:         basket.SoldAt,
		DisposedAt:     basket.DisposedAt,
	}
}

func basketsToDomain(models []BasketModel) []*domain.BasicBasket {
	baskets := make([]*domain.BasicBasket, len(models))
	for i := range models {
		price, _ := money.New(models[i].Price)
		baskets[i] = &domain.BasicBasket{
			ID:             models[i].ID,
			DeliveryBoxID:  models[i].DeliveryBoxID,
			ValidationDate: models[i].ValidationDate,
			Price:          price,
			Status:         domain.BasketStatus(models[i].Status),
			CreatedAt:      models[i].CreatedAt,
			SoldAt:         models[i].SoldAt,
			DisposedAt:     models[i].DisposedAt,
		}
	}
	return baskets
}
