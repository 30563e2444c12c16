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

// CustomerModel is the GORM model for customers (persistence layer)
type CustomerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ProductModel is the GORM model for catalog products
type ProductModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"size:100;not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	OnHand    int             `gorm:"not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// PostgresCustomerRepository implements CustomerRepository using PostgreSQL
type PostgresCustomerRepository struct {
	db *gorm.DB
}

// NewPostgresCustomerRepository creates a new PostgreSQL customer repository
func NewPostgresCustomerRepository(db *gorm.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

// Migrate runs auto-migration for the customer model
func (r *PostgresCustomerRepository) Migrate() error {
	return r.db.AutoMigrate(&CustomerModel{})
}

// Create creates a new customer
func (r *PostgresCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	model := customerToModel(customer)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return apperrors.NewConflict("email already registered: " + customer.Email)
		}
		return apperrors.NewInternal("failed to create customer", result.Error)
	}

	customer.CreatedAt = model.CreatedAt
	customer.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a customer by ID
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewCustomerNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get customer", result.Error)
	}

	return customerToDomain(&model), nil
}

// GetByEmail retrieves a customer by email
func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).First(&model, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("customer", email)
		}
		return nil, apperrors.NewInternal("failed to get customer by email", result.Error)
	}

	return customerToDomain(&model), nil
}

// PostgresProductRepository implements ProductRepository using PostgreSQL
type PostgresProductRepository struct {
	db *gorm.DB
}

// NewPostgresProductRepository creates a new PostgreSQL product repository
func NewPostgresProductRepository(db *gorm.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// Migrate runs auto-migration for the product model
func (r *PostgresProductRepository) Migrate() error {
	return r.db.AutoMigrate(&ProductModel{})
}

// Create creates a new product
func (r *PostgresProductRepository) Create(ctx context.Context, product *domain.Product) error {
	result := r.db.WithContext(ctx).Create(productToModel(product))
	if result.Error != nil {
		return apperrors.NewInternal("failed to create product", result.Error)
	}
	return nil
}

// GetByID retrieves a product by ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var model ProductModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewProductNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get product", result.Error)
	}

	return productToDomain(&model), nil
}

// List retrieves all products ordered by name
func (r *PostgresProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var models []ProductModel

	result := r.db.WithContext(ctx).Order("name").Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list products", result.Error)
	}

	products := make([]*domain.Product, len(models))
	for i := range models {
		products[i] = productToDomain(&models[i])
	}
	return products, nil
}

// Update updates an existing product
func (r *PostgresProductRepository) Update(ctx context.Context, product *domain.Product) error {
	result := r.db.WithContext(ctx).Save(productToModel(product))
	if result.Error != nil {
		return apperrors.NewInternal("failed to update product", result.Error)
	}
	return nil
}

func customerToModel(c *domain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func customerToDomain(m *CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func productToModel(p *domain.Product) *ProductModel {
	return &ProductModel{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice.Decimal(),
		OnHand:    p.OnHand,
		Active:    p.Active,
	}
}

func productToDomain(m *ProductModel) *domain.Product {
	price, _ := money.New(m.UnitPrice)
	return &domain.Product{
		ID:        m.ID,
		Name:      m.Name,
		UnitPrice: price,
		OnHand:    m.OnHand,
		Active:    m.Active,
	}
}
