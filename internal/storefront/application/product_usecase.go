package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"basketstore/internal/storefront/domain"
	"basketstore/internal/storefront/ports"
	"basketstore/pkg/logger"
	"basketstore/pkg/money"
)

// ProductUseCase handles catalog management
type ProductUseCase struct {
	products ports.ProductRepository
	log      *logger.Logger
}

// NewProductUseCase creates a new product use case
func NewProductUseCase(products ports.ProductRepository, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{
		products: products,
		log:      log,
	}
}

// CreateProductInput represents the input for creating a product
type CreateProductInput struct {
	Name      string
	UnitPrice money.Money
	OnHand    int
}

// CreateProduct adds a product to the catalog
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, domain.ErrNameRequired
	}
	if input.OnHand < 0 {
		return nil, domain.ErrQuantityNotPositive
	}

	product := &domain.Product{
		ID:        uuid.New(),
		Name:      input.Name,
		UnitPrice: input.UnitPrice,
		OnHand:    input.OnHand,
		Active:    true,
	}
	if err := uc.products.Create(ctx, product); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)

	return product, nil
}

// ListProducts retrieves the catalog
func (uc *ProductUseCase) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return uc.products.List(ctx)
}

// GetProduct retrieves a product by ID
func (uc *ProductUseCase) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return uc.products.GetByID(ctx, id)
}

// DeactivateProduct takes a product off sale without deleting it
func (uc *ProductUseCase) DeactivateProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Active = false
	if err := uc.products.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}
