package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"basketstore/internal/storefront/domain"
	"basketstore/internal/storefront/ports"
	"basketstore/pkg/events"
	"basketstore/pkg/logger"
)

// CustomerUseCase handles customer registration and lookup
type CustomerUseCase struct {
	customers ports.CustomerRepository
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewCustomerUseCase creates a new customer use case
func NewCustomerUseCase(
	customers ports.CustomerRepository,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *CustomerUseCase {
	return &CustomerUseCase{
		customers: customers,
		publisher: publisher,
		log:       log,
	}
}

// RegisterCustomerInput represents the input for registering a customer
type RegisterCustomerInput struct {
	Name  string
	Email string
}

// RegisterCustomer creates a customer account and announces it
func (uc *CustomerUseCase) RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*domain.Customer, error) {
	customer, err := domain.NewCustomer(input.Name, input.Email)
	if err != nil {
		return nil, err
	}

	if err := uc.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, events.CustomerRegistered{
		CustomerID: customer.ID.String(),
		Name:       customer.Name,
		Email:      customer.Email,
	})

	uc.log.WithContext(ctx).Info("customer registered",
		zap.String("customer_id", customer.ID.String()),
	)

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return uc.customers.GetByID(ctx, id)
}
