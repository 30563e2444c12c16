package domain

import (
	"github.com/google/uuid"

	"basketstore/pkg/errors"
)

// Domain-specific errors
var (
	ErrQuantityNotPositive  = errors.NewValidation("quantity must be greater than zero", nil)
	ErrTotalCostNotPositive = errors.NewValidation("total cost must be greater than zero", nil)
	ErrMarginNegative       = errors.NewValidation("margin must not be negative", nil)
	ErrValidationDatePast   = errors.NewValidation("validation date must be today or later", nil)
)

// NewBoxNotFound creates a not found error with the delivery box ID
func NewBoxNotFound(id uuid.UUID) error {
	return errors.NewNotFound("delivery box", id)
}

// NewBasketNotSellable creates an invalid state error for a sale on a
// non-available basket
func NewBasketNotSellable(id uuid.UUID, status string) error {
	return errors.NewInvalidState("basket cannot be sold", map[string]interface{}{
		"basket_id": id.String(),
		"status":    status,
	})
}

// NewBasketNotDisposable creates an invalid state error for disposal of
// a sold or already disposed basket
func NewBasketNotDisposable(id uuid.UUID, status string) error {
	return errors.NewInvalidState("basket cannot be disposed", map[string]interface{}{
		"basket_id": id.String(),
		"status":    status,
	})
}

// NewInsufficientBaskets creates an insufficient stock error for a sale
// requesting more baskets than are available
func NewInsufficientBaskets(requested, available int) error {
	return errors.NewInsufficientStock("baskets", requested, available)
}
