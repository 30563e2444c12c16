package domain

import (
	"github.com/google/uuid"

	"basketstore/pkg/errors"
)

// Domain-specific errors
var (
	ErrNameRequired            = errors.NewValidation("name is required", nil)
	ErrNameLength              = errors.NewValidation("name must be between 2 and 100 characters", nil)
	ErrEmailRequired           = errors.NewValidation("email is required", nil)
	ErrEmailInvalid            = errors.NewValidation("email is invalid", nil)
	ErrQuantityNotPositive     = errors.NewValidation("quantity must be greater than zero", nil)
	ErrCartEmpty               = errors.NewValidation("cart has no items", nil)
	ErrStateInvalid            = errors.NewValidation("state must be a 2-letter code", map[string]interface{}{"field": "state"})
	ErrPostalCodeInvalid       = errors.NewValidation("postal code must match 12345-678", map[string]interface{}{"field": "postal_code"})
	ErrCardNumberInvalid       = errors.NewValidation("card number must have 16 digits", map[string]interface{}{"field": "card_number"})
	ErrCardHolderRequired      = errors.NewValidation("card holder name is required", map[string]interface{}{"field": "card_holder"})
	ErrCardSecurityCodeInvalid = errors.NewValidation("card security code is invalid", map[string]interface{}{"field": "security_code"})
	ErrCardExpiryInvalid       = errors.NewValidation("card expiry must be MM/YYYY", map[string]interface{}{"field": "card_expiry"})
	ErrCardExpired             = errors.NewValidation("card expiry must be a future month", map[string]interface{}{"field": "card_expiry"})
)

// NewCustomerNotFound creates a not found error with the customer ID
func NewCustomerNotFound(id uuid.UUID) error {
	return errors.NewNotFound("customer", id)
}

// NewProductNotFound creates a not found error with the product ID
func NewProductNotFound(id uuid.UUID) error {
	return errors.NewNotFound("product", id)
}

// NewCartNotFound creates a not found error for a customer's active cart
func NewCartNotFound(customerID uuid.UUID) error {
	return errors.NewNotFound("active cart for customer", customerID)
}

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id interface{}) error {
	return errors.NewNotFound("order", id)
}

// NewItemNotInCart creates a validation error for a product missing
// from the cart
func NewItemNotInCart(productID uuid.UUID) error {
	return errors.NewValidation("product is not in the cart", map[string]interface{}{
		"product_id": productID.String(),
	})
}

// NewProductUnavailable creates a validation error for an inactive product
func NewProductUnavailable(name string) error {
	return errors.NewValidation("product is not available for sale", map[string]interface{}{
		"product": name,
	})
}

// NewCartNotActive creates an invalid state error for a mutation on a
// non-active cart
func NewCartNotActive(cartID uuid.UUID, status string) error {
	return errors.NewInvalidState("cart is not active", map[string]interface{}{
		"cart_id": cartID.String(),
		"status":  status,
	})
}

// NewOrderInvalidState creates an invalid state error for an illegal
// order transition
func NewOrderInvalidState(orderID uuid.UUID, status, message string) error {
	return errors.NewInvalidState(message, map[string]interface{}{
		"order_id": orderID.String(),
		"status":   status,
	})
}

// NewDuplicateOrderNumber creates a conflict error for an order number
// collision
func NewDuplicateOrderNumber(number string) error {
	return errors.NewConflict("order number already exists: " + number)
}

// NewAddressFieldRequired creates a validation error for a missing
// address field
func NewAddressFieldRequired(field string) error {
	return errors.NewValidation(field+" is required", map[string]interface{}{
		"field": field,
	})
}
