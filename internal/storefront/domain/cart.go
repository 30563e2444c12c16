package domain

import (
	"time"

	"github.com/google/uuid"

	"basketstore/pkg/money"
)

// CartStatus represents the lifecycle status of a cart
type CartStatus string

const (
	CartStatusActive    CartStatus = "ACTIVE"
	CartStatusFinalized CartStatus = "FINALIZED"
	CartStatusCancelled CartStatus = "CANCELLED"
)

// CartItem is a line inside the Cart aggregate. Name and unit price are
// snapshots taken when the product was added; the live catalog can move
// without touching them.
type CartItem struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   money.Money
}

// Subtotal returns unit price times quantity.
func (i *CartItem) Subtotal() money.Money {
	sub, _ := i.UnitPrice.MulInt(i.Quantity)
	return sub
}

// Cart is the shopping cart aggregate root. A customer has at most one
// ACTIVE cart; all mutations go through its methods and are rejected
// once the cart leaves the ACTIVE state.
type Cart struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Items      []CartItem
	Status     CartStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCart creates an empty active cart for a customer.
func NewCart(customerID uuid.UUID) *Cart {
	now := time.Now()
	return &Cart{
		ID:         uuid.New(),
		CustomerID: customerID,
		Items:      []CartItem{},
		Status:     CartStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsActive reports whether the cart accepts mutations.
func (c *Cart) IsActive() bool {
	return c.Status == CartStatusActive
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddItem adds a product to the cart. If the product is already present
// the existing line's quantity is incremented instead of duplicating
// the line. Stock is the caller's concern; the cart only knows its own
// lines.
func (c *Cart) AddItem(product *Product, quantity int) error {
	if err := c.ensureActive(); err != nil {
		return err
	}
	if quantity <= 0 {
		return ErrQuantityNotPositive
	}
	if !product.Available() {
		return NewProductUnavailable(product.Name)
	}

	if item := c.findItem(product.ID); item != nil {
		item.Quantity += quantity
	} else {
		c.Items = append(c.Items, CartItem{
			ID:          uuid.New(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.UnitPrice,
		})
	}

	c.UpdatedAt = time.Now()
	return nil
}

// RemoveItem removes a product's line from the cart.
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	if err := c.ensureActive(); err != nil {
		return err
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return NewItemNotInCart(productID)
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the
// line.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) error {
	if err := c.ensureActive(); err != nil {
		return err
	}

	if quantity <= 0 {
		return c.RemoveItem(productID)
	}

	item := c.findItem(productID)
	if item == nil {
		return NewItemNotInCart(productID)
	}
	item.Quantity = quantity
	c.UpdatedAt = time.Now()
	return nil
}

// Clear removes every line from the cart.
func (c *Cart) Clear() error {
	if err := c.ensureActive(); err != nil {
		return err
	}
	c.Items = c.Items[:0]
	c.UpdatedAt = time.Now()
	return nil
}

// Finalize transitions ACTIVE -> FINALIZED. Finalizing an empty cart or
// finalizing twice fails; the state guard never silently succeeds.
func (c *Cart) Finalize() error {
	if err := c.ensureActive(); err != nil {
		return err
	}
	if c.IsEmpty() {
		return ErrCartEmpty
	}
	c.Status = CartStatusFinalized
	c.UpdatedAt = time.Now()
	return nil
}

// Cancel transitions ACTIVE -> CANCELLED.
func (c *Cart) Cancel() error {
	if err := c.ensureActive(); err != nil {
		return err
	}
	c.Status = CartStatusCancelled
	c.UpdatedAt = time.Now()
	return nil
}

// Total is derived from the current lines, never stored.
func (c *Cart) Total() money.Money {
	total := money.Zero()
	for i := range c.Items {
		total = total.Add(c.Items[i].Subtotal())
	}
	return total
}

// ItemCount is the sum of line quantities.
func (c *Cart) ItemCount() int {
	count := 0
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}

// ItemQuantity is the quantity currently in the line for a product,
// zero when the product is not in the cart.
func (c *Cart) ItemQuantity(productID uuid.UUID) int {
	if item := c.findItem(productID); item != nil {
		return item.Quantity
	}
	return 0
}

func (c *Cart) findItem(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) ensureActive() error {
	if !c.IsActive() {
		return NewCartNotActive(c.ID, string(c.Status))
	}
	return nil
}
