package domain

import (
	"github.com/google/uuid"

	"basketstore/pkg/money"
)

// Product is a catalog snapshot consumed by the storefront. The catalog
// owns it; the cart and checkout only read price, name, on-hand and the
// active flag at call time.
type Product struct {
	ID        uuid.UUID
	Name      string
	UnitPrice money.Money
	OnHand    int
	Active    bool
}

// Available reports whether the product can be added to a cart.
func (p *Product) Available() bool {
	return p.Active
}
