package domain

import (
	"time"

	"github.com/google/uuid"

	"basketstore/pkg/money"
)

// BasketStatus represents the lifecycle status of a basket
type BasketStatus string

const (
	BasketStatusAvailable BasketStatus = "AVAILABLE"
	BasketStatusReserved  BasketStatus = "RESERVED"
	BasketStatusSold      BasketStatus = "SOLD"
	BasketStatusDisposed  BasketStatus = "DISPOSED"
)

// BasicBasket is one sellable inventory unit. Price and validation date
// are frozen when the basket is generated from its delivery box; SOLD
// and DISPOSED are terminal and mutually exclusive.
type BasicBasket struct {
	ID             uuid.UUID
	DeliveryBoxID  uuid.UUID
	ValidationDate time.Time
	Price          money.Money
	Status         BasketStatus
	CreatedAt      time.Time
	SoldAt         *time.Time
	DisposedAt     *time.Time
}

// IsAvailable reports whether the basket can be sold at the given
// moment: AVAILABLE status and not yet expired.
func (b *BasicBasket) IsAvailable(now time.Time) bool {
	return b.Status == BasketStatusAvailable && !b.IsExpired(now)
}

// IsExpired reports whether the validation date is strictly before
// today.
func (b *BasicBasket) IsExpired(now time.Time) bool {
	return b.ValidationDate.Before(truncateToDay(now))
}

// MarkSold transitions the basket to SOLD. Only an AVAILABLE basket can
// be sold; a DISPOSED basket can never come back.
func (b *BasicBasket) MarkSold(now time.Time) error {
	if b.Status != BasketStatusAvailable {
		return NewBasketNotSellable(b.ID, string(b.Status))
	}
	b.Status = BasketStatusSold
	b.SoldAt = &now
	return nil
}

// MarkDisposed transitions the basket to DISPOSED. A SOLD basket is
// never disposed; disposing twice fails.
func (b *BasicBasket) MarkDisposed(now time.Time) error {
	if b.Status == BasketStatusSold || b.Status == BasketStatusDisposed {
		return NewBasketNotDisposable(b.ID, string(b.Status))
	}
	b.Status = BasketStatusDisposed
	b.DisposedAt = &now
	return nil
}

// truncateToDay drops the time-of-day component.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
