package domain

import (
	"time"

	"github.com/google/uuid"

	"basketstore/pkg/money"
)

// DeliveryBox is a received shipment of identical units. Unit cost and
// selling price are computed once at receipt and frozen into the
// generated baskets.
type DeliveryBox struct {
	ID             uuid.UUID
	TotalQuantity  int
	ValidationDate time.Time
	TotalCost      money.Money
	UnitCost       money.Money
	SellingPrice   money.Money
	MarginPct      float64
	ReceivedAt     time.Time
}

// NewDeliveryBox validates the receipt parameters, computes unit cost
// (total / quantity, half-up to 2 places) and selling price
// (unit cost plus unit cost times the margin fraction), and generates
// one AVAILABLE basket per unit.
func NewDeliveryBox(quantity int, validationDate time.Time, totalCost money.Money, marginPct float64) (*DeliveryBox, []*BasicBasket, error) {
	now := time.Now()

	if quantity <= 0 {
		return nil, nil, ErrQuantityNotPositive
	}
	if totalCost.IsZero() {
		return nil, nil, ErrTotalCostNotPositive
	}
	if marginPct < 0 {
		return nil, nil, ErrMarginNegative
	}
	if validationDate.Before(truncateToDay(now)) {
		return nil, nil, ErrValidationDatePast
	}

	unitCost, err := totalCost.DivInt(quantity)
	if err != nil {
		return nil, nil, err
	}
	margin, err := unitCost.MulFrac(marginPct)
	if err != nil {
		return nil, nil, err
	}
	sellingPrice := unitCost.Add(margin)

	box := &DeliveryBox{
		ID:             uuid.New(),
		TotalQuantity:  quantity,
		ValidationDate: validationDate,
		TotalCost:      totalCost,
		UnitCost:       unitCost,
		SellingPrice:   sellingPrice,
		MarginPct:      marginPct,
		ReceivedAt:     now,
	}

	baskets := make([]*BasicBasket, quantity)
	for i := range baskets {
		baskets[i] = &BasicBasket{
			ID:             uuid.New(),
			DeliveryBoxID:  box.ID,
			ValidationDate: validationDate,
			Price:          sellingPrice,
			Status:         BasketStatusAvailable,
			CreatedAt:      now,
		}
	}

	return box, baskets, nil
}

// AvailableCount counts the box's baskets still sellable right now.
// Always derived from the live collection, never cached.
func (d *DeliveryBox) AvailableCount(baskets []*BasicBasket, now time.Time) int {
	count := 0
	for _, b := range baskets {
		if b.DeliveryBoxID == d.ID && b.IsAvailable(now) {
			count++
		}
	}
	return count
}

// ExpiredCount counts the box's baskets past their validation date and
// not yet disposed.
func (d *DeliveryBox) ExpiredCount(baskets []*BasicBasket, now time.Time) int {
	count := 0
	for _, b := range baskets {
		if b.DeliveryBoxID == d.ID && b.IsExpired(now) && b.Status != BasketStatusDisposed {
			count++
		}
	}
	return count
}
