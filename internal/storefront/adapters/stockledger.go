package adapters

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"basketstore/internal/storefront/ports"
	"basketstore/pkg/errors"
	"basketstore/pkg/logger"
)

// StockLedger is an in-memory implementation of ports.StockLedger. All
// access goes through a single mutex so concurrent checkouts see a
// consistent reserved count per product.
type StockLedger struct {
	mu       sync.Mutex
	reserved map[uuid.UUID]int
	log      *logger.Logger
}

// NewStockLedger creates an empty ledger.
func NewStockLedger(log *logger.Logger) *StockLedger {
	return &StockLedger{
		reserved: make(map[uuid.UUID]int),
		log:      log,
	}
}

var _ ports.StockLedger = (*StockLedger)(nil)

// Reserve checks availability and records the reservation under a
// single lock. Two concurrent reservations for the last unit cannot
// both succeed. The product name is carried only into the error.
func (l *StockLedger) Reserve(productID uuid.UUID, productName string, onHand, quantity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	available := onHand - l.reserved[productID]
	if available < quantity {
		if available < 0 {
			available = 0
		}
		return errors.NewInsufficientStock(productName, quantity, available)
	}

	l.reserved[productID] += quantity
	return nil
}

// HasSufficientStock reports whether quantity units are reservable
// right now without recording anything.
func (l *StockLedger) HasSufficientStock(productID uuid.UUID, onHand, quantity int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return onHand-l.reserved[productID] >= quantity
}

// Release returns a reservation, clamping at zero. Over-release points
// at a compensation bug upstream, so it is logged rather than ignored.
func (l *StockLedger) Release(productID uuid.UUID, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.reserved[productID]
	if quantity > current {
		if l.log != nil {
			l.log.Warn("stock release exceeds reservation, clamping at zero",
				zap.String("product_id", productID.String()),
				zap.Int("reserved", current),
				zap.Int("released", quantity),
			)
		}
		quantity = current
	}

	remaining := current - quantity
	if remaining == 0 {
		delete(l.reserved, productID)
	} else {
		l.reserved[productID] = remaining
	}
}

// Reserved reports the quantity currently reserved for a product.
func (l *StockLedger) Reserved(productID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reserved[productID]
}
