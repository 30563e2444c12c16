package adapters

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"basketstore/pkg/errors"
)

func TestStockLedger_Reserve(t *testing.T) {
	ledger := NewStockLedger(nil)
	productID := uuid.New()

	if err := ledger.Reserve(productID, "Arroz 5kg", 10, 3); err != nil {
		t.Fatalf("expected reservation to succeed, got %v", err)
	}
	if got := ledger.Reserved(productID); got != 3 {
		t.Errorf("expected 3 reserved, got %d", got)
	}

	// 7 left of 10; asking for 8 must fail and record nothing.
	err := ledger.Reserve(productID, "Arroz 5kg", 10, 8)
	if !errors.Is(err, errors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	if got := ledger.Reserved(productID); got != 3 {
		t.Errorf("failed reservation must not change the ledger, got %d", got)
	}

	// The error names the product, not its id.
	appErr := err.(*errors.AppError)
	details := appErr.Details.(map[string]interface{})
	if details["product"] != "Arroz 5kg" {
		t.Errorf("expected product name in details, got %v", details["product"])
	}
	if details["available"] != 7 {
		t.Errorf("expected 7 available in details, got %v", details["available"])
	}
}

func TestStockLedger_HasSufficientStock(t *testing.T) {
	ledger := NewStockLedger(nil)
	productID := uuid.New()

	if !ledger.HasSufficientStock(productID, 5, 5) {
		t.Error("expected 5 of 5 to be reservable")
	}
	if ledger.HasSufficientStock(productID, 5, 6) {
		t.Error("expected 6 of 5 to be rejected")
	}

	if err := ledger.Reserve(productID, "Feijão 1kg", 5, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The check must see reservations, not just the on-hand count.
	if ledger.HasSufficientStock(productID, 5, 3) {
		t.Error("expected 3 of 2 remaining to be rejected")
	}
	if !ledger.HasSufficientStock(productID, 5, 2) {
		t.Error("expected 2 of 2 remaining to be reservable")
	}
	if got := ledger.Reserved(productID); got != 3 {
		t.Errorf("check must not record anything, got %d reserved", got)
	}
}

func TestStockLedger_Release(t *testing.T) {
	ledger := NewStockLedger(nil)
	productID := uuid.New()

	if err := ledger.Reserve(productID, "Arroz 5kg", 5, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ledger.Release(productID, 2)
	if got := ledger.Reserved(productID); got != 3 {
		t.Errorf("expected 3 reserved after release, got %d", got)
	}

	// Over-release clamps at zero instead of going negative.
	ledger.Release(productID, 100)
	if got := ledger.Reserved(productID); got != 0 {
		t.Errorf("expected 0 reserved after clamped release, got %d", got)
	}

	ledger.Release(uuid.New(), 1)
}

func TestStockLedger_ConcurrentLastUnit(t *testing.T) {
	ledger := NewStockLedger(nil)
	productID := uuid.New()

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- ledger.Reserve(productID, "Arroz 5kg", 1, 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, errors.CodeInsufficientStock) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("exactly one reservation must win the last unit, got %d", succeeded)
	}
	if got := ledger.Reserved(productID); got != 1 {
		t.Errorf("expected 1 reserved, got %d", got)
	}
}
