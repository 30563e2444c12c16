package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"basketstore/internal/warehouse/domain"
	"basketstore/pkg/errors"
	"basketstore/pkg/events"
	"basketstore/pkg/logger"
	"basketstore/pkg/money"
)

// MockBasketRepository is an in-memory mock of BasketRepository.
// Baskets keep insertion order, which stands in for created_at ordering.
type MockBasketRepository struct {
	boxes   map[uuid.UUID]*domain.DeliveryBox
	baskets []*domain.BasicBasket
}

func NewMockBasketRepository() *MockBasketRepository {
	return &MockBasketRepository{boxes: make(map[uuid.UUID]*domain.DeliveryBox)}
}

func (m *MockBasketRepository) CreateBox(ctx context.Context, box *domain.DeliveryBox, baskets []*domain.BasicBasket) error {
	m.boxes[box.ID] = box
	m.baskets = append(m.baskets, baskets...)
	return nil
}

func (m *MockBasketRepository) GetBox(ctx context.Context, id uuid.UUID) (*domain.DeliveryBox, error) {
	box, ok := m.boxes[id]
	if !ok {
		return nil, domain.NewBoxNotFound(id)
	}
	return box, nil
}

func (m *MockBasketRepository) ListBoxes(ctx context.Context) ([]*domain.DeliveryBox, error) {
	result := make([]*domain.DeliveryBox, 0, len(m.boxes))
	for _, box := range m.boxes {
		result = append(result, box)
	}
	return result, nil
}

func (m *MockBasketRepository) FindAvailable(ctx context.Context, asOf time.Time, limit int) ([]*domain.BasicBasket, error) {
	var result []*domain.BasicBasket
	for _, b := range m.baskets {
		if b.IsAvailable(asOf) {
			result = append(result, b)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (m *MockBasketRepository) CountAvailable(ctx context.Context, asOf time.Time) (int, error) {
	count := 0
	for _, b := range m.baskets {
		if b.IsAvailable(asOf) {
			count++
		}
	}
	return count, nil
}

func (m *MockBasketRepository) FindExpired(ctx context.Context, asOf time.Time) ([]*domain.BasicBasket, error) {
	var result []*domain.BasicBasket
	for _, b := range m.baskets {
		if b.IsExpired(asOf) && b.Status != domain.BasketStatusSold && b.Status != domain.BasketStatusDisposed {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *MockBasketRepository) UpdateBaskets(ctx context.Context, baskets []*domain.BasicBasket) error {
	return nil // baskets are shared pointers in this mock
}

func (m *MockBasketRepository) ListBaskets(ctx context.Context) ([]*domain.BasicBasket, error) {
	return m.baskets, nil
}

func (m *MockBasketRepository) ListSold(ctx context.Context) ([]*domain.BasicBasket, error) {
	var result []*domain.BasicBasket
	for _, b := range m.baskets {
		if b.Status == domain.BasketStatusSold {
			result = append(result, b)
		}
	}
	return result, nil
}

// MockEventPublisher records published facts in order
type MockEventPublisher struct {
	mu    sync.Mutex
	facts []interface{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, fact interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts = append(m.facts, fact)
	return nil
}

func (m *MockEventPublisher) PublishAll(ctx context.Context, facts ...interface{}) error {
	for _, fact := range facts {
		if err := m.Publish(ctx, fact); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockEventPublisher) Facts() []interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]interface{}(nil), m.facts...)
}

func newUseCase() (*WarehouseUseCase, *MockBasketRepository, *MockEventPublisher) {
	repo := NewMockBasketRepository()
	publisher := &MockEventPublisher{}
	log := logger.New("test", "debug", "console")
	return NewWarehouseUseCase(repo, publisher, log), repo, publisher
}

func receive(t *testing.T, uc *WarehouseUseCase, quantity int, cost float64, margin float64) *domain.DeliveryBox {
	t.Helper()
	box, err := uc.ReceiveDelivery(context.Background(), ReceiveDeliveryInput{
		TotalQuantity:  quantity,
		ValidationDate: time.Now().AddDate(0, 0, 7),
		TotalCost:      money.MustFromFloat(cost),
		MarginPct:      margin,
	})
	if err != nil {
		t.Fatalf("receive delivery failed: %v", err)
	}
	return box
}

func TestReceiveDelivery_PricingAndEvent(t *testing.T) {
	uc, repo, publisher := newUseCase()

	box := receive(t, uc, 100, 250.00, 0.20)

	if !box.UnitCost.Equal(money.MustFromFloat(2.50)) {
		t.Errorf("expected unit cost R$ 2.50, got %s", box.UnitCost)
	}
	if !box.SellingPrice.Equal(money.MustFromFloat(3.00)) {
		t.Errorf("expected selling price R$ 3.00, got %s", box.SellingPrice)
	}
	if len(repo.baskets) != 100 {
		t.Errorf("expected 100 baskets generated, got %d", len(repo.baskets))
	}

	facts := publisher.Facts()
	if len(facts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(facts))
	}
	received, ok := facts[0].(events.DeliveryReceived)
	if !ok {
		t.Fatalf("expected DeliveryReceived, got %T", facts[0])
	}
	if received.TotalQuantity != 100 {
		t.Errorf("event carries quantity %d, expected 100", received.TotalQuantity)
	}
}

func TestSellBaskets_FIFO(t *testing.T) {
	uc, repo, _ := newUseCase()

	receive(t, uc, 1, 2.00, 0)
	first := repo.baskets[0]
	receive(t, uc, 1, 4.00, 0)
	second := repo.baskets[1]

	result, err := uc.SellBaskets(context.Background(), 1)
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if result.BasketIDs[0] != first.ID {
		t.Error("expected the oldest basket to sell first")
	}
	if first.Status != domain.BasketStatusSold {
		t.Errorf("expected first basket SOLD, got %s", first.Status)
	}

	result, err = uc.SellBaskets(context.Background(), 1)
	if err != nil {
		t.Fatalf("second sell failed: %v", err)
	}
	if result.BasketIDs[0] != second.ID {
		t.Error("expected the second-oldest basket on the second sale")
	}
}

func TestSellBaskets_InsufficientSellsNothing(t *testing.T) {
	uc, repo, publisher := newUseCase()
	receive(t, uc, 2, 4.00, 0)

	_, err := uc.SellBaskets(context.Background(), 3)
	if !errors.Is(err, errors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}

	// The error reports the counted availability.
	details := err.(*errors.AppError).Details.(map[string]interface{})
	if details["available"] != 2 || details["requested"] != 3 {
		t.Errorf("expected requested 3 / available 2 in details, got %v", details)
	}

	for _, b := range repo.baskets {
		if b.Status != domain.BasketStatusAvailable {
			t.Errorf("no partial sale allowed, basket is %s", b.Status)
		}
	}
	for _, fact := range publisher.Facts() {
		if _, ok := fact.(events.BasketsSold); ok {
			t.Error("no BasketsSold event may be published for a failed sale")
		}
	}
}

func TestSellBaskets_RevenueIsSumOfFrozenPrices(t *testing.T) {
	uc, _, _ := newUseCase()
	receive(t, uc, 100, 250.00, 0.20) // selling price 3.00 each

	result, err := uc.SellBaskets(context.Background(), 3)
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if !result.TotalValue.Equal(money.MustFromFloat(9.00)) {
		t.Errorf("expected revenue R$ 9.00, got %s", result.TotalValue)
	}
	if result.TransactionID == uuid.Nil {
		t.Error("expected a transaction id")
	}
}

func TestSellBaskets_ConcurrentLastBasket(t *testing.T) {
	uc, _, _ := newUseCase()
	receive(t, uc, 1, 2.00, 0)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.SellBaskets(context.Background(), 1)
			results <- err
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
		t.Errorf("exactly one sale must win the last basket, got %d", succeeded)
	}
}

func TestDisposeExpired_SkipsSoldAndPublishesLoss(t *testing.T) {
	uc, repo, publisher := newUseCase()
	receive(t, uc, 3, 9.00, 0) // price 3.00 each

	if _, err := uc.SellBaskets(context.Background(), 1); err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	// Everything in the box is now past its date.
	for _, b := range repo.baskets {
		b.ValidationDate = time.Now().AddDate(0, 0, -1)
	}

	result, err := uc.DisposeExpiredBaskets(context.Background())
	if err != nil {
		t.Fatalf("dispose failed: %v", err)
	}
	if result.Quantity != 2 {
		t.Errorf("expected 2 disposed (sold basket untouched), got %d", result.Quantity)
	}
	if !result.TotalLoss.Equal(money.MustFromFloat(6.00)) {
		t.Errorf("expected loss R$ 6.00, got %s", result.TotalLoss)
	}
	if repo.baskets[0].Status != domain.BasketStatusSold {
		t.Errorf("sold basket must never be disposed, got %s", repo.baskets[0].Status)
	}

	facts := publisher.Facts()
	last, ok := facts[len(facts)-1].(events.BasketsDisposed)
	if !ok {
		t.Fatalf("expected BasketsDisposed last, got %T", facts[len(facts)-1])
	}
	if last.Quantity != 2 {
		t.Errorf("event carries quantity %d, expected 2", last.Quantity)
	}
}

func TestDisposeExpired_EmptySweepPublishesNothing(t *testing.T) {
	uc, _, publisher := newUseCase()
	receive(t, uc, 2, 4.00, 0)

	result, err := uc.DisposeExpiredBaskets(context.Background())
	if err != nil {
		t.Fatalf("dispose failed: %v", err)
	}
	if result.Quantity != 0 {
		t.Errorf("expected 0 disposed, got %d", result.Quantity)
	}
	for _, fact := range publisher.Facts() {
		if _, ok := fact.(events.BasketsDisposed); ok {
			t.Error("empty sweep must not publish BasketsDisposed")
		}
	}
}

func TestGetStockInfo(t *testing.T) {
	uc, repo, _ := newUseCase()
	receive(t, uc, 4, 10.00, 0.20) // unit cost 2.50, price 3.00

	if _, err := uc.SellBaskets(context.Background(), 1); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	repo.baskets[1].ValidationDate = time.Now().AddDate(0, 0, -1)

	info, err := uc.GetStockInfo(context.Background())
	if err != nil {
		t.Fatalf("stock info failed: %v", err)
	}
	if info.Total != 4 || info.Sold != 1 || info.Expired != 1 || info.Available != 2 {
		t.Errorf("unexpected counts: %+v", info)
	}
	if !info.AvailableValue.Equal(money.MustFromFloat(6.00)) {
		t.Errorf("expected available value R$ 6.00, got %s", info.AvailableValue)
	}
}

func TestGetCashRegister(t *testing.T) {
	uc, _, _ := newUseCase()
	receive(t, uc, 100, 250.00, 0.20) // cost 2.50, price 3.00

	if _, err := uc.SellBaskets(context.Background(), 4); err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	report, err := uc.GetCashRegister(context.Background())
	if err != nil {
		t.Fatalf("cash register failed: %v", err)
	}
	if report.BasketsSold != 4 {
		t.Errorf("expected 4 sold, got %d", report.BasketsSold)
	}
	if !report.Revenue.Equal(money.MustFromFloat(12.00)) {
		t.Errorf("expected revenue R$ 12.00, got %s", report.Revenue)
	}
	if !report.Cost.Equal(money.MustFromFloat(10.00)) {
		t.Errorf("expected cost R$ 10.00, got %s", report.Cost)
	}
	if report.GrossProfit != 2.00 {
		t.Errorf("expected profit 2.00, got %v", report.GrossProfit)
	}
}

func TestGetCashRegister_EmptyRegister(t *testing.T) {
	uc, _, _ := newUseCase()

	report, err := uc.GetCashRegister(context.Background())
	if err != nil {
		t.Fatalf("cash register failed: %v", err)
	}
	if report.BasketsSold != 0 || !report.Revenue.IsZero() || report.MarginPct != 0 {
		t.Errorf("expected empty register, got %+v", report)
	}
}
