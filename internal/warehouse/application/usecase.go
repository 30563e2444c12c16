package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"basketstore/internal/warehouse/domain"
	"basketstore/internal/warehouse/ports"
	"basketstore/pkg/errors"
	"basketstore/pkg/events"
	"basketstore/pkg/logger"
	"basketstore/pkg/money"
)

var decimalHundred = decimal.NewFromInt(100)

// WarehouseUseCase handles delivery receipt, sales, disposal and
// reporting. Sell and dispose serialize on a pool-level mutex so two
// concurrent calls never pick overlapping baskets; events are published
// only after the lock is released.
type WarehouseUseCase struct {
	mu        sync.Mutex
	repo      ports.BasketRepository
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewWarehouseUseCase creates a new warehouse use case
func NewWarehouseUseCase(repo ports.BasketRepository, publisher ports.EventPublisher, log *logger.Logger) *WarehouseUseCase {
	return &WarehouseUseCase{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// ReceiveDeliveryInput represents the input for receiving a delivery
type ReceiveDeliveryInput struct {
	TotalQuantity  int
	ValidationDate time.Time
	TotalCost      money.Money
	MarginPct      float64
}

// ReceiveDelivery registers a delivery box, generates its baskets and
// announces the receipt.
func (uc *WarehouseUseCase) ReceiveDelivery(ctx context.Context, input ReceiveDeliveryInput) (*domain.DeliveryBox, error) {
	box, baskets, err := domain.NewDeliveryBox(input.TotalQuantity, input.ValidationDate, input.TotalCost, input.MarginPct)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.CreateBox(ctx, box, baskets); err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, events.DeliveryReceived{
		DeliveryBoxID: box.ID.String(),
		TotalQuantity: box.TotalQuantity,
	})

	uc.log.WithContext(ctx).Info("delivery received",
		zap.String("delivery_box_id", box.ID.String()),
		zap.Int("quantity", box.TotalQuantity),
		zap.String("unit_cost", box.UnitCost.String()),
		zap.String("selling_price", box.SellingPrice.String()),
	)

	return box, nil
}

// SellResult is the outcome of a committed sale
type SellResult struct {
	TransactionID uuid.UUID
	BasketIDs     []uuid.UUID
	Quantity      int
	TotalValue    money.Money
}

// SellBaskets sells the oldest available baskets. All-or-nothing: when
// fewer baskets are available than requested, nothing is sold.
func (uc *WarehouseUseCase) SellBaskets(ctx context.Context, quantity int) (*SellResult, error) {
	if quantity <= 0 {
		return nil, domain.ErrQuantityNotPositive
	}

	result, err := uc.sellLocked(ctx, quantity)
	if err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, events.BasketsSold{
		Quantity:      result.Quantity,
		TotalValue:    result.TotalValue.Float64(),
		TransactionID: result.TransactionID.String(),
	})

	uc.log.WithContext(ctx).Info("baskets sold",
		zap.Int("quantity", result.Quantity),
		zap.String("total_value", result.TotalValue.String()),
		zap.String("transaction_id", result.TransactionID.String()),
	)

	return result, nil
}

// sellLocked performs selection and marking under the pool lock.
func (uc *WarehouseUseCase) sellLocked(ctx context.Context, quantity int) (*SellResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := time.Now()
	available, err := uc.repo.CountAvailable(ctx, now)
	if err != nil {
		return nil, err
	}
	if available < quantity {
		return nil, domain.NewInsufficientBaskets(quantity, available)
	}

	baskets, err := uc.repo.FindAvailable(ctx, now, quantity)
	if err != nil {
		return nil, err
	}
	if len(baskets) < quantity {
		return nil, domain.NewInsufficientBaskets(quantity, len(baskets))
	}

	total := money.Zero()
	ids := make([]uuid.UUID, 0, quantity)
	for _, basket := range baskets {
		if err := basket.MarkSold(now); err != nil {
			return nil, err
		}
		total = total.Add(basket.Price)
		ids = append(ids, basket.ID)
	}

	if err := uc.repo.UpdateBaskets(ctx, baskets); err != nil {
		return nil, err
	}

	return &SellResult{
		TransactionID: uuid.New(),
		BasketIDs:     ids,
		Quantity:      quantity,
		TotalValue:    total,
	}, nil
}

// DisposeResult is the outcome of an expiry sweep
type DisposeResult struct {
	Quantity  int
	TotalLoss money.Money
}

// DisposeExpiredBaskets writes off every basket past its validation
// date. SOLD baskets are never touched; an empty sweep publishes
// nothing.
func (uc *WarehouseUseCase) DisposeExpiredBaskets(ctx context.Context) (*DisposeResult, error) {
	result, err := uc.disposeLocked(ctx)
	if err != nil {
		return nil, err
	}

	if result.Quantity > 0 {
		uc.publisher.Publish(ctx, events.BasketsDisposed{
			Quantity:   result.Quantity,
			LossAmount: result.TotalLoss.Float64(),
		})

		uc.log.WithContext(ctx).Info("expired baskets disposed",
			zap.Int("quantity", result.Quantity),
			zap.String("loss", result.TotalLoss.String()),
		)
	}

	return result, nil
}

func (uc *WarehouseUseCase) disposeLocked(ctx context.Context) (*DisposeResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := time.Now()
	expired, err := uc.repo.FindExpired(ctx, now)
	if err != nil {
		return nil, err
	}

	loss := money.Zero()
	for _, basket := range expired {
		if err := basket.MarkDisposed(now); err != nil {
			return nil, err
		}
		loss = loss.Add(basket.Price)
	}

	if len(expired) > 0 {
		if err := uc.repo.UpdateBaskets(ctx, expired); err != nil {
			return nil, err
		}
	}

	return &DisposeResult{
		Quantity:  len(expired),
		TotalLoss: loss,
	}, nil
}

// StockInfo is a point-in-time inventory report
type StockInfo struct {
	Total          int
	Available      int
	Sold           int
	Disposed       int
	Expired        int
	AvailableValue money.Money
}

// GetStockInfo derives inventory counts from the live basket
// collection.
func (uc *WarehouseUseCase) GetStockInfo(ctx context.Context) (*StockInfo, error) {
	baskets, err := uc.repo.ListBaskets(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	info := &StockInfo{Total: len(baskets), AvailableValue: money.Zero()}
	for _, basket := range baskets {
		switch basket.Status {
		case domain.BasketStatusSold:
			info.Sold++
		case domain.BasketStatusDisposed:
			info.Disposed++
		default:
			if basket.IsExpired(now) {
				info.Expired++
			} else if basket.IsAvailable(now) {
				info.Available++
				info.AvailableValue = info.AvailableValue.Add(basket.Price)
			}
		}
	}

	return info, nil
}

// CashRegister is the sales profitability report
type CashRegister struct {
	BasketsSold int
	Revenue     money.Money
	Cost        money.Money
	GrossProfit float64
	MarginPct   float64
}

// GetCashRegister sums the frozen prices of every sold basket against
// the unit costs of their delivery boxes.
func (uc *WarehouseUseCase) GetCashRegister(ctx context.Context) (*CashRegister, error) {
	sold, err := uc.repo.ListSold(ctx)
	if err != nil {
		return nil, err
	}

	boxes, err := uc.repo.ListBoxes(ctx)
	if err != nil {
		return nil, err
	}
	unitCosts := make(map[uuid.UUID]money.Money, len(boxes))
	for _, box := range boxes {
		unitCosts[box.ID] = box.UnitCost
	}

	revenue := money.Zero()
	cost := money.Zero()
	for _, basket := range sold {
		revenue = revenue.Add(basket.Price)
		if unitCost, ok := unitCosts[basket.DeliveryBoxID]; ok {
			cost = cost.Add(unitCost)
		} else {
			return nil, errors.NewInternal("sold basket references unknown delivery box", nil)
		}
	}

	profit := revenue.Decimal().Sub(cost.Decimal())
	report := &CashRegister{
		BasketsSold: len(sold),
		Revenue:     revenue,
		Cost:        cost,
	}
	report.GrossProfit, _ = profit.Float64()
	if !revenue.IsZero() {
		marginPct, _ := profit.Div(revenue.Decimal()).Mul(decimalHundred).Round(2).Float64()
		report.MarginPct = marginPct
	}

	return report, nil
}

// GetBox retrieves a delivery box by ID
func (uc *WarehouseUseCase) GetBox(ctx context.Context, id uuid.UUID) (*domain.DeliveryBox, error) {
	return uc.repo.GetBox(ctx, id)
}
