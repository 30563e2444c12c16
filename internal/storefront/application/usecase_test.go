package application

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"basketstore/internal/storefront/adapters"
	"basketstore/internal/storefront/domain"
	"basketstore/pkg/errors"
	"basketstore/pkg/events"
	"basketstore/pkg/logger"
	"basketstore/pkg/money"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	customers map[uuid.UUID]*domain.Customer
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{customers: make(map[uuid.UUID]*domain.Customer)}
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	for _, c := range m.customers {
		if c.Email == customer.Email {
			return errors.NewConflict("email already registered: " + customer.Email)
		}
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, domain.NewCustomerNotFound(id)
	}
	return customer, nil
}

func (m *MockCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	for _, c := range m.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, errors.NewNotFound("customer", email)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, domain.NewProductNotFound(id)
	}
	return product, nil
}

func (m *MockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	result := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		result = append(result, p)
	}
	return result, nil
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

// MockCartRepository is a mock implementation of CartRepository
type MockCartRepository struct {
	carts map[uuid.UUID]*domain.Cart
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{carts: make(map[uuid.UUID]*domain.Cart)}
}

func (m *MockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	m.carts[cart.ID] = cart
	return nil
}

func (m *MockCartRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	cart, ok := m.carts[id]
	if !ok {
		return nil, errors.NewNotFound("cart", id)
	}
	return cart, nil
}

func (m *MockCartRepository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	for _, cart := range m.carts {
		if cart.CustomerID == customerID && cart.IsActive() {
			return cart, nil
		}
	}
	return nil, domain.NewCartNotFound(customerID)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	orders       map[uuid.UUID]*domain.Order
	conflictOnce bool
	createErr    error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.conflictOnce {
		m.conflictOnce = false
		return domain.NewDuplicateOrderNumber(order.Number)
	}
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	return order, nil
}

func (m *MockOrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.Number == number {
			return order, nil
		}
	}
	return nil, domain.NewOrderNotFound(number)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.CustomerID == customerID {
			result = append(result, order)
		}
	}
	return result, nil
}

// MockEventPublisher records published facts in order
type MockEventPublisher struct {
	facts []interface{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, fact interface{}) error {
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

type checkoutFixture struct {
	customers *MockCustomerRepository
	products  *MockProductRepository
	carts     *MockCartRepository
	orders    *MockOrderRepository
	ledger    *adapters.StockLedger
	publisher *MockEventPublisher
	useCase   *CheckoutUseCase

	customer *domain.Customer
	productX *domain.Product
	productY *domain.Product
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	log := logger.New("test", "debug", "console")

	f := &checkoutFixture{
		customers: NewMockCustomerRepository(),
		products:  NewMockProductRepository(),
		carts:     NewMockCartRepository(),
		orders:    NewMockOrderRepository(),
		ledger:    adapters.NewStockLedger(log),
		publisher: &MockEventPublisher{},
	}
	f.useCase = NewCheckoutUseCase(f.carts, f.orders, f.products, f.customers, f.ledger, f.publisher, log)

	customer, err := domain.NewCustomer("Fulano da Silva", "fulano@example.com")
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	f.customer = customer
	f.customers.customers[customer.ID] = customer

	f.productX = &domain.Product{ID: uuid.New(), Name: "X", UnitPrice: money.MustFromFloat(10.00), OnHand: 5, Active: true}
	f.productY = &domain.Product{ID: uuid.New(), Name: "Y", UnitPrice: money.MustFromFloat(5.50), OnHand: 5, Active: true}
	f.products.products[f.productX.ID] = f.productX
	f.products.products[f.productY.ID] = f.productY

	return f
}

func (f *checkoutFixture) fillCart(t *testing.T) *domain.Cart {
	t.Helper()
	cart := domain.NewCart(f.customer.ID)
	if err := cart.AddItem(f.productX, 2); err != nil {
		t.Fatalf("failed to add item: %v", err)
	}
	if err := cart.AddItem(f.productY, 1); err != nil {
		t.Fatalf("failed to add item: %v", err)
	}
	f.carts.carts[cart.ID] = cart
	return cart
}

func checkoutInput(t *testing.T, customerID uuid.UUID) CheckoutInput {
	t.Helper()
	address, err := domain.NewAddress("Rua A", "10", "", "Centro", "São Paulo", "SP", "01001-000")
	if err != nil {
		t.Fatalf("failed to create address: %v", err)
	}
	return CheckoutInput{
		CustomerID: customerID,
		Address:    address,
		Payment:    domain.NewPixPayment(),
	}
}

func TestCheckout_Success(t *testing.T) {
	f := newCheckoutFixture(t)
	cart := f.fillCart(t)

	output, err := f.useCase.Checkout(context.Background(), checkoutInput(t, f.customer.ID))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	order := output.Order
	if order.Status != domain.OrderStatusAwaitingPayment {
		t.Errorf("expected AGUARDANDO_PAGAMENTO, got %s", order.Status)
	}
	if !order.Total.Equal(money.MustFromFloat(25.50)) {
		t.Errorf("expected total R$ 25.50, got %s", order.Total)
	}
	if cart.Status != domain.CartStatusFinalized {
		t.Errorf("expected cart FINALIZED, got %s", cart.Status)
	}
	if got := f.ledger.Reserved(f.productX.ID); got != 2 {
		t.Errorf("expected 2 reserved for X, got %d", got)
	}
	if got := f.ledger.Reserved(f.productY.ID); got != 1 {
		t.Errorf("expected 1 reserved for Y, got %d", got)
	}

	if len(f.publisher.facts) != 2 {
		t.Fatalf("expected 2 events, got %d", len(f.publisher.facts))
	}
	if _, ok := f.publisher.facts[0].(events.CartFinalized); !ok {
		t.Errorf("expected CartFinalized first, got %T", f.publisher.facts[0])
	}
	created, ok := f.publisher.facts[1].(events.OrderCreated)
	if !ok {
		t.Fatalf("expected OrderCreated second, got %T", f.publisher.facts[1])
	}
	if created.OrderNumber != order.Number {
		t.Errorf("event carries number %s, order has %s", created.OrderNumber, order.Number)
	}
	if created.CustomerEmail != f.customer.Email {
		t.Errorf("event carries email %s, expected %s", created.CustomerEmail, f.customer.Email)
	}
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	f := newCheckoutFixture(t)
	f.productY.OnHand = 0
	cart := f.fillCart(t)

	_, err := f.useCase.Checkout(context.Background(), checkoutInput(t, f.customer.ID))
	if !errors.Is(err, errors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}

	// The error names the offending product, not its id.
	details := err.(*errors.AppError).Details.(map[string]interface{})
	if details["product"] != f.productY.Name {
		t.Errorf("expected product %q in details, got %v", f.productY.Name, details["product"])
	}

	// The reservation taken for X before Y fell short must be undone.
	if got := f.ledger.Reserved(f.productX.ID); got != 0 {
		t.Errorf("expected 0 reserved for X after rollback, got %d", got)
	}
	if len(f.orders.orders) != 0 {
		t.Errorf("expected no order persisted, got %d", len(f.orders.orders))
	}
	if len(f.publisher.facts) != 0 {
		t.Errorf("expected no events, got %d", len(f.publisher.facts))
	}
	if cart.Status != domain.CartStatusActive {
		t.Errorf("cart must stay ACTIVE after a failed checkout, got %s", cart.Status)
	}
}

func TestCheckout_PersistFailureReleasesReservations(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)
	f.orders.createErr = errors.NewInternal("database down", nil)

	_, err := f.useCase.Checkout(context.Background(), checkoutInput(t, f.customer.ID))
	if !errors.Is(err, errors.CodeInternal) {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}

	if got := f.ledger.Reserved(f.productX.ID); got != 0 {
		t.Errorf("expected 0 reserved for X, got %d", got)
	}
	if got := f.ledger.Reserved(f.productY.ID); got != 0 {
		t.Errorf("expected 0 reserved for Y, got %d", got)
	}
	if len(f.publisher.facts) != 0 {
		t.Errorf("expected no events, got %d", len(f.publisher.facts))
	}
}

func TestCheckout_OrderNumberCollisionRetriesOnce(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)
	f.orders.conflictOnce = true

	output, err := f.useCase.Checkout(context.Background(), checkoutInput(t, f.customer.ID))
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(f.orders.orders) != 1 {
		t.Errorf("expected 1 order persisted, got %d", len(f.orders.orders))
	}
	if output.Order.Number == "" {
		t.Error("expected a regenerated order number")
	}
}

func TestCheckout_EmptyCartFails(t *testing.T) {
	f := newCheckoutFixture(t)
	cart := domain.NewCart(f.customer.ID)
	f.carts.carts[cart.ID] = cart

	_, err := f.useCase.Checkout(context.Background(), checkoutInput(t, f.customer.ID))
	if !errors.Is(err, errors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckout_NoActiveCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.useCase.Checkout(context.Background(), checkoutInput(t, f.customer.ID))
	if !errors.Is(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelOrder_ReleasesReservations(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t)
	log := logger.New("test", "debug", "console")

	output, err := f.useCase.Checkout(context.Background(), checkoutInput(t, f.customer.ID))
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	orderUC := NewOrderUseCase(f.orders, f.ledger, log)
	cancelled, err := orderUC.CancelOrder(context.Background(), output.Order.ID, "cliente desistiu")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if cancelled.Status != domain.OrderStatusCancelled {
		t.Errorf("expected CANCELADO, got %s", cancelled.Status)
	}
	if got := f.ledger.Reserved(f.productX.ID); got != 0 {
		t.Errorf("expected 0 reserved for X after cancel, got %d", got)
	}
	if got := f.ledger.Reserved(f.productY.ID); got != 0 {
		t.Errorf("expected 0 reserved for Y after cancel, got %d", got)
	}
}

func TestCartUseCase_GetOrCreate(t *testing.T) {
	f := newCheckoutFixture(t)
	log := logger.New("test", "debug", "console")
	cartUC := NewCartUseCase(f.carts, f.products, f.customers, f.ledger, log)

	cart, err := cartUC.GetOrCreateCart(context.Background(), f.customer.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cart.IsEmpty() {
		t.Error("expected a fresh empty cart")
	}

	again, err := cartUC.GetOrCreateCart(context.Background(), f.customer.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if again.ID != cart.ID {
		t.Error("expected the same active cart on the second call")
	}
}

func TestCartUseCase_GetOrCreate_UnknownCustomer(t *testing.T) {
	f := newCheckoutFixture(t)
	log := logger.New("test", "debug", "console")
	cartUC := NewCartUseCase(f.carts, f.products, f.customers, f.ledger, log)

	_, err := cartUC.GetOrCreateCart(context.Background(), uuid.New())
	if !errors.Is(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCartUseCase_AddItem(t *testing.T) {
	f := newCheckoutFixture(t)
	log := logger.New("test", "debug", "console")
	cartUC := NewCartUseCase(f.carts, f.products, f.customers, f.ledger, log)

	cart, err := cartUC.AddItem(context.Background(), AddItemInput{
		CustomerID: f.customer.ID,
		ProductID:  f.productX.ID,
		Quantity:   3,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cart.ItemCount() != 3 {
		t.Errorf("expected 3 items, got %d", cart.ItemCount())
	}

	stored, err := f.carts.GetByID(context.Background(), cart.ID)
	if err != nil {
		t.Fatalf("cart not persisted: %v", err)
	}
	if stored.ItemCount() != 3 {
		t.Errorf("persisted cart has %d items, expected 3", stored.ItemCount())
	}
}

func TestCartUseCase_AddItem_RejectsBeyondStock(t *testing.T) {
	f := newCheckoutFixture(t)
	log := logger.New("test", "debug", "console")
	cartUC := NewCartUseCase(f.carts, f.products, f.customers, f.ledger, log)

	_, err := cartUC.AddItem(context.Background(), AddItemInput{
		CustomerID: f.customer.ID,
		ProductID:  f.productX.ID,
		Quantity:   100,
	})
	if !errors.Is(err, errors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK for 100 of 5, got %v", err)
	}
	details := err.(*errors.AppError).Details.(map[string]interface{})
	if details["product"] != f.productX.Name {
		t.Errorf("expected product %q in details, got %v", f.productX.Name, details["product"])
	}

	cart, err := cartUC.GetOrCreateCart(context.Background(), f.customer.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("rejected add must not touch the cart, got %d items", cart.ItemCount())
	}
}

func TestCartUseCase_AddItem_RevalidatesIncrementedQuantity(t *testing.T) {
	f := newCheckoutFixture(t)
	log := logger.New("test", "debug", "console")
	cartUC := NewCartUseCase(f.carts, f.products, f.customers, f.ledger, log)

	cart, err := cartUC.AddItem(context.Background(), AddItemInput{
		CustomerID: f.customer.ID,
		ProductID:  f.productX.ID,
		Quantity:   3,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// 3 already in the cart plus 3 more exceeds the 5 on hand.
	_, err = cartUC.AddItem(context.Background(), AddItemInput{
		CustomerID: f.customer.ID,
		ProductID:  f.productX.ID,
		Quantity:   3,
	})
	if !errors.Is(err, errors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK for the incremented line, got %v", err)
	}
	if cart.ItemQuantity(f.productX.ID) != 3 {
		t.Errorf("rejected increment must keep the line at 3, got %d", cart.ItemQuantity(f.productX.ID))
	}
}

func TestCartUseCase_UpdateItem_RejectsBeyondStock(t *testing.T) {
	f := newCheckoutFixture(t)
	log := logger.New("test", "debug", "console")
	cartUC := NewCartUseCase(f.carts, f.products, f.customers, f.ledger, log)

	cart, err := cartUC.AddItem(context.Background(), AddItemInput{
		CustomerID: f.customer.ID,
		ProductID:  f.productX.ID,
		Quantity:   2,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err = cartUC.UpdateItem(context.Background(), UpdateItemInput{
		CustomerID: f.customer.ID,
		ProductID:  f.productX.ID,
		Quantity:   100,
	})
	if !errors.Is(err, errors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK for 100 of 5, got %v", err)
	}
	if cart.ItemQuantity(f.productX.ID) != 2 {
		t.Errorf("rejected update must keep the line at 2, got %d", cart.ItemQuantity(f.productX.ID))
	}

	// Zero still removes the line without a stock check.
	updated, err := cartUC.UpdateItem(context.Background(), UpdateItemInput{
		CustomerID: f.customer.ID,
		ProductID:  f.productX.ID,
		Quantity:   0,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.IsEmpty() {
		t.Error("expected the line removed at quantity zero")
	}
}

func TestRegisterCustomer(t *testing.T) {
	f := newCheckoutFixture(t)
	log := logger.New("test", "debug", "console")
	customerUC := NewCustomerUseCase(f.customers, f.publisher, log)

	customer, err := customerUC.RegisterCustomer(context.Background(), RegisterCustomerInput{
		Name:  "Beltrano de Souza",
		Email: "beltrano@example.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(f.publisher.facts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.publisher.facts))
	}
	registered, ok := f.publisher.facts[0].(events.CustomerRegistered)
	if !ok {
		t.Fatalf("expected CustomerRegistered, got %T", f.publisher.facts[0])
	}
	if registered.CustomerID != customer.ID.String() {
		t.Error("event carries wrong customer id")
	}

	_, err = customerUC.RegisterCustomer(context.Background(), RegisterCustomerInput{
		Name:  "Beltrano de Souza",
		Email: "beltrano@example.com",
	})
	if !errors.Is(err, errors.CodeConflict) {
		t.Fatalf("expected CONFLICT for duplicate email, got %v", err)
	}
}
