package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/cart"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/order"
)

type memOrders struct {
	byID    map[string]*order.Order
	lookups int
	// hideUntil makes gateway lookups fail until the given attempt,
	// simulating persistence lag behind the gateway callback.
	hideUntil int
}

func newMemOrders() *memOrders {
	return &memOrders{byID: make(map[string]*order.Order)}
}

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) Update(_ context.Context, o *order.Order) error {
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) FindByGatewayOrderID(_ context.Context, ref string) (*order.Order, error) {
	m.lookups++
	if m.lookups < m.hideUntil {
		return nil, order.ErrNotFound
	}
	for _, o := range m.byID {
		if o.GatewayOrderID == ref {
			cp := *o
			cp.Items = append([]order.OrderItem(nil), o.Items...)
			return &cp, nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *memOrders) ListByUser(_ context.Context, _ string) ([]order.Order, error) {
	return nil, nil
}

func (m *memOrders) List(_ context.Context, _, _ int) ([]order.Order, int, error) {
	return nil, 0, nil
}

func (m *memOrders) ListInRange(_ context.Context, _, _ time.Time, _ []order.Status) ([]order.Order, error) {
	return nil, nil
}

type memCarts struct {
	items   map[string][]cart.Item
	cleared map[string]bool
}

func newMemCarts() *memCarts {
	return &memCarts{items: make(map[string][]cart.Item), cleared: make(map[string]bool)}
}

func (m *memCarts) Get(_ context.Context, userID string) (*cart.Cart, error) {
	return &cart.Cart{UserID: userID, Items: m.items[userID]}, nil
}

func (m *memCarts) Clear(_ context.Context, userID string) error {
	delete(m.items, userID)
	m.cleared[userID] = true
	return nil
}

type memProducts struct {
	byID map[string]catalog.Product
}

func (m *memProducts) List(_ context.Context) ([]catalog.Product, error) { return nil, nil }

func (m *memProducts) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) GetByIDs(_ context.Context, _ []string) ([]catalog.Product, error) {
	return nil, nil
}

func (m *memProducts) DecrementStock(_ context.Context, _ string, _ int) error { return nil }
func (m *memProducts) RestoreStock(_ context.Context, _ string, _ int) error  { return nil }

func seedGatewayOrder(t *testing.T, orders *memOrders) *order.Order {
	t.Helper()
	o := &order.Order{
		ID:             "o-1",
		UserID:         "u-1",
		GatewayOrderID: "order_Abc123",
		PaymentMethod:  order.PaymentRazorpay,
		Status:         order.StatusPending,
		Items: []order.OrderItem{
			{ID: "i-1", ProductID: "p-1", Quantity: 1, Price: decimal.NewFromInt(400), Status: order.StatusPending},
		},
		TotalAmount: decimal.NewFromInt(400),
	}
	require.NoError(t, orders.Create(context.Background(), o))
	return o
}

func TestConfirmMarksOrderPaid(t *testing.T) {
	orders := newMemOrders()
	carts := newMemCarts()
	carts.items["u-1"] = []cart.Item{{ProductID: "p-1", Quantity: 1}}
	seedGatewayOrder(t, orders)

	v := NewVerifier(orders, carts, "s3cret")
	sig := v.Sign("order_Abc123", "pay_Xyz789")

	o, err := v.Confirm(context.Background(), "order_Abc123", "pay_Xyz789", sig)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, o.Status)
	assert.Equal(t, "pay_Xyz789", o.PaymentID)
	for _, it := range o.Items {
		assert.Equal(t, order.StatusPaid, it.Status)
	}
	assert.True(t, carts.cleared["u-1"])

	stored, err := orders.GetByID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, stored.Status)
}

func TestConfirmRejectsTamperedSignature(t *testing.T) {
	orders := newMemOrders()
	carts := newMemCarts()
	carts.items["u-1"] = []cart.Item{{ProductID: "p-1", Quantity: 1}}
	seedGatewayOrder(t, orders)

	v := NewVerifier(orders, carts, "s3cret")
	sig := v.Sign("order_Abc123", "pay_Xyz789")

	_, err := v.Confirm(context.Background(), "order_Abc123", "pay_Xyz789", sig+"ff")
	require.ErrorIs(t, err, ErrSignatureMismatch)

	// Order and cart are untouched on rejection.
	stored, err := orders.GetByID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)
	assert.Empty(t, stored.PaymentID)
	assert.False(t, carts.cleared["u-1"])
}

func TestConfirmUnknownIntent(t *testing.T) {
	v := NewVerifier(newMemOrders(), newMemCarts(), "s3cret")
	sig := v.Sign("order_Nope", "pay_1")

	_, err := v.Confirm(context.Background(), "order_Nope", "pay_1", sig)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestHandleFailureRetriesLookup(t *testing.T) {
	orders := newMemOrders()
	orders.hideUntil = 3
	seedGatewayOrder(t, orders)

	r := NewReconciler(orders, newMemCarts(), &memProducts{})
	r.baseDelay = time.Millisecond

	o, err := r.HandleFailure(context.Background(), "order_Abc123", "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3, orders.lookups)
	assert.Equal(t, order.StatusFailed, o.Status)
	for _, it := range o.Items {
		assert.Equal(t, order.StatusFailed, it.Status)
	}
}

func TestHandleFailureSynthesizesFromCart(t *testing.T) {
	orders := newMemOrders()
	carts := newMemCarts()
	carts.items["u-1"] = []cart.Item{
		{ProductID: "p-1", Quantity: 2},
		{ProductID: "p-gone", Quantity: 1},
	}
	products := &memProducts{byID: map[string]catalog.Product{
		"p-1": {ID: "p-1", Name: "Trail Runner", Price: decimal.NewFromInt(400), Quantity: 5},
	}}

	r := NewReconciler(orders, carts, products)
	r.baseDelay = time.Millisecond
	r.now = func() time.Time {
		return time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	}

	o, err := r.HandleFailure(context.Background(), "order_Lost1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusFailed, o.Status)
	assert.Equal(t, "order_Lost1", o.GatewayOrderID)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "p-1", o.Items[0].ProductID)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(800)), "total %s", o.TotalAmount)

	stored, err := orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusFailed, stored.Status)
}

func TestHandleAbandonedResetsToPending(t *testing.T) {
	orders := newMemOrders()
	o := seedGatewayOrder(t, orders)
	o.Status = order.StatusProcessing
	require.NoError(t, orders.Update(context.Background(), o))

	r := NewReconciler(orders, newMemCarts(), &memProducts{})
	r.baseDelay = time.Millisecond

	got, err := r.HandleAbandoned(context.Background(), "order_Abc123")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestFindWithRetryHonorsContext(t *testing.T) {
	orders := newMemOrders()
	orders.hideUntil = 10

	r := NewReconciler(orders, newMemCarts(), &memProducts{})
	r.baseDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.HandleAbandoned(ctx, "order_Never")
	assert.ErrorIs(t, err, context.Canceled)
}
