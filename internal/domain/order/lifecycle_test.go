package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/coupon"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/wallet"
)

type lifecycleFixture struct {
	svc      *LifecycleService
	orders   *memOrders
	products *memProducts
	offers   *memOffers
	balance  *memWallets
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	products := newMemProducts(
		catalog.Product{ID: "p-1", Name: "Trail Runner", Price: decimal.NewFromInt(400), Quantity: 5, Category: "footwear"},
		catalog.Product{ID: "p-2", Name: "Canvas Belt", Price: decimal.NewFromInt(300), Quantity: 5, Category: "accessories"},
	)
	coupons := newMemCoupons(coupon.Coupon{
		Code:        "WELCOME10",
		DiscountPct: decimal.NewFromInt(10),
		MinAmount:   decimal.NewFromInt(100),
		MaxAmount:   decimal.NewFromInt(5000),
		Active:      true,
	})
	offers := newMemOffers()
	orders := newMemOrders()
	balance := newMemWallets()

	svc := NewLifecycleService(orders, products, coupons, wallet.NewService(balance), pricing.NewResolver(offers))
	return &lifecycleFixture{svc: svc, orders: orders, products: products, offers: offers, balance: balance}
}

func (fx *lifecycleFixture) seedOrder(t *testing.T, st Status, couponCode string) *Order {
	t.Helper()
	o := &Order{
		ID:     "o-1",
		UserID: "u-1",
		Items: []OrderItem{
			{ID: "i-1", ProductID: "p-1", Quantity: 2, Price: decimal.NewFromInt(400), Status: st},
			{ID: "i-2", ProductID: "p-2", Quantity: 1, Price: decimal.NewFromInt(300), Status: st},
		},
		TotalAmount:   decimal.NewFromInt(1100),
		PaymentMethod: PaymentCOD,
		CouponCode:    couponCode,
		Status:        st,
		OrderDate:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		CreatedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, fx.orders.Create(context.Background(), o))
	return o
}

func TestRequestReturn(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusDelivered, "")

	err := fx.svc.RequestReturn(context.Background(), "o-1", "i-1", "wrong size")
	require.NoError(t, err)

	o, err := fx.orders.GetByID(context.Background(), "o-1")
	require.NoError(t, err)
	item, err := o.ItemByID("i-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReturn, item.Status)
	assert.Equal(t, "wrong size", item.ReturnReason)
	assert.True(t, o.HasRequest)

	// No refund until approval.
	_, err = fx.balance.Find(context.Background(), "u-1")
	assert.ErrorIs(t, err, wallet.ErrNotFound)
}

func TestRequestReturnRequiresDelivery(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusShipped, "")

	err := fx.svc.RequestReturn(context.Background(), "o-1", "i-1", "changed mind")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StatusShipped, invalid.From)
}

func TestRequestReturnUnknownItem(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusDelivered, "")

	err := fx.svc.RequestReturn(context.Background(), "o-1", "i-404", "lost")
	assert.ErrorIs(t, err, ErrItemNotFound)

	err = fx.svc.RequestReturn(context.Background(), "o-404", "i-1", "lost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveReturnRefundsResolvedPrice(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusDelivered, "WELCOME10")
	fx.offers.category["footwear"] = decimal.NewFromInt(10)
	require.NoError(t, fx.svc.RequestReturn(context.Background(), "o-1", "i-1", "wrong size"))

	refund, err := fx.svc.ApproveReturn(context.Background(), "o-1", "p-1")
	require.NoError(t, err)

	// Footwear offer (10%) and coupon (10%) tie at 360; refund 2*360.
	assert.True(t, refund.Equal(decimal.NewFromInt(720)), "refund %s", refund)

	w, err := fx.balance.Find(context.Background(), "u-1")
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(720)))
	require.Len(t, w.Transactions, 1)
	assert.Equal(t, wallet.MethodRefund, w.Transactions[0].Method)

	p, _ := fx.products.GetByID(context.Background(), "p-1")
	assert.Equal(t, 7, p.Quantity)

	o, _ := fx.orders.GetByID(context.Background(), "o-1")
	item, _ := o.ItemByProduct("p-1")
	assert.Equal(t, StatusReturned, item.Status)
	// Other item still delivered, so the order keeps its status.
	assert.Equal(t, StatusDelivered, o.Status)
	assert.True(t, o.HasRequest)
}

func TestApproveReturnNeedsPendingRequest(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusDelivered, "")

	_, err := fx.svc.ApproveReturn(context.Background(), "o-1", "p-1")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	// Nothing moved.
	_, err = fx.balance.Find(context.Background(), "u-1")
	assert.ErrorIs(t, err, wallet.ErrNotFound)
	p, _ := fx.products.GetByID(context.Background(), "p-1")
	assert.Equal(t, 5, p.Quantity)
}

func TestAllItemsReturnedFlipsOrder(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusDelivered, "")
	require.NoError(t, fx.svc.RequestReturn(context.Background(), "o-1", "i-1", "a"))
	require.NoError(t, fx.svc.RequestReturn(context.Background(), "o-1", "i-2", "b"))

	_, err := fx.svc.ApproveReturn(context.Background(), "o-1", "p-1")
	require.NoError(t, err)
	_, err = fx.svc.ApproveReturn(context.Background(), "o-1", "p-2")
	require.NoError(t, err)

	o, _ := fx.orders.GetByID(context.Background(), "o-1")
	assert.Equal(t, StatusReturned, o.Status)
}

func TestCancelItemRefundsImmediately(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusProcessing, "WELCOME10")

	refund, err := fx.svc.CancelItem(context.Background(), "o-1", "i-2", "p-2", "ordered by mistake")
	require.NoError(t, err)

	// Cancellation refunds the offer price only; the coupon is not applied.
	assert.True(t, refund.Equal(decimal.NewFromInt(300)), "refund %s", refund)

	w, err := fx.balance.Find(context.Background(), "u-1")
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(300)))

	p, _ := fx.products.GetByID(context.Background(), "p-2")
	assert.Equal(t, 6, p.Quantity)

	o, _ := fx.orders.GetByID(context.Background(), "o-1")
	item, _ := o.ItemByID("i-2")
	assert.Equal(t, StatusCancelled, item.Status)
	assert.Equal(t, "ordered by mistake", item.CancelReason)
	assert.Equal(t, StatusProcessing, o.Status)
	assert.True(t, o.HasRequest)
}

func TestCancelAllItemsCancelsOrder(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusProcessing, "")

	_, err := fx.svc.CancelItem(context.Background(), "o-1", "i-1", "p-1", "a")
	require.NoError(t, err)
	_, err = fx.svc.CancelItem(context.Background(), "o-1", "i-2", "p-2", "b")
	require.NoError(t, err)

	o, _ := fx.orders.GetByID(context.Background(), "o-1")
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestCancelItemProductMismatch(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusProcessing, "")

	_, err := fx.svc.CancelItem(context.Background(), "o-1", "i-1", "p-2", "mixed up")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCancelDeliveredItemRejected(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusDelivered, "")

	_, err := fx.svc.CancelItem(context.Background(), "o-1", "i-1", "p-1", "too late")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestSetOrderStatusCascades(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusProcessing, "")

	require.NoError(t, fx.svc.SetOrderStatus(context.Background(), "o-1", StatusShipped))

	o, _ := fx.orders.GetByID(context.Background(), "o-1")
	assert.Equal(t, StatusShipped, o.Status)
	for _, it := range o.Items {
		assert.Equal(t, StatusShipped, it.Status)
	}
}

func TestSetItemStatus(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.seedOrder(t, StatusShipped, "")

	require.NoError(t, fx.svc.SetItemStatus(context.Background(), "o-1", "p-1", StatusDelivered))

	o, _ := fx.orders.GetByID(context.Background(), "o-1")
	i1, _ := o.ItemByProduct("p-1")
	i2, _ := o.ItemByProduct("p-2")
	assert.Equal(t, StatusDelivered, i1.Status)
	assert.Equal(t, StatusShipped, i2.Status)
	assert.Equal(t, StatusShipped, o.Status)
}
