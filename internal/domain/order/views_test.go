package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/coupon"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/user"
)

func newViewsFixture(t *testing.T) (*Views, *memOrders, *memOffers) {
	t.Helper()
	products := newMemProducts(
		catalog.Product{ID: "p-1", Name: "Trail Runner", Price: decimal.NewFromInt(400), Quantity: 5, Category: "footwear"},
		catalog.Product{ID: "p-2", Name: "Canvas Belt", Price: decimal.NewFromInt(300), Quantity: 5, Category: "accessories"},
	)
	coupons := newMemCoupons(coupon.Coupon{
		Code:        "WELCOME10",
		DiscountPct: decimal.NewFromInt(10),
		MinAmount:   decimal.NewFromInt(500),
		MaxAmount:   decimal.NewFromInt(5000),
		Active:      true,
	})
	users := newMemUsers(user.User{ID: "u-1", Name: "Asha", Email: "asha@example.com"})
	offers := newMemOffers()
	orders := newMemOrders()
	return NewViews(orders, products, coupons, users, pricing.NewResolver(offers)), orders, offers
}

func TestListUserOrdersApportionsCoupon(t *testing.T) {
	views, orders, _ := newViewsFixture(t)
	require.NoError(t, orders.Create(context.Background(), &Order{
		ID:     "o-1",
		UserID: "u-1",
		Items: []OrderItem{
			{ID: "i-1", ProductID: "p-1", Quantity: 2, Price: decimal.NewFromInt(400), Status: StatusDelivered},
			{ID: "i-2", ProductID: "p-2", Quantity: 1, Price: decimal.NewFromInt(300), Status: StatusDelivered},
		},
		CouponCode: "WELCOME10",
		Status:     StatusDelivered,
		CreatedAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}))

	got, err := views.ListUserOrders(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	ov := got[0]
	assert.True(t, ov.Subtotal.Equal(decimal.NewFromInt(1100)), "subtotal %s", ov.Subtotal)
	assert.True(t, ov.TotalDiscount.Equal(decimal.NewFromInt(110)), "discount %s", ov.TotalDiscount)
	assert.True(t, ov.Payable.Equal(decimal.NewFromInt(990)))

	require.Len(t, ov.Lines, 2)
	// 800/1100 and 300/1100 of the 110 discount.
	assert.True(t, ov.Lines[0].Discount.Equal(decimal.NewFromInt(80)), "share %s", ov.Lines[0].Discount)
	assert.True(t, ov.Lines[1].Discount.Equal(decimal.NewFromInt(30)), "share %s", ov.Lines[1].Discount)
	assert.Equal(t, "Trail Runner", ov.Lines[0].ProductName)
}

func TestListUserOrdersRetiredProductFallsBack(t *testing.T) {
	views, orders, _ := newViewsFixture(t)
	require.NoError(t, orders.Create(context.Background(), &Order{
		ID:     "o-1",
		UserID: "u-1",
		Items: []OrderItem{
			{ID: "i-1", ProductID: "p-gone", Quantity: 1, Price: decimal.NewFromInt(250), Status: StatusDelivered},
		},
		Status:    StatusDelivered,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}))

	got, err := views.ListUserOrders(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Lines, 1)
	assert.True(t, got[0].Lines[0].UnitPrice.Equal(decimal.NewFromInt(250)))
	assert.Empty(t, got[0].Lines[0].ProductName)
}

func TestListOrdersPaginates(t *testing.T) {
	views, orders, offers := newViewsFixture(t)
	offers.category["footwear"] = decimal.NewFromInt(10)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 23; i++ {
		require.NoError(t, orders.Create(context.Background(), &Order{
			ID:     fmt.Sprintf("o-%02d", i),
			UserID: "u-1",
			Items: []OrderItem{
				{ID: fmt.Sprintf("i-%02d", i), ProductID: "p-1", Quantity: 1, Price: decimal.NewFromInt(400), Status: StatusProcessing},
			},
			Status:    StatusProcessing,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page1, pages, err := views.ListOrders(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	require.Len(t, page1, AdminPageSize)
	// Newest first.
	assert.Equal(t, "o-22", page1[0].ID)
	assert.Equal(t, "Asha", page1[0].BuyerName)
	// Unit price reflects the current footwear offer.
	assert.True(t, page1[0].Lines[0].UnitPrice.Equal(decimal.NewFromInt(360)))

	page3, _, err := views.ListOrders(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, page3, 3)

	empty, _, err := views.ListOrders(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
