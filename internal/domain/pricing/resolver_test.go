package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
)

type mockOfferRepo struct {
	productOffers  map[string]decimal.Decimal
	categoryOffers map[string]decimal.Decimal
}

func (m *mockOfferRepo) FindProductOffer(_ context.Context, productID string) (*ProductOffer, error) {
	pct, ok := m.productOffers[productID]
	if !ok {
		return nil, nil
	}
	return &ProductOffer{ProductID: productID, DiscountPct: pct}, nil
}

func (m *mockOfferRepo) FindCategoryOffer(_ context.Context, category string) (*CategoryOffer, error) {
	pct, ok := m.categoryOffers[category]
	if !ok {
		return nil, nil
	}
	return &CategoryOffer{Category: category, DiscountPct: pct}, nil
}

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestResolve(t *testing.T) {
	product := catalog.Product{
		ID:       "p1",
		Name:     "Trail Runner Shoes",
		Price:    decimal.NewFromInt(1000),
		Category: "footwear",
	}

	tests := []struct {
		name          string
		productOffers map[string]decimal.Decimal
		categoryOffer map[string]decimal.Decimal
		couponPct     decimal.Decimal
		wantFinal     string
		wantDiscount  string
	}{
		{
			name:         "no offers and no coupon keeps catalog price",
			wantFinal:    "1000",
			wantDiscount: "0",
		},
		{
			name:          "category offer only",
			categoryOffer: map[string]decimal.Decimal{"footwear": pct("10")},
			wantFinal:     "900",
			wantDiscount:  "100",
		},
		{
			name:          "product offer only",
			productOffers: map[string]decimal.Decimal{"p1": pct("20")},
			wantFinal:     "800",
			wantDiscount:  "200",
		},
		{
			name:          "deeper product offer beats category offer",
			productOffers: map[string]decimal.Decimal{"p1": pct("20")},
			categoryOffer: map[string]decimal.Decimal{"footwear": pct("10")},
			wantFinal:     "800",
			wantDiscount:  "200",
		},
		{
			name:          "deeper category offer beats product offer",
			productOffers: map[string]decimal.Decimal{"p1": pct("5")},
			categoryOffer: map[string]decimal.Decimal{"footwear": pct("30")},
			wantFinal:     "700",
			wantDiscount:  "300",
		},
		{
			name:          "shallow coupon loses against offer",
			productOffers: map[string]decimal.Decimal{"p1": pct("20")},
			couponPct:     pct("10"),
			wantFinal:     "800",
			wantDiscount:  "200",
		},
		{
			name:          "deep coupon wins against offer",
			productOffers: map[string]decimal.Decimal{"p1": pct("20")},
			couponPct:     pct("40"),
			wantFinal:     "600",
			wantDiscount:  "400",
		},
		{
			name:         "coupon alone applies to base",
			couponPct:    pct("25"),
			wantFinal:    "750",
			wantDiscount: "250",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&mockOfferRepo{
				productOffers:  tt.productOffers,
				categoryOffers: tt.categoryOffer,
			})

			q, err := r.Resolve(context.Background(), product, tt.couponPct)
			require.NoError(t, err)

			assert.True(t, pct(tt.wantFinal).Equal(q.Final),
				"expected final %s, got %s", tt.wantFinal, q.Final)
			assert.True(t, pct(tt.wantDiscount).Equal(q.UnitDiscount),
				"expected discount %s, got %s", tt.wantDiscount, q.UnitDiscount)
			assert.True(t, product.Price.Equal(q.Base))
		})
	}
}

func TestResolveAt_UsesSnapshotBase(t *testing.T) {
	product := catalog.Product{
		ID:       "p1",
		Price:    decimal.NewFromInt(1200), // catalog price has moved since order time
		Category: "footwear",
	}
	r := NewResolver(&mockOfferRepo{
		categoryOffers: map[string]decimal.Decimal{"footwear": pct("10")},
	})

	q, err := r.ResolveAt(context.Background(), product, decimal.NewFromInt(1000), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, pct("900").Equal(q.Final), "got %s", q.Final)
}

func TestResolve_NeverRaisesPrice(t *testing.T) {
	product := catalog.Product{ID: "p1", Price: decimal.NewFromInt(100), Category: "c"}
	r := NewResolver(&mockOfferRepo{
		productOffers:  map[string]decimal.Decimal{"p1": pct("0")},
		categoryOffers: map[string]decimal.Decimal{"c": pct("0")},
	})

	q, err := r.Resolve(context.Background(), product, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, q.Final.Equal(product.Price))
}
