// Package pricing resolves the effective unit price of a product from its
// standing product/category offers and an optional order-level coupon
// percentage. Every workflow that needs a discounted price (checkout preview,
// order views, refunds, sales reporting) delegates here so the discount math
// lives in exactly one place.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductOffer is a standing percentage discount attached to one product.
type ProductOffer struct {
	ProductID   string
	DiscountPct decimal.Decimal
}

// CategoryOffer is a standing percentage discount attached to a category.
type CategoryOffer struct {
	Category    string
	DiscountPct decimal.Decimal
}

// OfferRepository provides offer lookups. Both methods return (nil, nil) when
// no offer exists; absence of an offer is the normal case, not an error.
type OfferRepository interface {
	FindProductOffer(ctx context.Context, productID string) (*ProductOffer, error)
	FindCategoryOffer(ctx context.Context, category string) (*CategoryOffer, error)
}
