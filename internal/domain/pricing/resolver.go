package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
)

var hundred = decimal.NewFromInt(100)

// Quote is the result of resolving a product's price. UnitDiscount is the
// absolute per-unit reduction from the base price, so callers that report
// discounts and callers that charge final prices stay consistent by
// construction.
type Quote struct {
	Base         decimal.Decimal
	Final        decimal.Decimal
	UnitDiscount decimal.Decimal
}

// Resolver computes discounted unit prices. Offers never stack: the deepest
// single discount wins, including a coupon percentage when one applies to the
// order.
type Resolver struct {
	offers OfferRepository
}

// NewResolver creates a Resolver backed by the given offer repository.
func NewResolver(offers OfferRepository) *Resolver {
	return &Resolver{offers: offers}
}

// Resolve computes the effective unit price for the product. couponPct is the
// order-level coupon percentage, or zero when no coupon applies. Each candidate
// discount is applied to the base price and the minimum result wins; a product
// with no offers and no coupon keeps its catalog price unchanged.
//
// Intermediate values are kept at full precision; rounding to 2 decimal places
// happens at presentation boundaries only.
func (r *Resolver) Resolve(ctx context.Context, p catalog.Product, couponPct decimal.Decimal) (Quote, error) {
	return r.resolveBase(ctx, p.ID, p.Category, p.Price, couponPct)
}

// ResolveAt is Resolve with an explicit base price, for callers pricing a
// snapshotted order item rather than the current catalog entry.
func (r *Resolver) ResolveAt(ctx context.Context, p catalog.Product, base, couponPct decimal.Decimal) (Quote, error) {
	return r.resolveBase(ctx, p.ID, p.Category, base, couponPct)
}

func (r *Resolver) resolveBase(ctx context.Context, productID, category string, base, couponPct decimal.Decimal) (Quote, error) {
	best := base

	productOffer, err := r.offers.FindProductOffer(ctx, productID)
	if err != nil {
		return Quote{}, errors.Wrapf(err, "lookup product offer for %s", productID)
	}
	if productOffer != nil {
		best = decimal.Min(best, discounted(base, productOffer.DiscountPct))
	}

	categoryOffer, err := r.offers.FindCategoryOffer(ctx, category)
	if err != nil {
		return Quote{}, errors.Wrapf(err, "lookup category offer for %s", category)
	}
	if categoryOffer != nil {
		best = decimal.Min(best, discounted(base, categoryOffer.DiscountPct))
	}

	if couponPct.IsPositive() {
		best = decimal.Min(best, discounted(base, couponPct))
	}

	return Quote{
		Base:         base,
		Final:        best,
		UnitDiscount: base.Sub(best),
	}, nil
}

// discounted applies pct percent off base.
func discounted(base, pct decimal.Decimal) decimal.Decimal {
	return base.Sub(base.Mul(pct).Div(hundred))
}
