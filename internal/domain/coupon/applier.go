package coupon

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Applier applies a coupon code to an order total. It is the internal module
// boundary the checkout flow calls directly; there is no network hop involved.
type Applier struct {
	repo Repository
}

// NewApplier creates an Applier backed by the given Repository.
func NewApplier(repo Repository) *Applier {
	return &Applier{repo: repo}
}

// Apply resolves the code and returns the discounted order total together with
// the matched coupon. It returns ErrInvalidCoupon when the code does not
// resolve or the total is outside the coupon's eligible range; the caller is
// expected to abort the operation in that case.
func (a *Applier) Apply(ctx context.Context, code string, orderTotal decimal.Decimal) (decimal.Decimal, *Coupon, error) {
	c, err := a.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return decimal.Zero, nil, ErrInvalidCoupon
		}
		return decimal.Zero, nil, errors.Wrap(err, "lookup coupon")
	}

	if !c.Eligible(orderTotal) {
		return decimal.Zero, nil, ErrInvalidCoupon
	}

	discounted := orderTotal.Sub(orderTotal.Mul(c.DiscountPct).Div(hundred))
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	return discounted, c, nil
}

// LookupPct resolves the code and returns its discount percentage, or zero
// when the code is empty or does not resolve. Unresolvable codes stored on
// historical orders are silently ignored rather than failing the caller.
func LookupPct(ctx context.Context, repo Repository, code string) (decimal.Decimal, error) {
	if code == "" {
		return decimal.Zero, nil
	}
	c, err := repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return decimal.Zero, nil
		}
		return decimal.Zero, errors.Wrap(err, "lookup coupon")
	}
	return c.DiscountPct, nil
}
