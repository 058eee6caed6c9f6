package coupon

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidCoupon is returned when a coupon code is not found, inactive, or
// the order total falls outside the coupon's eligible range.
var ErrInvalidCoupon = errors.New("invalid coupon code")

// Coupon is a code-activated percentage discount with an eligible order-total
// range. A MaxAmount of zero means no upper bound.
type Coupon struct {
	Code        string
	DiscountPct decimal.Decimal
	MinAmount   decimal.Decimal
	MaxAmount   decimal.Decimal
	Active      bool
}

// Eligible reports whether the given order total falls inside the coupon's
// applicable range.
func (c *Coupon) Eligible(orderTotal decimal.Decimal) bool {
	if orderTotal.LessThan(c.MinAmount) {
		return false
	}
	if c.MaxAmount.IsPositive() && orderTotal.GreaterThan(c.MaxAmount) {
		return false
	}
	return true
}

// Repository provides coupon lookups by code. FindByCode returns
// ErrInvalidCoupon when no active coupon matches.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}
