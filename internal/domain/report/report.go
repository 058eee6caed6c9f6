// Package report aggregates sales within a date window into row-level and
// summary statistics, with PDF and spreadsheet export variants.
package report

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/coupon"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/order"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/user"
)

// PageSize is the number of report rows per page in the paginated view.
// Exports always cover the full filtered set.
const PageSize = 10

// RangeKind selects how the report window is anchored.
type RangeKind string

const (
	RangeDay    RangeKind = "day"
	RangeWeek   RangeKind = "week"
	RangeMonth  RangeKind = "month"
	RangeCustom RangeKind = "custom"
)

// Filter selects the orders included in a report. Start and End are only
// consulted for RangeCustom and are widened to whole days.
type Filter struct {
	Kind  RangeKind
	Start time.Time
	End   time.Time
}

// ErrInvalidRange is returned for an unknown range kind or a custom range
// whose end precedes its start.
var ErrInvalidRange = errors.New("invalid report range")

// Row is one order in the report.
type Row struct {
	OrderID       string
	Date          time.Time
	Buyer         string
	Products      string
	Amount        decimal.Decimal
	Discount      decimal.Decimal
	FinalPrice    decimal.Decimal
	PaymentMethod order.PaymentMethod
	Status        order.Status
}

// Summary aggregates the entire filtered set, independent of pagination.
type Summary struct {
	Count    int
	Amount   decimal.Decimal
	Discount decimal.Decimal
	Profit   decimal.Decimal
}

// Report is one page of rows plus the full-set summary.
type Report struct {
	Rows    []Row
	Summary Summary
	Pages   int
	Start   time.Time
	End     time.Time
}

// Excluded orders never contribute to a sales report: not-yet-settled and
// reversed ones.
var excludedStatuses = []order.Status{
	order.StatusCancelled,
	order.StatusReturned,
	order.StatusFailed,
	order.StatusPending,
}

// Builder assembles sales reports from placed orders.
type Builder struct {
	orders   order.Repository
	users    user.Repository
	products catalog.Repository
	coupons  coupon.Repository
	resolver *pricing.Resolver
	now      func() time.Time
}

func NewBuilder(
	orders order.Repository,
	users user.Repository,
	products catalog.Repository,
	coupons coupon.Repository,
	resolver *pricing.Resolver,
) *Builder {
	return &Builder{
		orders:   orders,
		users:    users,
		products: products,
		coupons:  coupons,
		resolver: resolver,
		now:      time.Now,
	}
}

// Build produces one page of the report for the given filter. Page numbers
// start at 1; the summary always covers the whole filtered set.
func (b *Builder) Build(ctx context.Context, f Filter, page int) (*Report, error) {
	rows, summary, start, end, err := b.assemble(ctx, f)
	if err != nil {
		return nil, err
	}

	pages := (len(rows) + PageSize - 1) / PageSize
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PageSize
	switch {
	case offset >= len(rows):
		rows = nil
	case offset+PageSize < len(rows):
		rows = rows[offset : offset+PageSize]
	default:
		rows = rows[offset:]
	}

	return &Report{Rows: rows, Summary: summary, Pages: pages, Start: start, End: end}, nil
}

// BuildAll produces the full unpaginated report, as consumed by the export
// writers.
func (b *Builder) BuildAll(ctx context.Context, f Filter) (*Report, error) {
	rows, summary, start, end, err := b.assemble(ctx, f)
	if err != nil {
		return nil, err
	}
	pages := (len(rows) + PageSize - 1) / PageSize
	return &Report{Rows: rows, Summary: summary, Pages: pages, Start: start, End: end}, nil
}

func (b *Builder) assemble(ctx context.Context, f Filter) ([]Row, Summary, time.Time, time.Time, error) {
	var zero time.Time
	start, end, err := b.resolveRange(f)
	if err != nil {
		return nil, Summary{}, zero, zero, err
	}

	orders, err := b.orders.ListInRange(ctx, start, end, excludedStatuses)
	if err != nil {
		return nil, Summary{}, zero, zero, errors.Wrap(err, "list orders")
	}

	names, err := b.buyerNames(ctx, orders)
	if err != nil {
		return nil, Summary{}, zero, zero, err
	}

	rows := make([]Row, 0, len(orders))
	summary := Summary{
		Amount:   decimal.Zero,
		Discount: decimal.Zero,
		Profit:   decimal.Zero,
	}
	for i := range orders {
		row, err := b.buildRow(ctx, &orders[i], names[orders[i].UserID])
		if err != nil {
			return nil, Summary{}, zero, zero, err
		}
		rows = append(rows, *row)
		summary.Count++
		summary.Amount = summary.Amount.Add(row.Amount)
		summary.Discount = summary.Discount.Add(row.Discount)
	}
	summary.Amount = summary.Amount.Round(2)
	summary.Discount = summary.Discount.Round(2)
	summary.Profit = summary.Amount.Sub(summary.Discount)

	return rows, summary, start, end, nil
}

// buildRow prices one order at current catalog prices: amount is the
// pre-discount subtotal, the discount sums per-item offer discounts plus the
// order's coupon discount taken against the subtotal.
func (b *Builder) buildRow(ctx context.Context, o *order.Order, buyer string) (*Row, error) {
	amount := decimal.Zero
	offerDiscount := decimal.Zero
	names := make([]string, 0, len(o.Items))

	for _, it := range o.Items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		p, err := b.products.GetByID(ctx, it.ProductID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			amount = amount.Add(it.Price.Mul(qty))
			continue
		case err != nil:
			return nil, errors.Wrapf(err, "load product %s", it.ProductID)
		}
		names = append(names, p.Name)

		q, err := b.resolver.Resolve(ctx, *p, decimal.Zero)
		if err != nil {
			return nil, errors.Wrapf(err, "price product %s", it.ProductID)
		}
		amount = amount.Add(q.Base.Mul(qty))
		offerDiscount = offerDiscount.Add(q.UnitDiscount.Mul(qty))
	}

	couponDiscount, err := b.couponDiscount(ctx, o.CouponCode, amount)
	if err != nil {
		return nil, err
	}
	discount := offerDiscount.Add(couponDiscount).Round(2)
	amount = amount.Round(2)

	return &Row{
		OrderID:       o.ID,
		Date:          o.OrderDate,
		Buyer:         buyer,
		Products:      strings.Join(names, ", "),
		Amount:        amount,
		Discount:      discount,
		FinalPrice:    amount.Sub(discount),
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
	}, nil
}

func (b *Builder) couponDiscount(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if code == "" {
		return decimal.Zero, nil
	}
	c, err := b.coupons.FindByCode(ctx, code)
	if errors.Is(err, coupon.ErrInvalidCoupon) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "lookup coupon")
	}
	if !c.Eligible(subtotal) {
		return decimal.Zero, nil
	}
	return subtotal.Mul(c.DiscountPct).Div(decimal.NewFromInt(100)), nil
}

func (b *Builder) buyerNames(ctx context.Context, orders []order.Order) (map[string]string, error) {
	ids := make([]string, 0, len(orders))
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.UserID]; ok {
			continue
		}
		seen[o.UserID] = struct{}{}
		ids = append(ids, o.UserID)
	}
	users, err := b.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "load users")
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// resolveRange converts a filter into inclusive time bounds. Relative kinds
// anchor to the current moment: start of today, week or month through the
// end of the current day.
func (b *Builder) resolveRange(f Filter) (time.Time, time.Time, error) {
	var zero time.Time
	now := b.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := endOfDay(today)

	switch f.Kind {
	case RangeDay, "":
		return today, end, nil
	case RangeWeek:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return start, end, nil
	case RangeMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, end, nil
	case RangeCustom:
		if f.Start.IsZero() || f.End.IsZero() || f.End.Before(f.Start) {
			return zero, zero, ErrInvalidRange
		}
		start := time.Date(f.Start.Year(), f.Start.Month(), f.Start.Day(), 0, 0, 0, 0, f.Start.Location())
		return start, endOfDay(f.End), nil
	}
	return zero, zero, ErrInvalidRange
}

func endOfDay(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.Add(24*time.Hour - time.Nanosecond)
}
