package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/coupon"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/user"
)

// AdminPageSize is the number of orders per page in the admin listing.
const AdminPageSize = 10

// ItemView is one order line rendered for display with resolved pricing.
type ItemView struct {
	OrderItem
	ProductName string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	Discount decimal.Decimal
	NetTotal    decimal.Decimal
}

// OrderView is an order rendered for display. Subtotal is the sum of line
// totals before coupon, Payable the amount after the coupon discount.
type OrderView struct {
	Order
	BuyerName      string
	Lines          []ItemView
	Subtotal       decimal.Decimal
	TotalDiscount decimal.Decimal
	Payable        decimal.Decimal
}

// Views renders orders for the user history and the admin listing.
type Views struct {
	orders   Repository
	products catalog.Repository
	coupons  coupon.Repository
	users    user.Repository
	resolver *pricing.Resolver
}

func NewViews(
	orders Repository,
	products catalog.Repository,
	coupons coupon.Repository,
	users user.Repository,
	resolver *pricing.Resolver,
) *Views {
	return &Views{
		orders:   orders,
		products: products,
		coupons:  coupons,
		users:    users,
		resolver: resolver,
	}
}

// ListUserOrders renders a user's order history, newest first. Unit prices
// are resolved from the price snapshotted at order time against current
// offers, and the order's coupon discount is apportioned across lines in
// proportion to their totals.
func (v *Views) ListUserOrders(ctx context.Context, userID string) ([]OrderView, error) {
	orders, err := v.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		ov, err := v.renderUserOrder(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *ov)
	}
	return views, nil
}

func (v *Views) renderUserOrder(ctx context.Context, o *Order) (*OrderView, error) {
	ov := &OrderView{Order: *o, Subtotal: decimal.Zero}
	ov.Lines = make([]ItemView, 0, len(o.Items))
	for _, it := range o.Items {
		line := ItemView{OrderItem: it}
		qty := decimal.NewFromInt(int64(it.Quantity))

		p, err := v.products.GetByID(ctx, it.ProductID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			// Product retired since the order: fall back to the snapshot.
			line.UnitPrice = it.Price
		case err != nil:
			return nil, errors.Wrapf(err, "load product %s", it.ProductID)
		default:
			line.ProductName = p.Name
			q, err := v.resolver.ResolveAt(ctx, *p, it.Price, decimal.Zero)
			if err != nil {
				return nil, errors.Wrapf(err, "price product %s", it.ProductID)
			}
			line.UnitPrice = q.Final
		}

		line.UnitPrice = line.UnitPrice.Round(2)
		line.LineTotal = line.UnitPrice.Mul(qty).Round(2)
		ov.Subtotal = ov.Subtotal.Add(line.LineTotal)
		ov.Lines = append(ov.Lines, line)
	}

	discount, err := v.orderDiscount(ctx, o.CouponCode, ov.Subtotal)
	if err != nil {
		return nil, err
	}
	ov.TotalDiscount = discount
	ov.Payable = ov.Subtotal.Sub(discount).Round(2)

	if discount.IsPositive() && ov.Subtotal.IsPositive() {
		for i := range ov.Lines {
			share := ov.Lines[i].LineTotal.Div(ov.Subtotal).Mul(discount).Round(2)
			ov.Lines[i].Discount = share
			ov.Lines[i].NetTotal = ov.Lines[i].LineTotal.Sub(share)
		}
	} else {
		for i := range ov.Lines {
			ov.Lines[i].NetTotal = ov.Lines[i].LineTotal
		}
	}
	return ov, nil
}

// orderDiscount computes the coupon discount on a subtotal, returning zero
// when the code is empty, unknown or out of the coupon's amount range.
func (v *Views) orderDiscount(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if code == "" {
		return decimal.Zero, nil
	}
	c, err := v.coupons.FindByCode(ctx, code)
	if errors.Is(err, coupon.ErrInvalidCoupon) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "lookup coupon")
	}
	if !c.Eligible(subtotal) {
		return decimal.Zero, nil
	}
	return subtotal.Mul(c.DiscountPct).Div(decimal.NewFromInt(100)).Round(2), nil
}

// ListOrders renders one page of all orders for the admin panel, newest
// first, and reports the total page count. Unit prices are resolved against
// current catalog prices with the order's coupon competing per line.
func (v *Views) ListOrders(ctx context.Context, page int) ([]OrderView, int, error) {
	if page < 1 {
		page = 1
	}
	orders, total, err := v.orders.List(ctx, (page-1)*AdminPageSize, AdminPageSize)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	pages := (total + AdminPageSize - 1) / AdminPageSize

	names, err := v.buyerNames(ctx, orders)
	if err != nil {
		return nil, 0, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		ov, err := v.renderAdminOrder(ctx, &orders[i])
		if err != nil {
			return nil, 0, err
		}
		ov.BuyerName = names[orders[i].UserID]
		views = append(views, *ov)
	}
	return views, pages, nil
}

func (v *Views) renderAdminOrder(ctx context.Context, o *Order) (*OrderView, error) {
	couponPct, err := coupon.LookupPct(ctx, v.coupons, o.CouponCode)
	if err != nil {
		return nil, err
	}

	ov := &OrderView{Order: *o, Subtotal: decimal.Zero}
	ov.Lines = make([]ItemView, 0, len(o.Items))
	payable := decimal.Zero
	for _, it := range o.Items {
		line := ItemView{OrderItem: it}
		qty := decimal.NewFromInt(int64(it.Quantity))
		base := it.Price
		final := it.Price

		p, err := v.products.GetByID(ctx, it.ProductID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
		case err != nil:
			return nil, errors.Wrapf(err, "load product %s", it.ProductID)
		default:
			line.ProductName = p.Name
			q, err := v.resolver.Resolve(ctx, *p, couponPct)
			if err != nil {
				return nil, errors.Wrapf(err, "price product %s", it.ProductID)
			}
			base, final = q.Base, q.Final
		}

		line.UnitPrice = final.Round(2)
		line.LineTotal = base.Mul(qty).Round(2)
		line.NetTotal = final.Mul(qty).Round(2)
		line.Discount = line.LineTotal.Sub(line.NetTotal)
		ov.Subtotal = ov.Subtotal.Add(line.LineTotal)
		ov.TotalDiscount = ov.TotalDiscount.Add(line.Discount)
		payable = payable.Add(line.NetTotal)
		ov.Lines = append(ov.Lines, line)
	}
	ov.Payable = payable.Round(2)
	for _, it := range o.Items {
		if it.CancelReason != "" || it.ReturnReason != "" || it.Status == StatusPendingReturn {
			ov.HasRequest = true
			break
		}
	}
	return ov, nil
}

// buyerNames resolves display names for the users referenced by orders.
func (v *Views) buyerNames(ctx context.Context, orders []Order) (map[string]string, error) {
	ids := make([]string, 0, len(orders))
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.UserID]; ok {
			continue
		}
		seen[o.UserID] = struct{}{}
		ids = append(ids, o.UserID)
	}
	users, err := v.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "load users")
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
