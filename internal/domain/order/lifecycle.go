package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/coupon"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/wallet"
)

// LifecycleService drives per-item state changes after an order is placed:
// return requests, return approvals, cancellations and admin status
// overrides. Cancellations and approved returns refund the item's current
// resolved price to the buyer's wallet and restore inventory.
type LifecycleService struct {
	orders   Repository
	products catalog.Repository
	coupons  coupon.Repository
	wallets  *wallet.Service
	resolver *pricing.Resolver
}

func NewLifecycleService(
	orders Repository,
	products catalog.Repository,
	coupons coupon.Repository,
	wallets *wallet.Service,
	resolver *pricing.Resolver,
) *LifecycleService {
	return &LifecycleService{
		orders:   orders,
		products: products,
		coupons:  coupons,
		wallets:  wallets,
		resolver: resolver,
	}
}

// RequestReturn moves a delivered item to Pending Return and records the
// buyer's reason. The refund happens only when an admin approves the return.
func (s *LifecycleService) RequestReturn(ctx context.Context, orderID, itemID, reason string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	item, err := o.ItemByID(itemID)
	if err != nil {
		return err
	}
	next, err := Transition(item.Status, ActionRequestReturn)
	if err != nil {
		return err
	}
	item.Status = next
	item.ReturnReason = reason
	o.HasRequest = true
	return s.orders.Update(ctx, o)
}

// ApproveReturn finalizes a pending return: the item moves to Returned, the
// buyer's wallet is credited with the item's current resolved price (the
// order's coupon competes with offers) and the stock comes back. Returns the
// refunded amount.
func (s *LifecycleService) ApproveReturn(ctx context.Context, orderID, productID string) (decimal.Decimal, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	item, err := o.ItemByProduct(productID)
	if err != nil {
		return decimal.Zero, err
	}
	next, err := Transition(item.Status, ActionApproveReturn)
	if err != nil {
		return decimal.Zero, err
	}

	couponPct, err := coupon.LookupPct(ctx, s.coupons, o.CouponCode)
	if err != nil {
		return decimal.Zero, err
	}
	refund, err := s.itemRefund(ctx, item, couponPct)
	if err != nil {
		return decimal.Zero, err
	}

	item.Status = next
	s.recomputeAggregate(o)
	if err := s.orders.Update(ctx, o); err != nil {
		return decimal.Zero, err
	}
	if _, err := s.wallets.Credit(ctx, o.UserID, refund, wallet.MethodRefund); err != nil {
		return decimal.Zero, errors.Wrap(err, "refund to wallet")
	}
	if err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
		return decimal.Zero, errors.Wrapf(err, "restore stock for %s", item.ProductID)
	}
	return refund, nil
}

// CancelItem cancels a processing or shipped item, refunds its current
// resolved price to the buyer's wallet immediately and restores stock.
// Returns the refunded amount.
func (s *LifecycleService) CancelItem(ctx context.Context, orderID, itemID, productID, reason string) (decimal.Decimal, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	item, err := o.ItemByID(itemID)
	if err != nil {
		return decimal.Zero, err
	}
	if item.ProductID != productID {
		return decimal.Zero, ErrItemNotFound
	}
	next, err := Transition(item.Status, ActionCancel)
	if err != nil {
		return decimal.Zero, err
	}

	refund, err := s.itemRefund(ctx, item, decimal.Zero)
	if err != nil {
		return decimal.Zero, err
	}

	item.Status = next
	item.CancelReason = reason
	s.recomputeAggregate(o)
	if err := s.orders.Update(ctx, o); err != nil {
		return decimal.Zero, err
	}
	if err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
		return decimal.Zero, errors.Wrapf(err, "restore stock for %s", item.ProductID)
	}
	if _, err := s.wallets.Credit(ctx, o.UserID, refund, wallet.MethodRefund); err != nil {
		return decimal.Zero, errors.Wrap(err, "refund to wallet")
	}
	return refund, nil
}

// itemRefund prices the item at its current resolved unit price times
// quantity, rounded to the stored precision.
func (s *LifecycleService) itemRefund(ctx context.Context, item *OrderItem, couponPct decimal.Decimal) (decimal.Decimal, error) {
	p, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "load product %s", item.ProductID)
	}
	q, err := s.resolver.Resolve(ctx, *p, couponPct)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "price product %s", item.ProductID)
	}
	return q.Final.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2), nil
}

// SetItemStatus is the admin override for a single item. It is not bound by
// the customer transition table.
func (s *LifecycleService) SetItemStatus(ctx context.Context, orderID, productID string, st Status) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	item, err := o.ItemByProduct(productID)
	if err != nil {
		return err
	}
	item.Status = st
	return s.orders.Update(ctx, o)
}

// SetOrderStatus is the admin override for a whole order: the aggregate
// status and every item move together.
func (s *LifecycleService) SetOrderStatus(ctx context.Context, orderID string, st Status) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	o.Status = st
	for i := range o.Items {
		o.Items[i].Status = st
	}
	return s.orders.Update(ctx, o)
}

// recomputeAggregate derives the order-level status from its items: all
// cancelled makes the order Cancelled, all returned makes it Returned, and a
// mixed order keeps its status but carries the hasRequest flag.
func (s *LifecycleService) recomputeAggregate(o *Order) {
	allCancelled, allReturned := len(o.Items) > 0, len(o.Items) > 0
	anyTerminalOrPending := false
	for _, it := range o.Items {
		if it.Status != StatusCancelled {
			allCancelled = false
		}
		if it.Status != StatusReturned {
			allReturned = false
		}
		switch it.Status {
		case StatusCancelled, StatusReturned, StatusPendingReturn:
			anyTerminalOrPending = true
		}
	}
	switch {
	case allCancelled:
		o.Status = StatusCancelled
	case allReturned:
		o.Status = StatusReturned
	case anyTerminalOrPending:
		o.HasRequest = true
	}
}
