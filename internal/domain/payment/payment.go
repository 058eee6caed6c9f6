// Package payment adapts the external payment gateway: intent creation,
// signed callback verification and reconciliation of failed or abandoned
// payment attempts.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/cart"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/order"
)

// ErrSignatureMismatch is returned when a gateway callback carries a
// signature that does not match the payload.
var ErrSignatureMismatch = errors.New("payment signature mismatch")

// Verifier checks signed gateway callbacks and finalizes paid orders.
type Verifier struct {
	orders order.Repository
	carts  cart.Repository
	secret string
}

func NewVerifier(orders order.Repository, carts cart.Repository, secret string) *Verifier {
	return &Verifier{orders: orders, carts: carts, secret: secret}
}

// Sign computes the callback signature for an intent/payment pair. Exposed
// for tests and for local gateway emulation.
func (v *Verifier) Sign(intentRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(intentRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// Confirm validates the callback signature and, on success, marks the order
// Paid, records the payment reference and clears the buyer's cart. A
// signature mismatch leaves the order untouched.
func (v *Verifier) Confirm(ctx context.Context, intentRef, paymentRef, signature string) (*order.Order, error) {
	expected := v.Sign(intentRef, paymentRef)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrSignatureMismatch
	}

	o, err := v.orders.FindByGatewayOrderID(ctx, intentRef)
	if err != nil {
		return nil, err
	}
	o.Status = order.StatusPaid
	for i := range o.Items {
		o.Items[i].Status = order.StatusPaid
	}
	o.PaymentID = paymentRef
	if err := v.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	if err := v.carts.Clear(ctx, o.UserID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}
	return o, nil
}

// Reconciler settles gateway payment attempts that did not complete
// normally. Order persistence may lag behind the gateway callback, so
// lookups retry with bounded exponential backoff before giving up.
type Reconciler struct {
	orders   order.Repository
	carts    cart.Repository
	products catalog.Repository

	attempts  int
	baseDelay time.Duration
	now       func() time.Time
}

func NewReconciler(orders order.Repository, carts cart.Repository, products catalog.Repository) *Reconciler {
	return &Reconciler{
		orders:    orders,
		carts:     carts,
		products:  products,
		attempts:  3,
		baseDelay: 200 * time.Millisecond,
		now:       time.Now,
	}
}

// HandleFailure marks the order behind a failed payment attempt and all its
// items Payment Failed. When the order cannot be found after retries, a new
// order is synthesized from the user's current cart so the failed attempt is
// still visible to the user and to reporting.
func (r *Reconciler) HandleFailure(ctx context.Context, intentRef, userID string) (*order.Order, error) {
	o, err := r.findWithRetry(ctx, intentRef)
	switch {
	case errors.Is(err, order.ErrNotFound):
		return r.synthesizeFailed(ctx, intentRef, userID)
	case err != nil:
		return nil, err
	}

	o.Status = order.StatusFailed
	for i := range o.Items {
		o.Items[i].Status = order.StatusFailed
	}
	if err := r.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

// HandleAbandoned resets an order whose payment flow was abandoned mid-way
// back to Pending. Abandonment is recoverable, unlike a confirmed failure.
func (r *Reconciler) HandleAbandoned(ctx context.Context, intentRef string) (*order.Order, error) {
	o, err := r.findWithRetry(ctx, intentRef)
	if err != nil {
		return nil, err
	}
	o.Status = order.StatusPending
	for i := range o.Items {
		o.Items[i].Status = order.StatusPending
	}
	if err := r.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

func (r *Reconciler) findWithRetry(ctx context.Context, intentRef string) (*order.Order, error) {
	delay := r.baseDelay
	for attempt := 1; ; attempt++ {
		o, err := r.orders.FindByGatewayOrderID(ctx, intentRef)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, order.ErrNotFound) || attempt >= r.attempts {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// synthesizeFailed records a Payment Failed order from the current cart.
// The cart survives the gateway flow precisely so it is still available
// here.
func (r *Reconciler) synthesizeFailed(ctx context.Context, intentRef, userID string) (*order.Order, error) {
	c, err := r.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	now := r.now()
	o := &order.Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		PaymentMethod:  order.PaymentRazorpay,
		GatewayOrderID: intentRef,
		Status:         order.StatusFailed,
		OrderDate:      now,
		CreatedAt:      now,
	}
	total := decimal.Zero
	for _, line := range c.Items {
		p, err := r.products.GetByID(ctx, line.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "load product %s", line.ProductID)
		}
		o.Items = append(o.Items, order.OrderItem{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Quantity:  line.Quantity,
			Price:     p.Price,
			Status:    order.StatusFailed,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	o.TotalAmount = total.Round(2)

	if err := r.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}
