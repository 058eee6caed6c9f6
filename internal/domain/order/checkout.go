package order

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/cart"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/coupon"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/wallet"
)

var (
	// ErrEmptyCart is returned when checkout finds no purchasable items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrMissingAddress is returned when the shipping address is incomplete.
	ErrMissingAddress = errors.New("incomplete shipping address")
	// ErrInvalidPaymentMethod is returned for an unsupported payment method.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// PaymentGateway creates payment intents with an external provider. The
// returned reference is stored on the order for later verification.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency, receipt string) (string, error)
}

// CheckoutService converts a user's cart into an order.
type CheckoutService struct {
	orders   Repository
	carts    cart.Repository
	products catalog.Repository
	coupons  *coupon.Applier
	wallets  *wallet.Service
	gateway  PaymentGateway
	resolver *pricing.Resolver
	currency string
	now      func() time.Time
}

// NewCheckoutService wires a CheckoutService from its dependencies. currency
// is the ISO code passed to the payment gateway.
func NewCheckoutService(
	orders Repository,
	carts cart.Repository,
	products catalog.Repository,
	coupons *coupon.Applier,
	wallets *wallet.Service,
	gateway PaymentGateway,
	resolver *pricing.Resolver,
	currency string,
) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		carts:    carts,
		products: products,
		coupons:  coupons,
		wallets:  wallets,
		gateway:  gateway,
		resolver: resolver,
		currency: currency,
		now:      time.Now,
	}
}

// PlaceOrderRequest carries the checkout input for one user.
type PlaceOrderRequest struct {
	UserID        string
	Address       Address
	PaymentMethod PaymentMethod
	CouponCode    string
}

// PlaceOrderResult reports the created order and the amounts involved.
// Payable is the amount after coupon discount, which is what the order
// records and what the gateway or wallet is charged.
type PlaceOrderResult struct {
	Order       *Order
	Total       decimal.Decimal
	Payable     decimal.Decimal
	CartCleared bool
}

// PlaceOrder validates the request, prices the cart at base catalog prices,
// applies an optional coupon and dispatches on the payment method. Gateway
// orders are created in Pending status and keep the cart intact until the
// payment outcome is known; cash-on-delivery and wallet orders start
// Processing and clear the cart immediately. Stock is decremented for every
// placed order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if !req.Address.Complete() {
		return nil, ErrMissingAddress
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	c, err := s.carts.Get(ctx, req.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	items, total, err := s.priceCart(ctx, c.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	payable := total
	if req.CouponCode != "" {
		payable, _, err = s.coupons.Apply(ctx, req.CouponCode, total)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	o := &Order{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Items:         items,
		TotalAmount:   payable.Round(2),
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
		OrderDate:     now,
		CreatedAt:     now,
	}

	result := &PlaceOrderResult{Order: o, Total: total, Payable: o.TotalAmount}

	switch req.PaymentMethod {
	case PaymentRazorpay:
		receipt := "receipt_order_" + strconv.FormatInt(now.UnixMilli(), 10)
		intent, err := s.gateway.CreateIntent(ctx, o.TotalAmount, s.currency, receipt)
		if err != nil {
			return nil, errors.Wrap(err, "create payment intent")
		}
		o.GatewayOrderID = intent
		s.setStatus(o, StatusPending)
	case PaymentWallet:
		if _, err := s.wallets.Debit(ctx, req.UserID, o.TotalAmount, wallet.MethodPurchase); err != nil {
			return nil, err
		}
		s.setStatus(o, StatusProcessing)
	case PaymentCOD:
		s.setStatus(o, StatusProcessing)
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// The gateway flow keeps the cart so a failed payment can be
	// reconciled against it.
	if req.PaymentMethod != PaymentRazorpay {
		if err := s.carts.Clear(ctx, req.UserID); err != nil {
			return nil, errors.Wrap(err, "clear cart")
		}
		result.CartCleared = true
	}

	for _, it := range o.Items {
		if err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			return nil, errors.Wrapf(err, "decrement stock for %s", it.ProductID)
		}
	}

	return result, nil
}

// priceCart resolves cart lines against the catalog, silently dropping lines
// whose product no longer exists, and totals them at base catalog prices.
func (s *CheckoutService) priceCart(ctx context.Context, lines []cart.Item) ([]OrderItem, decimal.Decimal, error) {
	items := make([]OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, decimal.Zero, errors.Wrapf(err, "load product %s", line.ProductID)
		}
		items = append(items, OrderItem{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return items, total, nil
}

func (s *CheckoutService) setStatus(o *Order, st Status) {
	o.Status = st
	for i := range o.Items {
		o.Items[i].Status = st
	}
}

// PreviewLine is one cart line priced with current offers for display before
// checkout.
type PreviewLine struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Preview prices the user's cart with current offers applied, without
// touching stock, coupons or payment. Lines whose product no longer exists
// are omitted.
func (s *CheckoutService) Preview(ctx context.Context, userID string) ([]PreviewLine, decimal.Decimal, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, errors.Wrap(err, "load cart")
	}
	lines := make([]PreviewLine, 0, len(c.Items))
	total := decimal.Zero
	for _, line := range c.Items {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, decimal.Zero, errors.Wrapf(err, "load product %s", line.ProductID)
		}
		q, err := s.resolver.Resolve(ctx, *p, decimal.Zero)
		if err != nil {
			return nil, decimal.Zero, errors.Wrapf(err, "price product %s", p.ID)
		}
		lt := q.Final.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		lines = append(lines, PreviewLine{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			UnitPrice: q.Final.Round(2),
			LineTotal: lt,
		})
		total = total.Add(lt)
	}
	return lines, total.Round(2), nil
}
