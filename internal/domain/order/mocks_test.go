package order

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/cart"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/coupon"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/user"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/wallet"
)

type memOrders struct {
	byID map[string]*Order
}

func newMemOrders() *memOrders {
	return &memOrders{byID: make(map[string]*Order)}
}

func (m *memOrders) Create(_ context.Context, o *Order) error {
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) Update(_ context.Context, o *Order) error {
	if _, ok := m.byID[o.ID]; !ok {
		return ErrNotFound
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	return &cp, nil
}

func (m *memOrders) FindByGatewayOrderID(_ context.Context, ref string) (*Order, error) {
	for _, o := range m.byID {
		if o.GatewayOrderID == ref {
			cp := *o
			cp.Items = append([]OrderItem(nil), o.Items...)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memOrders) ListByUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *memOrders) List(_ context.Context, offset, limit int) ([]Order, int, error) {
	all := make([]Order, 0, len(m.byID))
	for _, o := range m.byID {
		all = append(all, *o)
	}
	sortNewestFirst(all)
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memOrders) ListInRange(_ context.Context, start, end time.Time, exclude []Status) ([]Order, error) {
	excluded := make(map[Status]bool, len(exclude))
	for _, st := range exclude {
		excluded[st] = true
	}
	var out []Order
	for _, o := range m.byID {
		if o.CreatedAt.Before(start) || o.CreatedAt.After(end) || excluded[o.Status] {
			continue
		}
		out = append(out, *o)
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

type memProducts struct {
	byID map[string]catalog.Product
}

func newMemProducts(products ...catalog.Product) *memProducts {
	m := &memProducts{byID: make(map[string]catalog.Product, len(products))}
	for _, p := range products {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memProducts) List(_ context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) DecrementStock(_ context.Context, id string, qty int) error {
	p, ok := m.byID[id]
	if !ok {
		return catalog.ErrNotFound
	}
	p.Quantity -= qty
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	m.byID[id] = p
	return nil
}

func (m *memProducts) RestoreStock(_ context.Context, id string, qty int) error {
	p, ok := m.byID[id]
	if !ok {
		return catalog.ErrNotFound
	}
	p.Quantity += qty
	m.byID[id] = p
	return nil
}

type memCarts struct {
	byUser  map[string][]cart.Item
	cleared map[string]bool
}

func newMemCarts() *memCarts {
	return &memCarts{
		byUser:  make(map[string][]cart.Item),
		cleared: make(map[string]bool),
	}
}

func (m *memCarts) Get(_ context.Context, userID string) (*cart.Cart, error) {
	return &cart.Cart{
		UserID: userID,
		Items:  append([]cart.Item(nil), m.byUser[userID]...),
	}, nil
}

func (m *memCarts) Clear(_ context.Context, userID string) error {
	delete(m.byUser, userID)
	m.cleared[userID] = true
	return nil
}

type memOffers struct {
	product  map[string]decimal.Decimal
	category map[string]decimal.Decimal
}

func newMemOffers() *memOffers {
	return &memOffers{
		product:  make(map[string]decimal.Decimal),
		category: make(map[string]decimal.Decimal),
	}
}

func (m *memOffers) FindProductOffer(_ context.Context, productID string) (*pricing.ProductOffer, error) {
	pct, ok := m.product[productID]
	if !ok {
		return nil, nil
	}
	return &pricing.ProductOffer{ProductID: productID, DiscountPct: pct}, nil
}

func (m *memOffers) FindCategoryOffer(_ context.Context, category string) (*pricing.CategoryOffer, error) {
	pct, ok := m.category[category]
	if !ok {
		return nil, nil
	}
	return &pricing.CategoryOffer{Category: category, DiscountPct: pct}, nil
}

type memCoupons struct {
	byCode map[string]coupon.Coupon
}

func newMemCoupons(coupons ...coupon.Coupon) *memCoupons {
	m := &memCoupons{byCode: make(map[string]coupon.Coupon, len(coupons))}
	for _, c := range coupons {
		m.byCode[c.Code] = c
	}
	return m
}

func (m *memCoupons) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	c, ok := m.byCode[code]
	if !ok {
		return nil, coupon.ErrInvalidCoupon
	}
	return &c, nil
}

type memWallets struct {
	byUser map[string]*wallet.Wallet
}

func newMemWallets() *memWallets {
	return &memWallets{byUser: make(map[string]*wallet.Wallet)}
}

func (m *memWallets) Find(_ context.Context, userID string) (*wallet.Wallet, error) {
	w, ok := m.byUser[userID]
	if !ok {
		return nil, wallet.ErrNotFound
	}
	cp := *w
	cp.Transactions = append([]wallet.Transaction(nil), w.Transactions...)
	return &cp, nil
}

func (m *memWallets) Save(_ context.Context, w *wallet.Wallet) error {
	cp := *w
	cp.Transactions = append([]wallet.Transaction(nil), w.Transactions...)
	m.byUser[w.UserID] = &cp
	return nil
}

type memUsers struct {
	byID map[string]user.User
}

func newMemUsers(users ...user.User) *memUsers {
	m := &memUsers{byID: make(map[string]user.User, len(users))}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByIDs(_ context.Context, ids []string) ([]user.User, error) {
	out := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubGateway struct {
	intent string
	err    error
	calls  int
}

func (g *stubGateway) CreateIntent(_ context.Context, _ decimal.Decimal, _, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.intent, nil
}
