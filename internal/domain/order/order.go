// Package order implements order placement (checkout) and the per-item order
// lifecycle: returns, cancellations, refunds and aggregate status upkeep.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrItemNotFound is returned when an order has no matching line item.
	ErrItemNotFound = errors.New("item not found in order")
)

// PaymentMethod identifies how an order is (to be) paid.
type PaymentMethod string

const (
	PaymentRazorpay PaymentMethod = "Razorpay"
	PaymentCOD      PaymentMethod = "Cash on Delivery"
	PaymentWallet   PaymentMethod = "Wallet"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentRazorpay, PaymentCOD, PaymentWallet:
		return true
	}
	return false
}

// Address is the shipping address snapshot stored on the order.
type Address struct {
	State      string `json:"state"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// Complete reports whether all four address fields are present.
func (a Address) Complete() bool {
	return a.State != "" && a.Address != "" && a.City != "" && a.PostalCode != ""
}

// OrderItem is one line of an order. Price is the catalog unit price
// snapshotted at order time; later price resolution for views and refunds
// happens against current offers.
type OrderItem struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"productPrice"`
	Status       Status          `json:"status"`
	CancelReason string          `json:"cancelReason,omitempty"`
	ReturnReason string          `json:"returnReason,omitempty"`
}

// Order is a placed customer order with its embedded line items.
type Order struct {
	ID             string
	UserID         string
	Items          []OrderItem
	TotalAmount    decimal.Decimal
	Address        Address
	PaymentMethod  PaymentMethod
	GatewayOrderID string
	PaymentID      string
	CouponCode     string
	Status         Status
	HasRequest     bool
	OrderDate      time.Time
	CreatedAt      time.Time
}

// ItemByID returns the line item with the given item id, or ErrItemNotFound.
func (o *Order) ItemByID(itemID string) (*OrderItem, error) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], nil
		}
	}
	return nil, ErrItemNotFound
}

// ItemByProduct returns the line item referencing the given product, or
// ErrItemNotFound. Orders carry at most one line per product.
func (o *Order) ItemByProduct(productID string) (*OrderItem, error) {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i], nil
		}
	}
	return nil, ErrItemNotFound
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// List returns one page of all orders, newest first, plus the total count.
	List(ctx context.Context, offset, limit int) ([]Order, int, error)
	// ListInRange returns orders created within [start, end] whose aggregate
	// status is not in the excluded set, newest first.
	ListInRange(ctx context.Context, start, end time.Time, exclude []Status) ([]Order, error)
}
