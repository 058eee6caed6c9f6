package cart

import "context"

// Item is a single cart line: a product reference and a quantity.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart holds a user's pending line items. A user without a stored cart is
// treated as having an empty one.
type Cart struct {
	UserID string
	Items  []Item
}

// Repository defines cart persistence. Get returns an empty cart when the
// user has none; Clear removes all items but keeps the cart row.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Clear(ctx context.Context, userID string) error
}
