package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/cart"
)

const (
	getCartSQL = `SELECT items FROM carts WHERE user_id = $1`

	clearCartSQL = `UPDATE carts SET items = '[]', updated_at = now() WHERE user_id = $1`

	setCartItemsSQL = `INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Cart items
// live in a JSONB column, one row per user.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the user's cart. A user without a cart row gets an empty cart.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	rows, err := r.pool.Query(ctx, getCartSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("getting cart for %q: %w", userID, err)
	}

	raw, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) ([]byte, error) {
		var b []byte
		err := row.Scan(&b)
		return b, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &cart.Cart{UserID: userID}, nil
		}
		return nil, fmt.Errorf("getting cart for %q: %w", userID, err)
	}

	c := &cart.Cart{UserID: userID}
	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling cart items for %q: %w", userID, err)
	}
	return c, nil
}

// Clear empties the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, clearCartSQL, userID)
	if err != nil {
		return fmt.Errorf("clearing cart for %q: %w", userID, err)
	}
	return nil
}

// SetItems replaces the user's cart contents. Used by seeding and tests.
func (r *CartRepository) SetItems(ctx context.Context, userID string, items []cart.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling cart items: %w", err)
	}
	_, err = r.pool.Exec(ctx, setCartItemsSQL, userID, raw)
	if err != nil {
		return fmt.Errorf("setting cart for %q: %w", userID, err)
	}
	return nil
}
