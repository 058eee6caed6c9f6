package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
)

const (
	findProductOfferSQL = `SELECT product_id, discount_pct
		FROM product_offers WHERE product_id = $1`

	findCategoryOfferSQL = `SELECT category, discount_pct
		FROM category_offers WHERE category = $1`

	upsertProductOfferSQL = `INSERT INTO product_offers (product_id, discount_pct)
		VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE SET discount_pct = EXCLUDED.discount_pct`

	upsertCategoryOfferSQL = `INSERT INTO category_offers (category, discount_pct)
		VALUES ($1, $2)
		ON CONFLICT (category) DO UPDATE SET discount_pct = EXCLUDED.discount_pct`
)

var _ pricing.OfferRepository = (*OfferRepository)(nil)

// OfferRepository implements pricing.OfferRepository backed by PostgreSQL.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// FindProductOffer returns the offer for a product, or (nil, nil) when the
// product has none.
func (r *OfferRepository) FindProductOffer(ctx context.Context, productID string) (*pricing.ProductOffer, error) {
	rows, err := r.pool.Query(ctx, findProductOfferSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("finding product offer %q: %w", productID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (pricing.ProductOffer, error) {
		var o pricing.ProductOffer
		err := row.Scan(&o.ProductID, &o.DiscountPct)
		return o, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding product offer %q: %w", productID, err)
	}
	return &o, nil
}

// FindCategoryOffer returns the offer for a category, or (nil, nil) when the
// category has none.
func (r *OfferRepository) FindCategoryOffer(ctx context.Context, category string) (*pricing.CategoryOffer, error) {
	rows, err := r.pool.Query(ctx, findCategoryOfferSQL, category)
	if err != nil {
		return nil, fmt.Errorf("finding category offer %q: %w", category, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (pricing.CategoryOffer, error) {
		var o pricing.CategoryOffer
		err := row.Scan(&o.Category, &o.DiscountPct)
		return o, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding category offer %q: %w", category, err)
	}
	return &o, nil
}

// UpsertProductOffer inserts or replaces a product offer. Used by seeding.
func (r *OfferRepository) UpsertProductOffer(ctx context.Context, o *pricing.ProductOffer) error {
	_, err := r.pool.Exec(ctx, upsertProductOfferSQL, o.ProductID, o.DiscountPct)
	if err != nil {
		return fmt.Errorf("upserting product offer %q: %w", o.ProductID, err)
	}
	return nil
}

// UpsertCategoryOffer inserts or replaces a category offer. Used by seeding.
func (r *OfferRepository) UpsertCategoryOffer(ctx context.Context, o *pricing.CategoryOffer) error {
	_, err := r.pool.Exec(ctx, upsertCategoryOfferSQL, o.Category, o.DiscountPct)
	if err != nil {
		return fmt.Errorf("upserting category offer %q: %w", o.Category, err)
	}
	return nil
}
