package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JYOTHISHTM/FOXHUB/internal/domain/order"
)

const (
	orderColumns = `id, user_id, items, total_amount, address, payment_method,
		gateway_order_id, payment_id, coupon_code, status, has_request, order_date, created_at`

	createOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	updateOrderSQL = `UPDATE orders
		SET items = $2, total_amount = $3, payment_id = $4, status = $5, has_request = $6
		WHERE id = $1`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	findOrderByGatewaySQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE gateway_order_id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	countOrdersSQL = `SELECT count(*) FROM orders`

	listOrdersInRangeSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE created_at >= $1 AND created_at <= $2 AND NOT (status = ANY($3))
		ORDER BY created_at DESC`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items and the address snapshot are serialized into JSONB columns so the
// order document stays self-contained.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, addressJSON, err := marshalOrder(o)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, itemsJSON, o.TotalAmount, addressJSON, string(o.PaymentMethod),
		o.GatewayOrderID, o.PaymentID, o.CouponCode, string(o.Status), o.HasRequest,
		o.OrderDate, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// Update rewrites the mutable parts of an order: items, total, payment
// reference, status and the request flag.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		o.ID, itemsJSON, o.TotalAmount, o.PaymentID, string(o.Status), o.HasRequest,
	)
	if err != nil {
		return fmt.Errorf("updating order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return r.getOne(ctx, getOrderByIDSQL, id)
}

// FindByGatewayOrderID returns the order holding the given gateway intent
// reference.
func (r *OrderRepository) FindByGatewayOrderID(ctx context.Context, ref string) (*order.Order, error) {
	return r.getOne(ctx, findOrderByGatewaySQL, ref)
}

func (r *OrderRepository) getOne(ctx context.Context, sql, arg string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", arg, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", arg, err)
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// List returns one page of all orders, newest first, plus the total count.
func (r *OrderRepository) List(ctx context.Context, offset, limit int) ([]order.Order, int, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countOrdersSQL).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}
	return orders, total, nil
}

// ListInRange returns orders created within [start, end] whose status is not
// in the excluded set, newest first.
func (r *OrderRepository) ListInRange(ctx context.Context, start, end time.Time, exclude []order.Status) ([]order.Order, error) {
	excluded := make([]string, len(exclude))
	for i, st := range exclude {
		excluded[i] = string(st)
	}
	rows, err := r.pool.Query(ctx, listOrdersInRangeSQL, start, end, excluded)
	if err != nil {
		return nil, fmt.Errorf("listing orders in range: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func marshalOrder(o *order.Order) (items, address []byte, err error) {
	items, err = json.Marshal(o.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling order items: %w", err)
	}
	address, err = json.Marshal(o.Address)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling order address: %w", err)
	}
	return items, address, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                     order.Order
		itemsRaw, addressRaw  []byte
		paymentMethod, status string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsRaw, &o.TotalAmount, &addressRaw, &paymentMethod,
		&o.GatewayOrderID, &o.PaymentID, &o.CouponCode, &status, &o.HasRequest,
		&o.OrderDate, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(addressRaw, &o.Address); err != nil {
		return o, fmt.Errorf("unmarshaling order address: %w", err)
	}
	o.PaymentMethod = order.PaymentMethod(paymentMethod)
	o.Status = order.Status(status)
	return o, nil
}
