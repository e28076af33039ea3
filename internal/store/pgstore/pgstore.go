// Package pgstore keeps orders in a PostgreSQL table. Uniqueness of order
// numbers is enforced by the orders_order_no_key constraint, and status
// updates are a compare-and-set on the status the caller validated against.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/store"
)

// DBTX is the subset of pgxpool.Pool / pgx.Tx the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const orderColumns = `order_no, created_date, created_time, created_day, food_items, total, status`

const insertOrder = `INSERT INTO orders (` + orderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const listOrders = `SELECT ` + orderColumns + ` FROM orders ORDER BY id`

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE order_no = $1`

// $3 is the status the transition was validated against; a concurrent
// writer that got there first makes this match zero rows.
const updateOrderStatus = `UPDATE orders SET status = $2, updated_at = now()
WHERE order_no = $1 AND status = $3
RETURNING ` + orderColumns

// Store is a PostgreSQL-backed store.OrderStore.
type Store struct {
	db DBTX
}

// New creates a Store from a pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Append inserts one row. The unique constraint reports duplicates; no
// read-before-write is needed.
func (s *Store) Append(ctx context.Context, rec order.Record) error {
	if err := order.CheckLines(rec.Lines); err != nil {
		return fmt.Errorf("append %s: %w", rec.ID, err)
	}
	_, err := s.db.Exec(ctx, insertOrder,
		rec.ID,
		rec.CreatedAt.Date,
		rec.CreatedAt.Time,
		rec.CreatedAt.Day,
		order.FormatLines(rec.Lines),
		decimalToNumeric(rec.Total.Decimal()),
		string(rec.Status),
	)
	if err != nil {
		if isOrderNoConflict(err) {
			return fmt.Errorf("append %s: %w", rec.ID, store.ErrDuplicateOrderID)
		}
		return store.Unavailable("append", err)
	}
	return nil
}

// ListAll returns every order in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]order.Record, error) {
	rows, err := s.db.Query(ctx, listOrders)
	if err != nil {
		return nil, store.Unavailable("list", err)
	}
	defer rows.Close()

	var recs []order.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable("list", err)
	}
	return recs, nil
}

// UpdateStatus validates the transition against the current row, then
// applies it only if the row still has that status.
func (s *Store) UpdateStatus(ctx context.Context, id string, to order.Status) (order.Record, error) {
	current, err := scanRecord(s.db.QueryRow(ctx, getOrder, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Record{}, fmt.Errorf("update %s: %w", id, store.ErrNotFound)
		}
		return order.Record{}, err
	}

	if err := order.ValidateTransition(current.Status, to); err != nil {
		return order.Record{}, fmt.Errorf("update %s: %w", id, err)
	}

	updated, err := scanRecord(s.db.QueryRow(ctx, updateOrderStatus, id, string(to), string(current.Status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The status changed between our read and write.
			return order.Record{}, fmt.Errorf("update %s: %w: status changed concurrently", id, order.ErrInvalidTransition)
		}
		return order.Record{}, err
	}
	return updated, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "SELECT 1"); err != nil {
		return store.Unavailable("ping", err)
	}
	return nil
}

// scanRecord reads one orders row and decodes it through the shared row
// codec, so status and items are validated the same way as file rows.
func scanRecord(row pgx.Row) (order.Record, error) {
	var (
		orderNo, date, clock, day, items, status string
		total                                    pgtype.Numeric
	)
	if err := row.Scan(&orderNo, &date, &clock, &day, &items, &total, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Record{}, err
		}
		return order.Record{}, store.Unavailable("scan", err)
	}

	cells := make([]string, len(store.Columns))
	cells[store.ColOrderNo] = orderNo
	cells[store.ColDate] = date
	cells[store.ColTime] = clock
	cells[store.ColDay] = day
	cells[store.ColFoodItems] = items
	cells[store.ColTotal] = numericToDecimal(total).String()
	cells[store.ColStatus] = status
	return store.DecodeRow(cells)
}

// isOrderNoConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNoConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_no_key"
	}
	return false
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
