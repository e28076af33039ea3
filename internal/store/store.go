// Package store defines the order system of record: the OrderStore contract
// shared by every backing medium, the tabular row codec, and the error
// taxonomy callers map to operator messages.
//
// Every backend re-reads the medium on each call. The medium is assumed
// to be edited by other terminals between calls, so nothing is cached.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhiya-foods/orderboard/internal/order"
)

// Errors returned by order stores.
var (
	ErrDuplicateOrderID = errors.New("duplicate order id")
	ErrStoreUnavailable = errors.New("order store unavailable")
	ErrNotFound         = errors.New("order not found")
	ErrCorruptRow       = errors.New("corrupt order row")
)

// OrderStore is the system of record for orders.
type OrderStore interface {
	// Append persists a new record. Returns ErrDuplicateOrderID if the id is
	// already present, or ErrStoreUnavailable on I/O failure. No partial row
	// is ever left behind.
	Append(ctx context.Context, rec order.Record) error

	// ListAll returns every record in medium order, freshly read.
	ListAll(ctx context.Context) ([]order.Record, error)

	// UpdateStatus moves the record with id to status to. The row is found
	// by id, never by position. Returns ErrNotFound,
	// order.ErrInvalidTransition, or ErrStoreUnavailable.
	UpdateStatus(ctx context.Context, id string, to order.Status) (order.Record, error)
}

// Bootstrapper prepares an empty medium (header row, schema). created is true
// when the medium did not exist and was initialised empty.
type Bootstrapper interface {
	Bootstrap(ctx context.Context) (created bool, err error)
}

// Unavailable wraps err as ErrStoreUnavailable for operation op, keeping the
// cause inspectable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// IsRetryable reports whether the operator should simply retry the action.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// FindByID returns the index of the record with id, or -1.
func FindByID(recs []order.Record, id string) int {
	for i, r := range recs {
		if r.ID == id {
			return i
		}
	}
	return -1
}
