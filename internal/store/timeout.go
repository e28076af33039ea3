package store

import (
	"context"
	"errors"
	"time"

	"github.com/dhiya-foods/orderboard/internal/order"
)

// WithTimeout bounds every call on s to d. A call that runs out of time is
// reported as ErrStoreUnavailable so the operator retries instead of waiting.
func WithTimeout(s OrderStore, d time.Duration) OrderStore {
	if d <= 0 {
		return s
	}
	return &timeoutStore{next: s, timeout: d}
}

type timeoutStore struct {
	next    OrderStore
	timeout time.Duration
}

func (t *timeoutStore) Append(ctx context.Context, rec order.Record) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return deadline("append", t.next.Append(ctx, rec))
}

func (t *timeoutStore) ListAll(ctx context.Context) ([]order.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	recs, err := t.next.ListAll(ctx)
	return recs, deadline("list", err)
}

func (t *timeoutStore) UpdateStatus(ctx context.Context, id string, to order.Status) (order.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	rec, err := t.next.UpdateStatus(ctx, id, to)
	return rec, deadline("update status", err)
}

// Bootstrap forwards to the wrapped store when it supports it.
func (t *timeoutStore) Bootstrap(ctx context.Context) (bool, error) {
	b, ok := t.next.(Bootstrapper)
	if !ok {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	created, err := b.Bootstrap(ctx)
	return created, deadline("bootstrap", err)
}

func deadline(op string, err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Unavailable(op, err)
	}
	return err
}
