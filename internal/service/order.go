package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhiya-foods/orderboard/internal/menu"
	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/store"
)

const maxOrderIDRetries = 3

// ErrOrderIDExhausted is returned when every drawn id collided with an
// existing order. It wraps store.ErrStoreUnavailable so callers treat it as
// retryable.
var ErrOrderIDExhausted = fmt.Errorf("no free order id after %d attempts: %w", maxOrderIDRetries, store.ErrStoreUnavailable)

// OrderService places orders: build, then append with duplicate-id retry.
type OrderService struct {
	store   store.OrderStore
	builder *order.Builder
}

// NewOrderService creates a new OrderService.
func NewOrderService(s store.OrderStore, builder *order.Builder) *OrderService {
	return &OrderService{store: s, builder: builder}
}

// PlaceOrder validates the selections against the session's catalog and
// appends the resulting Queued record. Validation failures return before the
// store is touched. A duplicate id is redrawn up to maxOrderIDRetries times.
func (s *OrderService) PlaceOrder(ctx context.Context, sess *Session, selections []order.Selection) (order.Record, error) {
	if sess == nil || sess.Catalog == nil {
		return order.Record{}, fmt.Errorf("%w: no active session", menu.ErrCatalogUnavailable)
	}

	rec, err := s.builder.Build(selections, sess.Catalog)
	if err != nil {
		return order.Record{}, err
	}

	// Retry loop: the generator does not guarantee uniqueness.
	for attempt := 0; attempt < maxOrderIDRetries; attempt++ {
		if attempt > 0 {
			id, err := s.builder.NextID()
			if err != nil {
				return order.Record{}, fmt.Errorf("draw order id: %w", err)
			}
			rec = rec.WithID(id)
		}

		err := s.store.Append(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, store.ErrDuplicateOrderID) {
			return order.Record{}, err
		}
	}
	return order.Record{}, ErrOrderIDExhausted
}
