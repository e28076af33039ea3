package service

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/store"
)

// Queue is the kitchen's view of the store: what is still waiting, and the
// two commands that take an order off the queue.
type Queue struct {
	store store.OrderStore
}

// NewQueue creates a new Queue.
func NewQueue(s store.OrderStore) *Queue {
	return &Queue{store: s}
}

// ActiveOrders returns the Queued records in store order.
func (q *Queue) ActiveOrders(ctx context.Context) ([]order.Record, error) {
	all, err := q.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]order.Record, 0, len(all))
	for _, r := range all {
		if r.Status == order.StatusQueued {
			active = append(active, r)
		}
	}
	return active, nil
}

// All returns the full ledger, terminal orders included.
func (q *Queue) All(ctx context.Context) ([]order.Record, error) {
	return q.store.ListAll(ctx)
}

// MarkServed moves a Queued order to Served.
func (q *Queue) MarkServed(ctx context.Context, id string) (order.Record, error) {
	return q.store.UpdateStatus(ctx, id, order.StatusServed)
}

// MarkCancelled moves a Queued order to Cancelled.
func (q *Queue) MarkCancelled(ctx context.Context, id string) (order.Record, error) {
	return q.store.UpdateStatus(ctx, id, order.StatusCancelled)
}

// Poller re-lists the active queue on an interval so changes made by other
// terminals show up without a manual refresh.
type Poller struct {
	Queue    *Queue
	Interval time.Duration
}

// Run polls until ctx is done. fn is called with the first snapshot and then
// only when the set of active ids changes. Poll errors are logged and
// polling continues.
func (p *Poller) Run(ctx context.Context, fn func([]order.Record)) {
	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last   []string
		primed bool
	)
	poll := func() {
		active, err := p.Queue.ActiveOrders(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("ERROR: poll queue: %v", err)
			}
			return
		}
		ids := make([]string, len(active))
		for i, r := range active {
			ids[i] = r.ID
		}
		if primed && slices.Equal(ids, last) {
			return
		}
		last, primed = ids, true
		fn(active)
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}
