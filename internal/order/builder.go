// Package order defines the order record, its status state machine, and the
// builder that turns menu selections into a priced, immutable record.
package order

import (
	"fmt"
	"time"

	"github.com/dhiya-foods/orderboard/internal/money"
)

// PriceLookup resolves a menu item to its price. Satisfied by *menu.Catalog.
type PriceLookup interface {
	PriceOf(name string) (money.Amount, error)
}

// IDSource draws order ids. Satisfied by *orderid.Generator.
type IDSource interface {
	Next() (string, error)
}

// Builder validates selections and produces Queued records.
type Builder struct {
	ids IDSource
	now func() time.Time
}

// NewBuilder creates a Builder. now defaults to time.Now.
func NewBuilder(ids IDSource, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{ids: ids, now: now}
}

// Build filters out non-positive quantities, prices every remaining line from
// prices, and returns a Queued record. The store is not touched.
func (b *Builder) Build(selections []Selection, prices PriceLookup) (Record, error) {
	var lines []Line
	for _, s := range selections {
		if s.Quantity <= 0 {
			continue
		}
		lines = append(lines, Line{Item: s.Item, Quantity: s.Quantity})
	}
	if len(lines) == 0 {
		return Record{}, ErrEmptyOrder
	}

	// Resolve every item before totalling so an unknown item fails the
	// whole order without a partial sum.
	unit := make([]money.Amount, len(lines))
	for i, l := range lines {
		p, err := prices.PriceOf(l.Item)
		if err != nil {
			return Record{}, fmt.Errorf("line[%d]: %w", i, err)
		}
		unit[i] = p
	}

	total := money.Amount(0)
	for i, l := range lines {
		lineTotal, err := unit[i].Mul(l.Quantity)
		if err != nil {
			return Record{}, fmt.Errorf("line[%d]: %w", i, ErrTotalOverflow)
		}
		total, err = total.Add(lineTotal)
		if err != nil {
			return Record{}, ErrTotalOverflow
		}
	}

	id, err := b.ids.Next()
	if err != nil {
		return Record{}, fmt.Errorf("draw order id: %w", err)
	}

	return Record{
		ID:        id,
		CreatedAt: NewCreatedAt(b.now()),
		Lines:     lines,
		Total:     total,
		Status:    StatusQueued,
	}, nil
}

// NextID draws a fresh id for a retry after a duplicate.
func (b *Builder) NextID() (string, error) {
	return b.ids.Next()
}
