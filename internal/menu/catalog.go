// Package menu loads the vendor's item→price list. A Catalog is a read-only
// snapshot; price edits happen out of band and are picked up by loading a new one.
package menu

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dhiya-foods/orderboard/internal/money"
)

// Errors returned by the catalog.
var (
	ErrCatalogUnavailable = errors.New("menu catalog unavailable")
	ErrUnknownItem        = errors.New("item not on menu")
	ErrInvalidItemName    = errors.New("invalid item name")
)

// lineSeparator joins lines in a stored order's Food Items cell. An item name
// containing it could not be read back.
const lineSeparator = ", "

// Item is one menu entry.
type Item struct {
	Name  string
	Price money.Amount
}

// Catalog is an immutable name→price mapping.
type Catalog struct {
	items  []Item
	prices map[string]money.Amount
}

// Load fetches and parses the menu from src. Any failure is reported as
// ErrCatalogUnavailable wrapping the cause.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrCatalogUnavailable, src, err)
	}
	defer rc.Close()

	c, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCatalogUnavailable, src, err)
	}
	return c, nil
}

// Parse reads a CSV with at least Item and Price columns.
func Parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty menu")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	itemCol, priceCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "item":
			itemCol = i
		case "price":
			priceCol = i
		}
	}
	if itemCol < 0 || priceCol < 0 {
		return nil, fmt.Errorf("menu needs Item and Price columns, got %v", header)
	}

	c := &Catalog{prices: make(map[string]money.Amount)}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if itemCol >= len(rec) || priceCol >= len(rec) {
			return nil, fmt.Errorf("line %d: short row", line)
		}

		name := strings.TrimSpace(rec[itemCol])
		if name == "" {
			continue
		}
		if err := checkName(name); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		price, err := money.Parse(rec[priceCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: price for %q: %w", line, name, err)
		}
		if _, dup := c.prices[name]; dup {
			return nil, fmt.Errorf("line %d: duplicate item %q", line, name)
		}
		c.prices[name] = price
		c.items = append(c.items, Item{Name: name, Price: price})
	}

	if len(c.items) == 0 {
		return nil, errors.New("menu has no items")
	}
	return c, nil
}

// New builds a catalog from items in memory. Used by tests and the seeder.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{prices: make(map[string]money.Amount, len(items))}
	for _, it := range items {
		if it.Name == "" {
			return nil, errors.New("item name is required")
		}
		if err := checkName(it.Name); err != nil {
			return nil, err
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("item %q: %w", it.Name, money.ErrNegativeAmount)
		}
		if _, dup := c.prices[it.Name]; dup {
			return nil, fmt.Errorf("duplicate item %q", it.Name)
		}
		c.prices[it.Name] = it.Price
		c.items = append(c.items, it)
	}
	return c, nil
}

// checkName rejects names that would not survive the Food Items cell:
// surrounding whitespace is trimmed on read, and the separator splits lines.
func checkName(name string) error {
	switch {
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidItemName, name)
	case strings.Contains(name, lineSeparator), strings.HasSuffix(name, ","):
		return fmt.Errorf("%w: %q must not contain %q", ErrInvalidItemName, name, lineSeparator)
	}
	return nil
}

// PriceOf returns the price of name or ErrUnknownItem.
func (c *Catalog) PriceOf(name string) (money.Amount, error) {
	p, ok := c.prices[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	return p, nil
}

// Items returns the menu in source order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports how many items are on the menu.
func (c *Catalog) Len() int {
	return len(c.items)
}

// WriteCSV renders the catalog in the format Parse reads.
func (c *Catalog) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Item", "Price"}); err != nil {
		return err
	}
	for _, it := range c.items {
		if err := cw.Write([]string{it.Name, it.Price.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
