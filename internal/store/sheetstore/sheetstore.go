// Package sheetstore keeps orders in one tab of a remote spreadsheet laid
// out with the same seven columns as the CSV file. Every call re-reads the
// tab. Status updates write a single cell, so two terminals updating the
// same order race last-write-wins. The cell is addressed by row number, so
// the row's order number is checked again just before the write.
package sheetstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/store"
)

// statusColumn is the A1 column letter of the Status cell.
const statusColumn = "G"

// valuesAPI is the slice of the spreadsheet values API the store uses.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Append(ctx context.Context, rng string, rows [][]any) error
	Update(ctx context.Context, rng string, rows [][]any) error
}

// Store is a spreadsheet-backed store.OrderStore.
type Store struct {
	api valuesAPI
	tab string
	mu  sync.Mutex
}

func newStore(api valuesAPI, tab string) *Store {
	return &Store{api: api, tab: tab}
}

// Tab returns the sheet tab name.
func (s *Store) Tab() string { return s.tab }

// Bootstrap writes the header row when the tab is empty.
func (s *Store) Bootstrap(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.api.Get(ctx, s.rng("A:G"))
	if err != nil {
		return false, store.Unavailable("bootstrap", err)
	}
	if len(rows) > 0 {
		return false, nil
	}
	if err := s.api.Update(ctx, s.rng("A1:G1"), [][]any{toValues(store.Columns)}); err != nil {
		return false, store.Unavailable("bootstrap", err)
	}
	return true, nil
}

// ListAll reads every data row of the tab.
func (s *Store) ListAll(ctx context.Context) ([]order.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	recs := make([]order.Record, 0, len(rows))
	for i, row := range rows {
		if blank(row) {
			continue
		}
		rec, err := store.DecodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.tab, i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Append checks the id against column A, then appends one row.
func (s *Store) Append(ctx context.Context, rec order.Record) error {
	if err := order.CheckLines(rec.Lines); err != nil {
		return fmt.Errorf("append %s: %w", rec.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read(ctx)
	if err != nil {
		return err
	}
	if rowIndex(rows, rec.ID) >= 0 {
		return fmt.Errorf("append %s: %w", rec.ID, store.ErrDuplicateOrderID)
	}
	if err := s.api.Append(ctx, s.rng("A:G"), [][]any{toValues(store.EncodeRow(rec))}); err != nil {
		return store.Unavailable("append", err)
	}
	return nil
}

// UpdateStatus finds the row by order number and overwrites its Status cell.
func (s *Store) UpdateStatus(ctx context.Context, id string, to order.Status) (order.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read(ctx)
	if err != nil {
		return order.Record{}, err
	}
	i := rowIndex(rows, id)
	if i < 0 {
		return order.Record{}, fmt.Errorf("update %s: %w", id, store.ErrNotFound)
	}
	current, err := store.DecodeRow(rows[i])
	if err != nil {
		return order.Record{}, fmt.Errorf("update %s: %w", id, err)
	}
	if err := order.ValidateTransition(current.Status, to); err != nil {
		return order.Record{}, fmt.Errorf("update %s: %w", id, err)
	}

	row := strconv.Itoa(i + 2)
	if err := s.confirmRow(ctx, row, id); err != nil {
		return order.Record{}, err
	}
	cell := s.rng(statusColumn + row)
	if err := s.api.Update(ctx, cell, [][]any{{string(to)}}); err != nil {
		return order.Record{}, store.Unavailable("update status", err)
	}
	return current.WithStatus(to), nil
}

// confirmRow re-reads the Order No cell of row. Rows sorted or deleted by
// hand since the last read report a retryable error instead of a write to
// another order's row.
func (s *Store) confirmRow(ctx context.Context, row, id string) error {
	values, err := s.api.Get(ctx, s.rng("A"+row))
	if err != nil {
		return store.Unavailable("update status", err)
	}
	var got string
	if len(values) > 0 && len(values[0]) > 0 {
		got = strings.TrimSpace(toStrings(values[0])[0])
	}
	if got != id {
		return store.Unavailable("update status", fmt.Errorf("row %s now holds %q, not %s", row, got, id))
	}
	return nil
}

// read returns the data rows below the header, each padded to the full
// column count. An empty tab has no rows.
func (s *Store) read(ctx context.Context) ([][]string, error) {
	values, err := s.api.Get(ctx, s.rng("A:G"))
	if err != nil {
		return nil, store.Unavailable("read "+s.tab, err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	if err := store.CheckHeader(toStrings(values[0])); err != nil {
		return nil, fmt.Errorf("%s: %w", s.tab, err)
	}
	rows := make([][]string, 0, len(values)-1)
	for _, v := range values[1:] {
		rows = append(rows, toStrings(v))
	}
	return rows, nil
}

// rng builds an A1 range on the store's tab.
func (s *Store) rng(cells string) string {
	return "'" + strings.ReplaceAll(s.tab, "'", "''") + "'!" + cells
}

func rowIndex(rows [][]string, id string) int {
	for i, row := range rows {
		if strings.TrimSpace(row[store.ColOrderNo]) == id {
			return i
		}
	}
	return -1
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// toStrings renders a row of cell values. The API drops trailing empty
// cells, so short rows are padded.
func toStrings(row []any) []string {
	n := len(row)
	if n < len(store.Columns) {
		n = len(store.Columns)
	}
	out := make([]string, n)
	for i, v := range row {
		switch c := v.(type) {
		case string:
			out[i] = c
		case float64:
			out[i] = strconv.FormatFloat(c, 'f', -1, 64)
		case nil:
		default:
			out[i] = fmt.Sprint(c)
		}
	}
	return out
}

func toValues(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}
