package sheetstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/store"
)

var (
	_ store.OrderStore   = (*Store)(nil)
	_ store.Bootstrapper = (*Store)(nil)
)

// fakeSheet is an in-memory tab. Ranges are parsed just enough for the
// shapes the store sends: "'Tab'!A:G", "'Tab'!A1:G1", "'Tab'!A3" and
// "'Tab'!G7". beforeGet, when set, runs under the lock ahead of every read.
type fakeSheet struct {
	mu        sync.Mutex
	grid      [][]any
	ranges    []string
	failGet   error
	failPut   error
	beforeGet func(f *fakeSheet)
}

func (f *fakeSheet) Get(ctx context.Context, rng string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	if f.beforeGet != nil {
		f.beforeGet(f)
	}
	if ref := rng[strings.LastIndex(rng, "!")+1:]; !strings.Contains(ref, ":") {
		col, rowNum, err := cellRef(ref)
		if err != nil {
			return nil, err
		}
		if rowNum > len(f.grid) || col >= len(f.grid[rowNum-1]) {
			return nil, nil
		}
		return [][]any{{f.grid[rowNum-1][col]}}, nil
	}
	out := make([][]any, len(f.grid))
	for i, row := range f.grid {
		out[i] = append([]any(nil), row...)
	}
	return out, nil
}

func (f *fakeSheet) Append(ctx context.Context, rng string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut != nil {
		return f.failPut
	}
	f.ranges = append(f.ranges, rng)
	f.grid = append(f.grid, rows...)
	return nil
}

func (f *fakeSheet) Update(ctx context.Context, rng string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut != nil {
		return f.failPut
	}
	f.ranges = append(f.ranges, rng)

	ref := rng[strings.LastIndex(rng, "!")+1:]
	ref, _, _ = strings.Cut(ref, ":")
	col, rowNum, err := cellRef(ref)
	if err != nil {
		return err
	}
	for len(f.grid) < rowNum {
		f.grid = append(f.grid, nil)
	}
	row := f.grid[rowNum-1]
	for len(row) < col+len(rows[0]) {
		row = append(row, "")
	}
	copy(row[col:], rows[0])
	f.grid[rowNum-1] = row
	return nil
}

// cellRef splits a single-letter A1 reference such as "G7".
func cellRef(ref string) (col, row int, err error) {
	row, err = strconv.Atoi(ref[1:])
	return int(ref[0] - 'A'), row, err
}

func header() []any { return toValues(store.Columns) }

func newRecord(id string) order.Record {
	return order.Record{
		ID:        id,
		CreatedAt: order.CreatedAt{Date: "2026-03-02", Time: "18:30:05", Day: "Monday"},
		Lines:     []order.Line{{Item: "Samosa", Quantity: 3}, {Item: "Chai", Quantity: 2}},
		Total:     9000,
		Status:    order.StatusQueued,
	}
}

func TestBootstrap_WritesHeaderOnce(t *testing.T) {
	sheet := &fakeSheet{}
	s := newStore(sheet, "Orders")

	created, err := s.Bootstrap(context.Background())
	if err != nil || !created {
		t.Fatalf("first Bootstrap = %v, %v; want true, nil", created, err)
	}
	if len(sheet.grid) != 1 || sheet.grid[0][0] != "Order No" {
		t.Fatalf("expected header row, got %v", sheet.grid)
	}
	if sheet.ranges[0] != "'Orders'!A1:G1" {
		t.Errorf("unexpected range %q", sheet.ranges[0])
	}

	created, err = s.Bootstrap(context.Background())
	if err != nil || created {
		t.Fatalf("second Bootstrap = %v, %v; want false, nil", created, err)
	}
}

func TestAppendAndList(t *testing.T) {
	sheet := &fakeSheet{grid: [][]any{header()}}
	s := newStore(sheet, "Orders")
	ctx := context.Background()

	if err := s.Append(ctx, newRecord("AB12CD")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, newRecord("AB12CD")); !errors.Is(err, store.ErrDuplicateOrderID) {
		t.Fatalf("expected ErrDuplicateOrderID, got %v", err)
	}

	recs, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "AB12CD" || recs[0].Total != 9000 {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestListAll_EmptyTab(t *testing.T) {
	recs, err := newStore(&fakeSheet{}, "Orders").ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records, got %d", len(recs))
	}
}

func TestListAll_NumericCellsAndBlankRows(t *testing.T) {
	sheet := &fakeSheet{grid: [][]any{
		header(),
		{"AB12CD", "2026-03-02", "18:30:05", "Monday", "Samosa x3", float64(60), "Queued"},
		{},
		{"ZZ99ZZ", "2026-03-02", "18:31:00", "Monday", "Chai x2", "30", "Served"},
	}}

	recs, err := newStore(sheet, "Orders").ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Total != 6000 {
		t.Errorf("expected total 60, got %s", recs[0].Total)
	}
}

func TestListAll_MissingStatusCell(t *testing.T) {
	// The API omits trailing empty cells.
	sheet := &fakeSheet{grid: [][]any{
		header(),
		{"AB12CD", "2026-03-02", "18:30:05", "Monday", "Samosa x3", "60"},
	}}
	_, err := newStore(sheet, "Orders").ListAll(context.Background())
	if !errors.Is(err, order.ErrUnrecognizedStatus) {
		t.Fatalf("expected ErrUnrecognizedStatus, got %v", err)
	}
}

func TestListAll_BadHeader(t *testing.T) {
	sheet := &fakeSheet{grid: [][]any{{"Id", "When"}}}
	_, err := newStore(sheet, "Orders").ListAll(context.Background())
	if !errors.Is(err, store.ErrCorruptRow) {
		t.Fatalf("expected ErrCorruptRow, got %v", err)
	}
}

func TestUpdateStatus_WritesOnlyStatusCell(t *testing.T) {
	sheet := &fakeSheet{grid: [][]any{
		header(),
		toValues(store.EncodeRow(newRecord("AAAAAA"))),
		toValues(store.EncodeRow(newRecord("BBBBBB"))),
	}}
	s := newStore(sheet, "Orders")

	rec, err := s.UpdateStatus(context.Background(), "BBBBBB", order.StatusServed)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if rec.Status != order.StatusServed {
		t.Errorf("expected Served, got %s", rec.Status)
	}
	if got := sheet.ranges[len(sheet.ranges)-1]; got != "'Orders'!G3" {
		t.Errorf("expected update of G3, got %q", got)
	}
	if sheet.grid[1][store.ColStatus] != "Queued" || sheet.grid[2][store.ColStatus] != "Served" {
		t.Errorf("unexpected grid %v", sheet.grid)
	}

	if _, err := s.UpdateStatus(context.Background(), "BBBBBB", order.StatusCancelled); !errors.Is(err, order.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := s.UpdateStatus(context.Background(), "CCCCCC", order.StatusServed); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus_RowMovedBeforeWrite(t *testing.T) {
	sheet := &fakeSheet{grid: [][]any{
		header(),
		toValues(store.EncodeRow(newRecord("AAAAAA"))),
		toValues(store.EncodeRow(newRecord("BBBBBB"))),
	}}
	// Someone sorts the tab between the full read and the cell check.
	gets := 0
	sheet.beforeGet = func(f *fakeSheet) {
		gets++
		if gets == 2 {
			f.grid[1], f.grid[2] = f.grid[2], f.grid[1]
		}
	}
	s := newStore(sheet, "Orders")

	_, err := s.UpdateStatus(context.Background(), "BBBBBB", order.StatusServed)
	if !errors.Is(err, store.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	for _, row := range sheet.grid[1:] {
		if row[store.ColStatus] != "Queued" {
			t.Fatalf("no status cell should change, got %v", sheet.grid)
		}
	}

	// A retry re-reads the tab and finds the order at its new row.
	rec, err := s.UpdateStatus(context.Background(), "BBBBBB", order.StatusServed)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if rec.Status != order.StatusServed || sheet.grid[1][store.ColStatus] != "Served" || sheet.grid[2][store.ColStatus] != "Queued" {
		t.Errorf("unexpected grid after retry %v", sheet.grid)
	}
}

func TestUnavailable(t *testing.T) {
	boom := errors.New("googleapi: Error 503: backend error")
	ctx := context.Background()

	s := newStore(&fakeSheet{failGet: boom}, "Orders")
	if _, err := s.ListAll(ctx); !errors.Is(err, store.ErrStoreUnavailable) {
		t.Errorf("ListAll: expected ErrStoreUnavailable, got %v", err)
	}

	s = newStore(&fakeSheet{grid: [][]any{header()}, failPut: boom}, "Orders")
	if err := s.Append(ctx, newRecord("AB12CD")); !errors.Is(err, store.ErrStoreUnavailable) {
		t.Errorf("Append: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestRangeQuotesTab(t *testing.T) {
	s := newStore(&fakeSheet{}, "Dhiya's Orders")
	if got := s.rng("A:G"); got != "'Dhiya''s Orders'!A:G" {
		t.Errorf("rng = %q", got)
	}
}
