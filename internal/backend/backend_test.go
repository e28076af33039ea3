package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dhiya-foods/orderboard/internal/config"
	"github.com/dhiya-foods/orderboard/internal/order"
)

func TestOpen_CSVCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	cfg := &config.Config{StoreBackend: "csv", OrdersFile: path, StoreTimeout: time.Second}

	s, closeFn, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read bootstrapped file: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "Order No,Date,Time,Day,Food Items,Total,Status" {
		t.Errorf("unexpected file contents %q", raw)
	}

	rec := order.Record{
		ID:        "AB12CD",
		CreatedAt: order.CreatedAt{Date: "2026-03-02", Time: "18:30:05", Day: "Monday"},
		Lines:     []order.Line{{Item: "Chai", Quantity: 1}},
		Total:     1500,
		Status:    order.StatusQueued,
	}
	if err := s.Append(context.Background(), rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	recs, err := s.ListAll(context.Background())
	if err != nil || len(recs) != 1 {
		t.Fatalf("ListAll = %v, %v", recs, err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, closeFn, err := Open(context.Background(), &config.Config{StoreBackend: "redis"})
	if err == nil {
		t.Fatal("expected error")
	}
	closeFn()
}

func TestOpen_SheetsRequiresID(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{StoreBackend: "sheets", SheetsTab: "Orders"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}
