package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dhiya-foods/orderboard/internal/handler"
	"github.com/dhiya-foods/orderboard/internal/menu"
	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/service"
	"github.com/dhiya-foods/orderboard/internal/store"
)

// --- Mock OrderPlacer ---

type mockOrderService struct {
	placeFn func(ctx context.Context, sess *service.Session, selections []order.Selection) (order.Record, error)
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, sess *service.Session, selections []order.Selection) (order.Record, error) {
	return m.placeFn(ctx, sess, selections)
}

// --- Mock queue / ledger ---

type mockQueue struct {
	allFn           func(ctx context.Context) ([]order.Record, error)
	activeOrdersFn  func(ctx context.Context) ([]order.Record, error)
	markServedFn    func(ctx context.Context, id string) (order.Record, error)
	markCancelledFn func(ctx context.Context, id string) (order.Record, error)
}

func (m *mockQueue) All(ctx context.Context) ([]order.Record, error) {
	return m.allFn(ctx)
}
func (m *mockQueue) ActiveOrders(ctx context.Context) ([]order.Record, error) {
	return m.activeOrdersFn(ctx)
}
func (m *mockQueue) MarkServed(ctx context.Context, id string) (order.Record, error) {
	return m.markServedFn(ctx, id)
}
func (m *mockQueue) MarkCancelled(ctx context.Context, id string) (order.Record, error) {
	return m.markCancelledFn(ctx, id)
}

// --- Mock sessions ---

type mockSessions struct {
	current  *service.Session
	reloadFn func(ctx context.Context) (*service.Session, error)
}

func (m *mockSessions) Current() *service.Session { return m.current }
func (m *mockSessions) Reload(ctx context.Context) (*service.Session, error) {
	return m.reloadFn(ctx)
}

// --- Recording broadcaster ---

type recordedEvent struct {
	Type    string
	Payload any
}

type recordingHub struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (h *recordingHub) Publish(eventType string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedEvent{eventType, payload})
}

// --- Helpers ---

func testSession(t *testing.T) *service.Session {
	t.Helper()
	cat, err := menu.New([]menu.Item{{Name: "Samosa", Price: 2000}, {Name: "Chai", Price: 1500}})
	if err != nil {
		t.Fatalf("menu.New: %v", err)
	}
	return &service.Session{ID: uuid.New(), Catalog: cat, StartedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func testRecord(id string, status order.Status) order.Record {
	return order.Record{
		ID:        id,
		CreatedAt: order.CreatedAt{Date: "2026-03-02", Time: "18:30:05", Day: "Monday"},
		Lines:     []order.Line{{Item: "Samosa", Quantity: 3}, {Item: "Chai", Quantity: 2}},
		Total:     9000,
		Status:    status,
	}
}

func setupOrderRouter(svc *mockOrderService, q *mockQueue, sess *mockSessions, hub handler.Broadcaster) *chi.Mux {
	r := chi.NewRouter()
	h := handler.NewOrderHandler(svc, q, sess, hub)
	r.Route("/orders", h.RegisterRoutes)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		var b []byte
		switch v := body.(type) {
		case string:
			b = []byte(v)
		default:
			var err error
			b, err = json.Marshal(v)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rr.Body.String())
	}
	return resp
}

// =====================
// Create tests
// =====================

func TestOrderCreate_HappyPath(t *testing.T) {
	sess := testSession(t)
	var gotSelections []order.Selection
	svc := &mockOrderService{
		placeFn: func(ctx context.Context, s *service.Session, selections []order.Selection) (order.Record, error) {
			if s != sess {
				t.Error("expected the current session to be passed through")
			}
			gotSelections = selections
			return testRecord("AB12CD", order.StatusQueued), nil
		},
	}
	hub := &recordingHub{}
	router := setupOrderRouter(svc, nil, &mockSessions{current: sess}, hub)

	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"item": "Samosa", "quantity": 3},
			{"item": "Chai", "quantity": 2},
			{"item": "Dosa", "quantity": 0},
		},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["order_no"] != "AB12CD" || resp["total"] != "90" || resp["status"] != "Queued" {
		t.Errorf("unexpected response %v", resp)
	}
	if resp["food_items"] != "Samosa x3, Chai x2" {
		t.Errorf("unexpected food_items %v", resp["food_items"])
	}
	if len(gotSelections) != 3 {
		t.Errorf("expected selections passed unfiltered, got %v", gotSelections)
	}
	if len(hub.events) != 1 || hub.events[0].Type != "order.created" {
		t.Errorf("expected one order.created event, got %+v", hub.events)
	}
}

func TestOrderCreate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		retryable  bool
	}{
		{"unknown item", fmt.Errorf("line[2]: %w: \"Dosa\"", menu.ErrUnknownItem), http.StatusBadRequest, false},
		{"empty order", order.ErrEmptyOrder, http.StatusBadRequest, false},
		{"catalog unavailable", menu.ErrCatalogUnavailable, http.StatusServiceUnavailable, false},
		{"store unavailable", store.Unavailable("append", errors.New("disk full")), http.StatusServiceUnavailable, true},
		{"ids exhausted", service.ErrOrderIDExhausted, http.StatusServiceUnavailable, true},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{
				placeFn: func(ctx context.Context, s *service.Session, selections []order.Selection) (order.Record, error) {
					return order.Record{}, tt.err
				},
			}
			hub := &recordingHub{}
			router := setupOrderRouter(svc, nil, &mockSessions{current: testSession(t)}, hub)

			rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
				"items": []map[string]interface{}{{"item": "Chai", "quantity": 1}},
			})
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			resp := decodeBody(t, rr)
			if got := resp["retryable"] == "true"; got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
			if len(hub.events) != 0 {
				t.Errorf("failed orders must not be broadcast, got %+v", hub.events)
			}
		})
	}
}

func TestOrderCreate_InvalidBody(t *testing.T) {
	svc := &mockOrderService{
		placeFn: func(ctx context.Context, s *service.Session, selections []order.Selection) (order.Record, error) {
			t.Fatal("service should not be called")
			return order.Record{}, nil
		},
	}
	router := setupOrderRouter(svc, nil, &mockSessions{}, nil)

	rr := doRequest(t, router, "POST", "/orders", "{not json")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestOrderCreate_NilBroadcaster(t *testing.T) {
	svc := &mockOrderService{
		placeFn: func(ctx context.Context, s *service.Session, selections []order.Selection) (order.Record, error) {
			return testRecord("AB12CD", order.StatusQueued), nil
		},
	}
	router := setupOrderRouter(svc, nil, &mockSessions{current: testSession(t)}, nil)

	rr := doRequest(t, router, "POST", "/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"item": "Chai", "quantity": 1}},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

// =====================
// List tests
// =====================

func TestOrderList(t *testing.T) {
	q := &mockQueue{
		allFn: func(ctx context.Context) ([]order.Record, error) {
			return []order.Record{
				testRecord("AAAAAA", order.StatusServed),
				testRecord("BBBBBB", order.StatusQueued),
				testRecord("CCCCCC", order.StatusCancelled),
			}, nil
		},
	}
	router := setupOrderRouter(nil, q, nil, nil)

	rr := doRequest(t, router, "GET", "/orders", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeBody(t, rr)
	if resp["count"].(float64) != 3 {
		t.Errorf("expected 3 orders, got %v", resp["count"])
	}

	rr = doRequest(t, router, "GET", "/orders?status=Cancelled", nil)
	resp = decodeBody(t, rr)
	orders := resp["orders"].([]interface{})
	if len(orders) != 1 || orders[0].(map[string]interface{})["order_no"] != "CCCCCC" {
		t.Errorf("unexpected filtered orders %v", orders)
	}

	rr = doRequest(t, router, "GET", "/orders?status=Done", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad status filter, got %d", rr.Code)
	}
}

func TestOrderList_CorruptedRow(t *testing.T) {
	q := &mockQueue{
		allFn: func(ctx context.Context) ([]order.Record, error) {
			return nil, fmt.Errorf("orders.csv line 4: order X: %w", order.ErrUnrecognizedStatus)
		},
	}
	router := setupOrderRouter(nil, q, nil, nil)

	rr := doRequest(t, router, "GET", "/orders", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
