package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dhiya-foods/orderboard/internal/enum"
	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/service"
)

// OrderPlacer defines the service method needed to create orders.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, sess *service.Session, selections []order.Selection) (order.Record, error)
}

// Ledger lists every order. Satisfied by *service.Queue.
type Ledger interface {
	All(ctx context.Context) ([]order.Record, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc      OrderPlacer
	ledger   Ledger
	sessions SessionProvider
	events   Broadcaster
}

// NewOrderHandler creates a new OrderHandler. events may be nil.
func NewOrderHandler(svc OrderPlacer, ledger Ledger, sessions SessionProvider, events Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, ledger: ledger, sessions: sessions, events: events}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
}

// --- Request types ---

type createOrderRequest struct {
	Items []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	selections := make([]order.Selection, len(req.Items))
	for i, item := range req.Items {
		selections[i] = order.Selection{Item: item.Item, Quantity: item.Quantity}
	}

	rec, err := h.svc.PlaceOrder(r.Context(), h.sessions.Current(), selections)
	if err != nil {
		writeError(w, "place order", err)
		return
	}

	resp := toOrderResponse(rec)
	if h.events != nil {
		h.events.Publish(enum.EventOrderCreated, resp)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders. It returns the full ledger, terminal orders
// included, in store order.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.ledger.All(r.Context())
	if err != nil {
		writeError(w, "list orders", err)
		return
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status, err := order.ParseStatus(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		filtered := recs[:0]
		for _, rec := range recs {
			if rec.Status == status {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}

	writeJSON(w, http.StatusOK, toOrderListResponse(recs))
}
