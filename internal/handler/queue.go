package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dhiya-foods/orderboard/internal/enum"
	"github.com/dhiya-foods/orderboard/internal/order"
)

// QueueStore defines the queue commands the handler needs.
// Satisfied by *service.Queue.
type QueueStore interface {
	ActiveOrders(ctx context.Context) ([]order.Record, error)
	MarkServed(ctx context.Context, id string) (order.Record, error)
	MarkCancelled(ctx context.Context, id string) (order.Record, error)
}

// QueueHandler handles the kitchen queue endpoints.
type QueueHandler struct {
	queue  QueueStore
	events Broadcaster
}

// NewQueueHandler creates a new QueueHandler. events may be nil.
func NewQueueHandler(queue QueueStore, events Broadcaster) *QueueHandler {
	return &QueueHandler{queue: queue, events: events}
}

// RegisterRoutes registers queue endpoints on the given Chi router.
// Expected to be mounted at /queue
func (h *QueueHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/{id}/served", h.MarkServed)
	r.Post("/{id}/cancelled", h.MarkCancelled)
}

// List handles GET /queue.
func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	active, err := h.queue.ActiveOrders(r.Context())
	if err != nil {
		writeError(w, "list queue", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderListResponse(active))
}

// MarkServed handles POST /queue/{id}/served.
func (h *QueueHandler) MarkServed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "mark served", h.queue.MarkServed)
}

// MarkCancelled handles POST /queue/{id}/cancelled.
func (h *QueueHandler) MarkCancelled(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "mark cancelled", h.queue.MarkCancelled)
}

func (h *QueueHandler) transition(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, string) (order.Record, error)) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order id is required"})
		return
	}

	rec, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, op, err)
		return
	}

	resp := toOrderResponse(rec)
	if h.events != nil {
		h.events.Publish(enum.EventOrderStatusChanged, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}
