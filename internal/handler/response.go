package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dhiya-foods/orderboard/internal/menu"
	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/store"
)

// Broadcaster pushes board events to connected queue screens.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	Publish(eventType string, payload any)
}

type orderResponse struct {
	OrderNo   string         `json:"order_no"`
	Date      string         `json:"date"`
	Time      string         `json:"time"`
	Day       string         `json:"day"`
	Items     []lineResponse `json:"items"`
	FoodItems string         `json:"food_items"`
	Total     string         `json:"total"`
	Status    string         `json:"status"`
}

type lineResponse struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Count  int             `json:"count"`
}

func toOrderResponse(rec order.Record) orderResponse {
	lines := make([]lineResponse, len(rec.Lines))
	for i, l := range rec.Lines {
		lines[i] = lineResponse{Item: l.Item, Quantity: l.Quantity}
	}
	return orderResponse{
		OrderNo:   rec.ID,
		Date:      rec.CreatedAt.Date,
		Time:      rec.CreatedAt.Time,
		Day:       rec.CreatedAt.Day,
		Items:     lines,
		FoodItems: order.FormatLines(rec.Lines),
		Total:     rec.Total.String(),
		Status:    string(rec.Status),
	}
}

func toOrderListResponse(recs []order.Record) orderListResponse {
	out := make([]orderResponse, len(recs))
	for i, r := range recs {
		out[i] = toOrderResponse(r)
	}
	return orderListResponse{Orders: out, Count: len(out)}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// writeError maps domain errors to HTTP statuses. op names the failed
// command in the log.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, order.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, menu.ErrCatalogUnavailable):
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "menu unavailable, reload the menu and try again"})
	case errors.Is(err, store.ErrStoreUnavailable):
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":     "order store unavailable, try again",
			"retryable": "true",
		})
	case errors.Is(err, order.ErrUnrecognizedStatus), errors.Is(err, store.ErrCorruptRow):
		log.Printf("ERROR: %s: corrupted order data: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order store contains a corrupted row"})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, menu.ErrUnknownItem) ||
		errors.Is(err, order.ErrEmptyOrder) ||
		errors.Is(err, order.ErrTotalOverflow)
}
