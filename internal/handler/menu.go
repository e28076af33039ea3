package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dhiya-foods/orderboard/internal/menu"
	"github.com/dhiya-foods/orderboard/internal/service"
)

// SessionProvider hands out the current menu session.
// Satisfied by *service.SessionManager.
type SessionProvider interface {
	Current() *service.Session
	Reload(ctx context.Context) (*service.Session, error)
}

// MenuHandler handles menu endpoints.
type MenuHandler struct {
	sessions SessionProvider
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(sessions SessionProvider) *MenuHandler {
	return &MenuHandler{sessions: sessions}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
// Expected to be mounted at /menu
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/reload", h.Reload)
}

type menuItemResponse struct {
	Item  string `json:"item"`
	Price string `json:"price"`
}

type menuResponse struct {
	SessionID uuid.UUID          `json:"session_id"`
	StartedAt time.Time          `json:"started_at"`
	Items     []menuItemResponse `json:"items"`
}

func toMenuResponse(sess *service.Session) menuResponse {
	items := sess.Catalog.Items()
	out := make([]menuItemResponse, len(items))
	for i, it := range items {
		out[i] = menuItemResponse{Item: it.Name, Price: it.Price.String()}
	}
	return menuResponse{SessionID: sess.ID, StartedAt: sess.StartedAt, Items: out}
}

// Get handles GET /menu.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current()
	if sess == nil || sess.Catalog == nil {
		writeError(w, "get menu", menu.ErrCatalogUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(sess))
}

// Reload handles POST /menu/reload: it starts a new session with a freshly
// fetched catalog. On failure the previous session stays active.
func (h *MenuHandler) Reload(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Reload(r.Context())
	if err != nil {
		writeError(w, "reload menu", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(sess))
}
