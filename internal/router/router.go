package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dhiya-foods/orderboard/internal/config"
	"github.com/dhiya-foods/orderboard/internal/handler"
	"github.com/dhiya-foods/orderboard/internal/service"
	"github.com/dhiya-foods/orderboard/internal/ws"
)

// Deps are the services the routes are wired to.
type Deps struct {
	Sessions *service.SessionManager
	Orders   *service.OrderService
	Queue    *service.Queue
	Hub      *ws.Hub
}

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, d Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for the board UI
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Without a hub there is no board socket, and a nil *ws.Hub must not
	// become a non-nil Broadcaster.
	var events handler.Broadcaster
	if d.Hub != nil {
		events = d.Hub
		r.Get("/ws/queue", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWS(d.Hub, w, r)
		})
	}

	menuHandler := handler.NewMenuHandler(d.Sessions)
	r.Route("/menu", menuHandler.RegisterRoutes)

	orderHandler := handler.NewOrderHandler(d.Orders, d.Queue, d.Sessions, events)
	r.Route("/orders", orderHandler.RegisterRoutes)

	queueHandler := handler.NewQueueHandler(d.Queue, events)
	r.Route("/queue", queueHandler.RegisterRoutes)

	log.Println("Router initialized with all handlers")
	return r
}
