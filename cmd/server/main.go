package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhiya-foods/orderboard/internal/backend"
	"github.com/dhiya-foods/orderboard/internal/config"
	"github.com/dhiya-foods/orderboard/internal/enum"
	"github.com/dhiya-foods/orderboard/internal/menu"
	"github.com/dhiya-foods/orderboard/internal/order"
	"github.com/dhiya-foods/orderboard/internal/orderid"
	"github.com/dhiya-foods/orderboard/internal/router"
	"github.com/dhiya-foods/orderboard/internal/service"
	"github.com/dhiya-foods/orderboard/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to open %s order store: %v", cfg.StoreBackend, err)
	}
	defer closeStore()
	log.Printf("Using %s order store", cfg.StoreBackend)

	// The server still starts without a menu; POST /menu/reload retries.
	sessions, err := service.NewSessionManager(ctx, menu.NewSource(cfg.MenuSource, cfg.MenuTimeout))
	if err != nil {
		log.Printf("ERROR: load menu from %s: %v", cfg.MenuSource, err)
	}

	builder := order.NewBuilder(orderid.New(cfg.OrderIDLength), nil)
	orders := service.NewOrderService(s, builder)
	queue := service.NewQueue(s)

	hub := ws.NewHub()
	go hub.Run(ctx)

	poller := &service.Poller{Queue: queue, Interval: cfg.PollInterval}
	go poller.Run(ctx, func(active []order.Record) {
		hub.Publish(enum.EventQueueSnapshot, queueSnapshot(active))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router.New(cfg, router.Deps{Sessions: sessions, Orders: orders, Queue: queue, Hub: hub}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR: shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

type snapshotOrder struct {
	OrderNo   string `json:"order_no"`
	Time      string `json:"time"`
	FoodItems string `json:"food_items"`
	Total     string `json:"total"`
}

func queueSnapshot(active []order.Record) []snapshotOrder {
	out := make([]snapshotOrder, len(active))
	for i, r := range active {
		out[i] = snapshotOrder{
			OrderNo:   r.ID,
			Time:      r.CreatedAt.Time,
			FoodItems: order.FormatLines(r.Lines),
			Total:     r.Total.String(),
		}
	}
	return out
}
