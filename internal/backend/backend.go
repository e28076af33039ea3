// Package backend opens the order store named in the configuration.
package backend

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhiya-foods/orderboard/internal/config"
	"github.com/dhiya-foods/orderboard/internal/enum"
	"github.com/dhiya-foods/orderboard/internal/store"
	"github.com/dhiya-foods/orderboard/internal/store/csvstore"
	"github.com/dhiya-foods/orderboard/internal/store/pgstore"
	"github.com/dhiya-foods/orderboard/internal/store/sheetstore"
)

// Open connects to the configured backend, prepares an empty medium, and
// returns the store bounded by cfg.StoreTimeout. closeFn releases any
// connections and is never nil.
func Open(ctx context.Context, cfg *config.Config) (s store.OrderStore, closeFn func(), err error) {
	closeFn = func() {}

	switch cfg.StoreBackend {
	case enum.StoreBackendCSV:
		s = csvstore.New(cfg.OrdersFile)

	case enum.StoreBackendPostgres:
		if err := pgstore.Migrate(cfg.DatabaseURL); err != nil {
			return nil, closeFn, store.Unavailable("migrate", err)
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, closeFn, store.Unavailable("connect", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, closeFn, store.Unavailable("ping", err)
		}
		s, closeFn = pgstore.New(pool), pool.Close

	case enum.StoreBackendSheets:
		ss, err := sheetstore.NewGoogle(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsTab, cfg.SheetsCredentialsFile)
		if err != nil {
			return nil, closeFn, store.Unavailable("connect", err)
		}
		s = ss

	default:
		return nil, closeFn, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	s = store.WithTimeout(s, cfg.StoreTimeout)
	if err := Bootstrap(ctx, s); err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return s, closeFn, nil
}

// Bootstrap initialises the medium if the store supports it.
func Bootstrap(ctx context.Context, s store.OrderStore) error {
	b, ok := s.(store.Bootstrapper)
	if !ok {
		return nil
	}
	created, err := b.Bootstrap(ctx)
	if err != nil {
		return err
	}
	if created {
		log.Printf("Initialised empty order store")
	}
	return nil
}
