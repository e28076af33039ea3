// Package service holds the terminal-level workflows on top of the order
// store: sessions with a fetched menu, order placement, and the queue view.
package service

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dhiya-foods/orderboard/internal/menu"
)

// Session is one terminal's working state: the catalog fetched when the
// session started. A new session is the way to pick up menu edits.
type Session struct {
	ID        uuid.UUID
	Catalog   *menu.Catalog
	StartedAt time.Time
}

// NewSession loads the catalog from src.
func NewSession(ctx context.Context, src menu.Source) (*Session, error) {
	cat, err := menu.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return &Session{ID: uuid.New(), Catalog: cat, StartedAt: time.Now()}, nil
}

// SessionManager holds the current session for a long-running process.
// Requests read a snapshot; Reload swaps in a new one.
type SessionManager struct {
	src     menu.Source
	current atomic.Pointer[Session]
}

// NewSessionManager starts the first session. A catalog that cannot be
// fetched leaves the manager without a session; ordering fails with
// menu.ErrCatalogUnavailable until Reload succeeds.
func NewSessionManager(ctx context.Context, src menu.Source) (*SessionManager, error) {
	m := &SessionManager{src: src}
	_, err := m.Reload(ctx)
	return m, err
}

// Current returns the active session, or nil.
func (m *SessionManager) Current() *Session {
	return m.current.Load()
}

// Reload fetches the catalog again and makes it current. On failure the
// previous session stays in place.
func (m *SessionManager) Reload(ctx context.Context) (*Session, error) {
	sess, err := NewSession(ctx, m.src)
	if err != nil {
		return nil, err
	}
	m.current.Store(sess)
	log.Printf("Menu session %s started with %d items", sess.ID, sess.Catalog.Len())
	return sess, nil
}
