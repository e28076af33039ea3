package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/dhiya-foods/orderboard/internal/enum"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub maintains the set of connected queue screens and broadcasts board
// events to all of them.
type Hub struct {
	clients map[*Client]bool

	// Last queue.snapshot message, replayed to screens that connect later
	snapshot []byte

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe client access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done, closing
// every client's send channel.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if h.snapshot != nil {
				select {
				case client.send <- h.snapshot:
				default:
				}
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(event)
			if err != nil {
				log.Printf("ERROR: marshal %s event: %v", event.Type, err)
				continue
			}

			h.mu.Lock()
			if event.Type == enum.EventQueueSnapshot {
				h.snapshot = message
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for every connected screen. It never blocks:
// when the hub is stopped or its buffer is full the event is dropped.
func (h *Hub) Broadcast(event Event) {
	select {
	case <-h.done:
	case h.broadcast <- event:
	default:
		log.Printf("ERROR: websocket broadcast buffer full, dropping %s", event.Type)
	}
}

// Publish marshals payload and broadcasts it as an event of type eventType.
func (h *Hub) Publish(eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s payload: %v", eventType, err)
		return
	}
	h.Broadcast(Event{Type: eventType, Payload: data})
}

// ClientCount returns the number of connected screens.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
