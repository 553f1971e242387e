package services

import (
	"sync"
)

// EventHub manages SSE client connections and broadcasts project events
// to connected board UIs.
type EventHub struct {
	clients map[string]chan Event
	mu      sync.RWMutex
}

// NewEventHub creates a new hub instance
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]chan Event),
	}
}

// Subscribe registers a new client and returns a channel for receiving events
func (h *EventHub) Subscribe(clientID string) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Buffered so one slow client never blocks a publish
	ch := make(chan Event, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client from the hub
func (h *EventHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients
func (h *EventHub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		// Non-blocking send, drop the event if the client buffer is full
		select {
		case ch <- event:
		default:
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Global hub instance
var globalEventHub *EventHub
var eventHubOnce sync.Once

// GetEventHub returns the global event hub singleton
func GetEventHub() *EventHub {
	eventHubOnce.Do(func() {
		globalEventHub = NewEventHub()
	})
	return globalEventHub
}
