// Package ws pushes sync-status changes to connected UI clients over
// WebSocket. The UI reads all data from the local store; the socket only
// carries the status indicator and drain summaries.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is a status notification broadcast to all clients.
type Message struct {
	Type  string         `json:"type"`
	State string         `json:"state,omitempty"`
	Extra map[string]any `json:"extra,omitempty"`
}

// StatusMessage builds the standard status-change message.
func StatusMessage(state string) Message {
	return Message{Type: "sync_status", State: state}
}

// Hub maintains the set of active WebSocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to every connected client. Slow clients with
// a full buffer are skipped rather than blocking the broadcast.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
