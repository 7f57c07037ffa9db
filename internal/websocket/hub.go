package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Entities named in change notifications.
const (
	EntityRecipe      = "recipe"
	EntityMealPlan    = "meal_plan"
	EntityGroceryList = "grocery_list"
	EntityGroceryItem = "grocery_item"
	EntityBackup      = "backup"
)

// Message tells clients that an entity changed so they can refetch it.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     string         `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage builds a Message whose Type is "<entity>_<action>".
func NewMessage(entity, action, id string, extra map[string]any) Message {
	return Message{
		Type:   entity + "_" + action,
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub fans messages out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
	dropped atomic.Int64
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds c. After Close, c is refused and its send channel closed.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.send)
		return
	}
	h.clients[c] = struct{}{}
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast queues msg for every client. Clients with a full buffer miss it.
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
			h.dropped.Add(1)
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.logger.Info("websocket hub closed")
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped is the number of messages skipped because a client was behind.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
