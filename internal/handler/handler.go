package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/plateful/internal/websocket"
)

// notifier sends change notifications. A nil hub sends nothing.
type notifier struct {
	hub *websocket.Hub
}

func (n notifier) broadcast(entity, action, id string, extra map[string]any) {
	if n.hub != nil {
		n.hub.Broadcast(websocket.NewMessage(entity, action, id, extra))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
