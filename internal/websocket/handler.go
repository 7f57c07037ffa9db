package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades the request and runs it as a hub client until the
// connection or the hub closes. Browsers from other hosts are refused unless
// their host matches one of originPatterns.
func HandleWebSocket(hub *Hub, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: originPatterns}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			logger.Warn("websocket accept", "error", err, "remote", r.RemoteAddr)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn)
		client.Run(r.Context())
		conn.Close(ws.StatusNormalClosure, "")
	}
}
