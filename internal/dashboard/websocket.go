package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/moviesearch/internal/search"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket runs one search per incoming message until the client
// disconnects.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.logger.Warn("websocket read", "error", err)
			}
			return
		}

		var req searchRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			d.send(conn, searchResponse{Type: "error", Results: []search.Result{}, Error: "invalid message format"})
			continue
		}

		resp, _ := d.runSearch(r.Context(), req)
		d.send(conn, resp)
	}
}

func (d *Dashboard) send(conn *websocket.Conn, resp searchResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		d.logger.Warn("websocket write", "error", err)
	}
}
