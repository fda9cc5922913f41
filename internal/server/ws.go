package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/wirefeed/holetrack/internal/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// CentroidsHandler streams tracker observations to websocket clients as JSON.
type CentroidsHandler struct {
	hub *Hub
}

// NewCentroidsHandler creates a new CentroidsHandler reading from hub.
func NewCentroidsHandler(hub *Hub) *CentroidsHandler {
	return &CentroidsHandler{hub: hub}
}

// ServeHTTP upgrades the connection and forwards events until either side hangs up.
func (h *CentroidsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// Drain client messages so close frames are noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug("websocket write failed", "err", err)
				return
			}
		}
	}
}
