// Package livefeed pushes diagnostics to connected editor/LSP clients as
// they are emitted during a watch-mode build, so an editor can show
// red-squiggle feedback without polling the build directory.
//
// Grounded on the teacher's pkg/websocket/server.go Hub (a
// register/unregister/broadcast channel trio feeding a set of
// connections), trimmed to vexc's one-way diagnostic-push use case — no
// rooms, no inbound message handling.
package livefeed

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Update is one pushed message: the file that was (re)compiled and its
// rendered diagnostics, empty on a clean build.
type Update struct {
	File        string   `json:"file"`
	Success     bool     `json:"success"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// Hub tracks connected clients and broadcasts Updates to all of them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// ServeHTTP upgrades the connection and registers it for broadcasts.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast pushes an Update to every connected client, dropping any
// connection that fails to accept the write.
func (h *Hub) Broadcast(u Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
