package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rmax-ai/wavefront/pkg/traversal"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The daemon binds to localhost; same-origin checks add nothing.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans state snapshots out to WebSocket subscribers. Writes are
// serialized per connection; a failed write drops the subscriber.
type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]*sync.Mutex
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]*sync.Mutex)}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = &sync.Mutex{}
	h.mu.Unlock()
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *hub) broadcast(snap traversal.Snapshot) {
	h.mu.Lock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.conns))
	for conn, lock := range h.conns {
		targets[conn] = lock
	}
	h.mu.Unlock()

	for conn, lock := range targets {
		lock.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteJSON(snap)
		lock.Unlock()
		if err != nil {
			slog.Debug("dropping stream subscriber", "error", err)
			h.remove(conn)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// handleStream upgrades the connection and pushes a snapshot
// immediately, then after every committed change.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.hub.add(conn)

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.remove(conn)
				return
			}
		}
	}()

	s.hub.broadcast(s.run.Snapshot())
}
