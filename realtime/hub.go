package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Hub fans events out to WebSocket viewers. Each viewer gets its own writer
// goroutine and a bounded queue; a viewer whose queue is full is dropped.
// Thread-safe: Emit may be called from any goroutine.
type Hub struct {
	log        *slog.Logger
	upgrader   websocket.Upgrader
	sendBuffer int

	mu      sync.RWMutex
	clients map[*viewer]struct{}
}

type viewer struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

var _ Broadcaster = (*Hub)(nil)

// NewHub creates a hub. allowedOrigin restricts the browser origins allowed
// to connect; empty allows any origin.
func NewHub(log *slog.Logger, sendBuffer int, allowedOrigin string) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	h := &Hub{
		log:        log,
		sendBuffer: sendBuffer,
		clients:    make(map[*viewer]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowedOrigin == "" || origin == "" || origin == allowedOrigin
		},
	}
	return h
}

// Emit encodes the event once and queues it for every viewer.
func (h *Hub) Emit(event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		h.log.Error("encode broadcast", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.clients {
		select {
		case v.send <- data:
		default:
			h.log.Warn("viewer too slow, disconnecting", "viewer", v.id, "event", event)
			h.removeLocked(v)
		}
	}
	h.log.Debug("broadcast", "event", event, "viewers", len(h.clients))
}

// Count returns the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the viewer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	v := &viewer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
	}

	h.mu.Lock()
	h.clients[v] = struct{}{}
	h.mu.Unlock()
	h.log.Info("viewer connected", "viewer", v.id, "remote", r.RemoteAddr)

	go h.writePump(v)
	go h.readPump(v)
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.clients {
		h.removeLocked(v)
	}
}

func (h *Hub) remove(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(v)
}

// removeLocked closes the viewer's queue exactly once; the writer goroutine
// then sends a close frame and releases the connection.
func (h *Hub) removeLocked(v *viewer) {
	if _, ok := h.clients[v]; !ok {
		return
	}
	delete(h.clients, v)
	close(v.send)
}

// readPump only exists to observe pongs and disconnects; viewers never send
// anything meaningful.
func (h *Hub) readPump(v *viewer) {
	defer func() {
		h.remove(v)
		_ = v.conn.Close()
		h.log.Info("viewer disconnected", "viewer", v.id)
	}()

	v.conn.SetReadLimit(maxMessageSize)
	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(v *viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = v.conn.Close()
	}()

	for {
		select {
		case data, ok := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(v)
				return
			}
		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(v)
				return
			}
		}
	}
}
