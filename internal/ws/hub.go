package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/application"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

// frame is the wire shape of every message pushed to clients.
type frame struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	TS      time.Time `json:"ts"`
}

type client struct {
	conn *websocket.Conn
	send chan frame
}

// Hub upgrades connections and broadcasts every domain event as a
// {type, payload, ts} JSON frame. Slow clients are dropped rather than
// letting a full send queue block publication.
type Hub struct {
	logger   *slog.Logger
	now      func() time.Time
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub constructs a hub. The origin check accepts every caller; access
// control happens upstream.
func NewHub(logger *slog.Logger, now func() time.Time) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Hub{
		logger: logger,
		now:    now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan frame, sendBufferSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	c.send <- frame{Type: "welcome", Payload: map[string]string{"message": "connected"}, TS: h.now()}

	go h.writePump(c)
	h.readPump(c)
}

// Broadcast implements the event fan-out. A client whose queue is full is
// disconnected so emission never blocks a mutation.
func (h *Hub) Broadcast(event application.Event) {
	msg := frame{Type: string(event.Kind), Payload: event.Payload, TS: h.now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client")
			h.removeLocked(c)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// enqueue delivers one frame to a still-registered client without blocking.
func (h *Hub) enqueue(c *client, msg frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(h.now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.remove(c)
			return
		}
	}
}

// readPump consumes inbound messages until the connection closes. The only
// recognised client message is {"type": "ping"}, answered with a pong frame.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var inbound struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &inbound); err != nil {
			continue
		}
		if inbound.Type == "ping" {
			h.enqueue(c, frame{Type: "pong", TS: h.now()})
		}
	}
}
