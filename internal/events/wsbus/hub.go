// internal/events/wsbus/hub.go
// WebSocket fan-out for the event bus, adapted from the teacher's
// internal/websocket.Hub: connected dashboard clients mirror internal/events
// traffic but never mutate tournament state.

package wsbus

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/evenodd-league/tournament/internal/events"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub bridges an events.Bus to any number of websocket clients.
type Hub struct {
	bus    *events.Bus
	logger *zap.SugaredLogger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub that mirrors bus onto connected websocket clients.
func NewHub(bus *events.Bus, logger *zap.SugaredLogger) *Hub {
	return &Hub{bus: bus, logger: logger, clients: make(map[*client]struct{})}
}

// Run subscribes to the bus and forwards every event to all clients until
// the bus subscription is cancelled (call Run in its own goroutine).
func (h *Hub) Run() {
	ch, cancel := h.bus.Subscribe()
	defer cancel()
	for evt := range ch {
		data, err := json.Marshal(evt)
		if err != nil {
			h.logger.Warnw("failed to marshal event", "err", err)
			continue
		}
		h.broadcast(data)
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.removeLocked(c)
		}
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

// HandleUpgrade upgrades an HTTP GET to a websocket connection subscribed
// to the event stream. Mount at GET /events.
func (h *Hub) HandleUpgrade(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "err", err)
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, 32)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go h.writePump(cl)
	h.readPump(cl)
}

// readPump drains and discards client frames; the stream is read-only, but
// we still need to notice disconnects and respond to control frames.
func (h *Hub) readPump(cl *client) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(cl)
		h.mu.Unlock()
	}()
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	for msg := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
