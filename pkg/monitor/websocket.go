package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.webaccept/pkg/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	clientSendSize = 64
)

// Message kinds sent to websocket subscribers.
const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
)

// Message is the envelope written to every subscriber. A new
// subscriber first receives a snapshot, then one message per event.
type Message struct {
	Kind      string         `json:"kind"`
	Event     *RunEvent      `json:"event,omitempty"`
	Dashboard *DashboardView `json:"dashboard,omitempty"`
}

// Hub fans run events out to websocket subscribers.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	upgrader  websocket.Upgrader
	dashboard *Dashboard
	logger    logging.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// NewHub creates a hub whose subscribers are greeted with a snapshot
// of dashboard. A nil logger discards hub diagnostics.
func NewHub(dashboard *Dashboard, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	return &Hub{
		clients:   make(map[*client]struct{}),
		dashboard: dashboard,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the request and registers the subscriber.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			logging.ErrorField(err),
		)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientSendSize),
	}

	snap := h.dashboard.Snapshot()
	greeting, err := json.Marshal(Message{Kind: MessageSnapshot, Dashboard: &snap})
	if err != nil {
		h.logger.Error("encode snapshot", logging.ErrorField(err))
		conn.Close()
		return
	}

	// The snapshot is queued under the lock so broadcasts cannot
	// overtake it.
	h.mu.Lock()
	c.send <- greeting
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("websocket subscriber connected",
		logging.StringField("remote_addr", r.RemoteAddr),
	)

	go h.writePump(c)
	go h.readPump(c)
}

// Broadcast sends event to every subscriber. Subscribers whose
// buffer is full are dropped.
func (h *Hub) Broadcast(event RunEvent) {
	data, err := json.Marshal(Message{Kind: MessageEvent, Event: &event})
	if err != nil {
		h.logger.Error("encode event", logging.ErrorField(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			c.close()
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

// readPump discards inbound frames and notices disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure,
			) {
				h.logger.Debug("websocket read", logging.ErrorField(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
