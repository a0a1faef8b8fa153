package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/studio/internal/telemetry"
	"github.com/vango-dev/studio/pkg/preview"
)

const writeWait = 5 * time.Second

// hubClient serializes writes to one connection.
type hubClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *hubClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub pushes host events to connected host UIs over WebSocket.
type Hub struct {
	clients  map[*hubClient]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  *telemetry.Metrics

	// welcome returns the events sent to a client right after it connects.
	welcome func() []preview.Event
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger, metrics *telemetry.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*hubClient]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // the studio is a local tool
			},
		},
		logger:  logger.With("component", "hub"),
		metrics: metrics,
	}
}

// HandleWebSocket upgrades the request and keeps the client registered
// until it disconnects. Messages from the client are ignored.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "error", err)
		return
	}
	client := &hubClient{conn: conn}

	if h.welcome != nil {
		for _, ev := range h.welcome() {
			if data, err := json.Marshal(ev); err == nil {
				client.write(data)
			}
		}
	}

	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetHostClients(n)
	h.logger.Debug("host connected", "clients", n)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(client)
}

func (h *Hub) remove(client *hubClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	n := len(h.clients)
	h.mu.Unlock()

	client.conn.Close()
	if ok {
		h.metrics.SetHostClients(n)
		h.logger.Debug("host disconnected", "clients", n)
	}
}

// Broadcast sends ev to every client. Clients that cannot be written to
// are dropped.
func (h *Hub) Broadcast(ev preview.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("cannot encode event", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*hubClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.write(data); err != nil {
			h.remove(client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*hubClient]bool)
	h.mu.Unlock()

	for client := range clients {
		client.conn.Close()
	}
	h.metrics.SetHostClients(0)
}
