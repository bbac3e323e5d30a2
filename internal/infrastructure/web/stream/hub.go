package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"crypto-watcher/internal/application/dto"
	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/internal/infrastructure/logging"
	"crypto-watcher/internal/infrastructure/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 4
)

// Hub fans out every stored snapshot to connected websocket clients.
// A client that cannot keep up loses messages instead of slowing the refresh.
type Hub struct {
	upgrader websocket.Upgrader
	mapper   *dto.SnapshotMapper

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	latest  []byte
}

type client struct {
	conn     *websocket.Conn
	send     chan []byte
	remoteIP string
}

// NewHub creates a hub accepting connections from the given origins ("*" allows any)
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		mapper:  dto.NewSnapshotMapper(),
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		// same host is always allowed
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// OnSnapshot encodes the snapshot once and queues it for every client
func (h *Hub) OnSnapshot(snapshot *entities.Snapshot) {
	payload, err := json.Marshal(h.mapper.ToMarketsResponse(snapshot, nil))
	if err != nil {
		logging.ErrorWithError(context.Background(), "Failed to encode snapshot for stream", err, nil)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = payload

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			metrics.RecordStreamDrop()
			logging.Debug(context.Background(), "Stream client too slow, snapshot dropped", logging.Fields{
				logging.FieldRemoteIP: c.remoteIP,
			})
		}
	}
}

// ServeHTTP upgrades the connection and streams snapshots until the client leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		logging.WarnWithError(ctx, "WebSocket upgrade failed", err, nil)
		return
	}

	c := &client{
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		remoteIP: r.RemoteAddr,
	}
	if !h.register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	logging.Info(ctx, "Stream client connected", logging.Fields{
		logging.FieldRemoteIP: c.remoteIP,
		"clients":             h.Clients(),
	})

	go h.writePump(c)
	h.readPump(c)

	logging.Info(ctx, "Stream client disconnected", logging.Fields{
		logging.FieldRemoteIP: c.remoteIP,
	})
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	metrics.UpdateStreamClients(0)
	return nil
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if h.latest != nil {
		c.send <- h.latest
	}
	h.clients[c] = struct{}{}
	metrics.UpdateStreamClients(len(h.clients))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.UpdateStreamClients(len(h.clients))
	}
}

// readPump only consumes control frames; it returns when the peer goes away
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug(context.Background(), "Stream client closed unexpectedly", logging.Fields{
					logging.FieldRemoteIP: c.remoteIP,
					logging.FieldError:    err.Error(),
				})
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
