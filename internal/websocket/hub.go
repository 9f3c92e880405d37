package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"consistai-backend/internal/models"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type tokenParser interface {
	ParseSessionToken(token string) (uuid.UUID, error)
}

// client is one websocket connection. Only writePump writes to conn.
type client struct {
	sessionID uuid.UUID
	conn      *websocket.Conn
	send      chan []byte
}

// Hub streams session updates to connected clients. With a Redis client the
// updates travel through pub/sub so every instance sees them; otherwise they
// are delivered in process.
type Hub struct {
	mu          sync.Mutex
	clients     map[uuid.UUID]map[*client]struct{}
	redisClient *redis.Client
	tokens      tokenParser
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

func NewHub(redisClient *redis.Client, tokens tokenParser) *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID]map[*client]struct{}),
		redisClient: redisClient,
		tokens:      tokens,
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
	}
}

func channelName(sessionID uuid.UUID) string {
	return "session_updates:" + sessionID.String()
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.tokens.ParseSessionToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{sessionID: sessionID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go h.writePump(c)
	go h.readPump(c)
}

// PublishSession sends the new session state to every client of that session.
// It never blocks on a client.
func (h *Hub) PublishSession(ctx context.Context, s models.Session) {
	data, err := json.Marshal(models.WSMessage{Type: "session_update", Payload: s})
	if err != nil {
		slog.Error("Failed to encode session update", "session_id", s.ID, "error", err)
		return
	}

	if h.redisClient != nil {
		if err := h.redisClient.Publish(ctx, channelName(s.ID), data).Err(); err != nil {
			slog.Warn("Failed to publish session update", "session_id", s.ID, "error", err)
		}
		return
	}

	h.broadcast(s.ID, data)
}

func (h *Hub) ConnectionCount(sessionID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.sessionID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.sessionID] = set
	}
	set[c] = struct{}{}

	// Start pub/sub subscription for the first connection of this session
	if h.redisClient != nil && len(set) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[c.sessionID] = cancel
		go h.subscribeToPubSub(ctx, c.sessionID)
	}

	slog.Debug("WebSocket connected", "session_id", c.sessionID, "total", len(set))
}

// unregister removes c and closes its send queue. Safe to call more than once.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	set, ok := h.clients[c.sessionID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}

	delete(set, c)
	close(c.send)

	if len(set) == 0 {
		delete(h.clients, c.sessionID)
		if cancel, ok := h.cancelFuncs[c.sessionID]; ok {
			cancel()
			delete(h.cancelFuncs, c.sessionID)
		}
	}

	slog.Debug("WebSocket disconnected", "session_id", c.sessionID)
}

func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump drains the send queue. A closed queue or a failed write closes the
// connection, which in turn ends readPump.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Debug("WebSocket write failed", "session_id", c.sessionID, "error", err)
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *Hub) subscribeToPubSub(ctx context.Context, sessionID uuid.UUID) {
	pubsub := h.redisClient.Subscribe(ctx, channelName(sessionID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(sessionID, []byte(msg.Payload))
		}
	}
}

// broadcast queues data for every client of the session. A client whose queue
// is full has stopped reading and is dropped.
func (h *Hub) broadcast(sessionID uuid.UUID, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[sessionID] {
		select {
		case c.send <- data:
		default:
			slog.Warn("Dropping slow WebSocket client", "session_id", sessionID)
			h.removeLocked(c)
		}
	}
}

// Close drops every connection and subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
	for id, cancel := range h.cancelFuncs {
		cancel()
		delete(h.cancelFuncs, id)
	}
}
