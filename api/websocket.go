package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/paw-chain/pawswap/x/shared/events"
)

// AllChannels subscribes a client to every module.
const AllChannels = "*"

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS handler in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSMessage is one frame sent to clients. Channel is the module that
// produced the event.
type WSMessage struct {
	Type      string      `json:"type"`
	Channel   string      `json:"channel"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// WSSubscribeMessage is sent by clients to change their subscriptions.
type WSSubscribeMessage struct {
	Type    string `json:"type"` // subscribe or unsubscribe
	Channel string `json:"channel"`
}

// WebSocketHub streams committed module events to websocket clients. It is an
// events.Emitter: Emit never blocks the keeper that produced the event.
type WebSocketHub struct {
	logger     log.Logger
	clients    map[*WebSocketClient]bool
	broadcast  chan WSMessage
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	done       chan struct{}
	bufferSize int
	dropped    atomic.Int64
	mu         sync.RWMutex
}

// WebSocketClient represents a WebSocket client
type WebSocketClient struct {
	hub           *WebSocketHub
	conn          *websocket.Conn
	send          chan WSMessage
	quit          chan struct{}
	quitOnce      sync.Once
	subscriptions map[string]bool
	mu            sync.RWMutex
}

// NewWebSocketHub creates a hub whose queues hold bufferSize messages.
func NewWebSocketHub(logger log.Logger, bufferSize int) *WebSocketHub {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &WebSocketHub{
		logger:     logger.With("component", "websocket"),
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan WSMessage, bufferSize),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		done:       make(chan struct{}),
		bufferSize: bufferSize,
	}
}

// Emit queues ev for delivery. Events are dropped when the queue is full.
func (h *WebSocketHub) Emit(ev events.Event) {
	msg := WSMessage{Type: ev.Type, Channel: ev.Module, Data: ev, Timestamp: ev.Time}
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
		h.logger.Debug("broadcast queue full, dropping event", "type", ev.Type)
	}
}

// Run delivers queued messages until ctx is done, then disconnects every
// client.
func (h *WebSocketHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client connected", "total", total)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.deliver(message)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *WebSocketHub) deliver(message WSMessage) {
	var slow []*WebSocketClient
	h.mu.RLock()
	for client := range h.clients {
		if !client.subscribed(message.Channel) {
			continue
		}
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// A client that cannot keep up is disconnected.
	for _, client := range slow {
		h.logger.Info("disconnecting slow websocket client")
		h.remove(client)
	}
}

func (h *WebSocketHub) remove(client *WebSocketClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
	}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", "total", total)
}

// GetConnectedClients returns the number of connected clients
func (h *WebSocketHub) GetConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of events discarded because the queue was full.
func (h *WebSocketHub) Dropped() int64 {
	return h.dropped.Load()
}

// handleWebSocket upgrades the connection and subscribes the client to the
// comma separated ?channels= list, or to every channel.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Info("websocket upgrade failed", "err", err)
		return
	}

	client := &WebSocketClient{
		hub:           s.wsHub,
		conn:          conn,
		send:          make(chan WSMessage, s.wsHub.bufferSize),
		quit:          make(chan struct{}),
		subscriptions: make(map[string]bool),
	}
	channels := c.DefaultQuery("channels", AllChannels)
	for _, ch := range strings.Split(channels, ",") {
		if ch = strings.TrimSpace(ch); ch != "" {
			client.subscriptions[ch] = true
		}
	}

	select {
	case s.wsHub.register <- client:
	case <-s.wsHub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *WebSocketClient) close() {
	c.quitOnce.Do(func() { close(c.quit) })
}

func (c *WebSocketClient) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[AllChannels] || c.subscriptions[channel]
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Info("websocket read error", "err", err)
			}
			return
		}

		var msg WSSubscribeMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendMessage(WSMessage{Type: "error", Data: "malformed message", Timestamp: time.Now().UTC()})
			continue
		}
		c.handleMessage(msg)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.quit:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// handleMessage handles incoming WebSocket messages
func (c *WebSocketClient) handleMessage(msg WSSubscribeMessage) {
	var status string
	c.mu.Lock()
	switch msg.Type {
	case "subscribe":
		c.subscriptions[msg.Channel] = true
		status = "subscribed"
	case "unsubscribe":
		delete(c.subscriptions, msg.Channel)
		status = "unsubscribed"
	}
	c.mu.Unlock()

	if status == "" {
		c.sendMessage(WSMessage{Type: "error", Data: "unknown message type " + msg.Type, Timestamp: time.Now().UTC()})
		return
	}
	c.sendMessage(WSMessage{
		Type:    status,
		Channel: msg.Channel,
		Data: map[string]interface{}{
			"channel": msg.Channel,
			"status":  status,
		},
		Timestamp: time.Now().UTC(),
	})
}

// sendMessage sends a message to this specific client
func (c *WebSocketClient) sendMessage(msg WSMessage) {
	select {
	case c.send <- msg:
	default:
	}
}
