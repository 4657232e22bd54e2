// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"isstrack/internal/adapter/events"
	"isstrack/internal/domain/fact"
	"isstrack/internal/domain/tracking"
)

// Client message types
const (
	MessageFactRevealed = "fact.revealed"
	MessageSnapshot     = "snapshot"
)

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	conn              *websocket.Conn
	send              chan []byte
	handler           *WebSocketHandler
	natsSubscriptions []*nats.Subscription

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams tracker events from NATS to browser clients
type WebSocketHandler struct {
	natsConn *nats.Conn
	topic    string
	tracker  *TrackerHandler
	facts    fact.Provider
	config   WebSocketConfig
	logger   *zap.Logger
}

// NewWebSocketHandler creates a new websocket handler. natsConn may be nil,
// in which case upgrades are refused.
func NewWebSocketHandler(natsConn *nats.Conn, topic string, tracker tracking.Reader, facts fact.Provider, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		natsConn: natsConn,
		topic:    topic,
		tracker:  NewTrackerHandler(tracker, facts),
		facts:    facts,
		config:   DefaultWebSocketConfig(),
		logger:   logger,
	}
}

// ServeHTTP upgrades the connection and relays tracker events
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.natsConn == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Live updates are not available")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	client := &WebSocketClient{
		conn:    conn,
		send:    make(chan []byte, 256),
		handler: h,
	}

	if err := client.subscribe(); err != nil {
		h.logger.Error("Failed to subscribe to tracker events", zap.Error(err))
		client.closeConnection()
		return
	}

	go client.writePump()
	go client.readPump()

	if err := client.sendSnapshot("welcome"); err != nil {
		h.logger.Warn("Failed to send welcome message", zap.Error(err))
	}

	h.logger.Debug("New WebSocket connection", zap.String("remote", r.RemoteAddr))
}

// readPump reads client messages until the connection fails
func (c *WebSocketClient) readPump() {
	config := c.handler.config

	defer c.closeConnection()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.handler.logger.Warn("WebSocket error", zap.Error(err))
			}
			break
		}

		c.processIncomingMessage(message)
	}
}

// writePump pumps queued messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := c.handler.config
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processIncomingMessage handles a client message
func (c *WebSocketClient) processIncomingMessage(message []byte) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		c.handler.logger.Debug("Failed to parse WebSocket message", zap.Error(err))
		return
	}

	switch msg.Type {
	case MessageFactRevealed:
		if c.handler.facts.Current() != nil {
			c.handler.facts.MarkRevealed()
		}

	case MessageSnapshot:
		if err := c.sendSnapshot(MessageSnapshot); err != nil {
			c.handler.logger.Debug("Failed to send snapshot", zap.Error(err))
		}

	default:
		c.handler.logger.Debug("Unknown message type", zap.String("type", msg.Type))
	}
}

// subscribe relays every event under the tracker topic to this client
func (c *WebSocketClient) subscribe() error {
	sub, err := c.handler.natsConn.Subscribe(events.Wildcard(c.handler.topic), func(msg *nats.Msg) {
		c.enqueue(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.handler.topic, err)
	}
	c.natsSubscriptions = append(c.natsSubscriptions, sub)

	return nil
}

func (c *WebSocketClient) sendSnapshot(msgType string) error {
	data, err := json.Marshal(map[string]interface{}{
		"type":  msgType,
		"time":  time.Now().UTC(),
		"state": c.handler.tracker.snapshot(),
	})
	if err != nil {
		return err
	}

	c.enqueue(data)
	return nil
}

// enqueue drops the message when the client is gone or too slow
func (c *WebSocketClient) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.handler.logger.Debug("Dropping message for slow WebSocket client")
	}
}

// closeConnection closes the WebSocket connection and cleans up resources
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		for _, sub := range c.natsSubscriptions {
			sub.Unsubscribe()
		}

		c.conn.Close()

		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		c.handler.logger.Debug("WebSocket connection closed")
	})
}
