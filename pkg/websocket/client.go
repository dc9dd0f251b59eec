package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/campuspool/carpool/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// JoinAuthorizer decides whether the connected user may join a ride's topic.
// Wired to a conversation-membership lookup by the HTTP layer.
type JoinAuthorizer func(userID, rideID int64) bool

// Client represents a WebSocket client connection
type Client struct {
	ID     string
	UserID int64
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte

	canJoin JoinAuthorizer
	topics  map[string]bool
	mu      sync.RWMutex
	logger  *logger.Logger
}

// ClientMessage represents a message from the client
type ClientMessage struct {
	Type   string `json:"type"`
	RideID int64  `json:"ride_id,omitempty"`
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, userID int64, canJoin JoinAuthorizer, logger *logger.Logger) *Client {
	return &Client{
		ID:      uuid.NewString(),
		UserID:  userID,
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		canJoin: canJoin,
		topics:  make(map[string]bool),
		logger:  logger,
	}
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error",
					logger.Err(err),
					logger.String("client_id", c.ID),
				)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Client) handleMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Error("Failed to unmarshal client message",
			logger.Err(err),
			logger.String("client_id", c.ID),
		)
		return
	}

	switch msg.Type {
	case "join":
		c.Join(msg.RideID)
	case "leave":
		c.Leave(msg.RideID)
	case "ping":
		c.SendEvent(Event{Type: "pong"})
	default:
		c.logger.Warn("Unknown message type",
			logger.String("type", msg.Type),
			logger.String("client_id", c.ID),
		)
	}
}

// Join adds the client to a ride's topic after a membership check.
func (c *Client) Join(rideID int64) {
	if c.canJoin != nil && !c.canJoin(c.UserID, rideID) {
		c.logger.Warn("Join rejected, user is not a conversation member",
			logger.Int64("user_id", c.UserID),
			logger.Int64("ride_id", rideID),
		)
		c.SendEvent(Event{Type: "error", Data: "not a member of this ride's conversation"})
		return
	}

	topic := RideTopic(rideID)
	c.mu.Lock()
	c.topics[topic] = true
	c.mu.Unlock()

	c.logger.Info("Client joined topic",
		logger.String("client_id", c.ID),
		logger.String("topic", topic),
	)
	c.SendEvent(Event{Type: "joined", Data: rideID})
}

// Leave removes the client from a ride's topic.
func (c *Client) Leave(rideID int64) {
	topic := RideTopic(rideID)
	c.mu.Lock()
	delete(c.topics, topic)
	c.mu.Unlock()

	c.logger.Info("Client left topic",
		logger.String("client_id", c.ID),
		logger.String("topic", topic),
	)
}

// InTopic checks if the client has joined a topic.
func (c *Client) InTopic(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics[topic]
}

// SendEvent sends an event to this client only.
func (c *Client) SendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("Failed to marshal event",
			logger.Err(err),
			logger.String("client_id", c.ID),
		)
		return
	}

	select {
	case c.Send <- data:
	default:
		c.logger.Warn("Client send buffer full",
			logger.String("client_id", c.ID),
		)
	}
}
