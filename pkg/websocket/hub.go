package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/campuspool/carpool/pkg/logger"
)

// Hub maintains active client connections and fans events out to the
// per-ride topics those clients have joined.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *logger.Logger
}

// Event is the wire shape of everything pushed over a socket.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// RideTopic returns the broadcast topic name for a ride's conversation.
func RideTopic(rideID int64) string {
	return fmt.Sprintf("ride_%d", rideID)
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Client registered",
				logger.String("client_id", client.ID),
				logger.Int64("user_id", client.UserID),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Client unregistered",
					logger.String("client_id", client.ID),
				)
			}
			h.mu.Unlock()
		}
	}
}

// Register registers a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish sends an event to every client currently joined to the topic.
// Delivery is at-most-once: slow clients are skipped, nothing is queued.
func (h *Hub) Publish(topic string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", logger.Err(err), logger.String("topic", topic))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.InTopic(topic) {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Client send buffer full, event dropped",
				logger.String("topic", topic),
				logger.String("client_id", client.ID),
			)
		}
	}
}

// TopicSubscribers returns how many clients are joined to a topic.
func (h *Hub) TopicSubscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for client := range h.clients {
		if client.InTopic(topic) {
			count++
		}
	}
	return count
}

// ActiveConnections returns the number of connected clients.
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
