package realtime

import (
	"sync"
	"voluntariado-backend/utils/logger"
)

// DefaultBuffer is the number of events a subscriber may lag behind before it is dropped
const DefaultBuffer = 32

// Event is one server-sent event
type Event struct {
	Name string
	Data interface{}
}

// Client is one open stream of a user. Events is closed when the hub drops the client.
type Client struct {
	UserID int64
	Events chan Event
}

// Hub fans events out to the open streams of each user
type Hub struct {
	mu      sync.Mutex
	clients map[int64]map[*Client]struct{}
	buffer  int
	logger  logger.Logger
}

// NewHub creates a hub whose subscribers buffer up to buffer events
func NewHub(log logger.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		buffer:  buffer,
		logger:  log,
	}
}

// Subscribe opens a stream for userID. A user may hold several streams.
func (h *Hub) Subscribe(userID int64) *Client {
	c := &Client{UserID: userID, Events: make(chan Event, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.logger.Debugf("Realtime stream opened for user %d (%d open)", userID, len(h.clients[userID]))
	return c
}

// Unsubscribe closes the stream; it is safe to call after the hub dropped the client
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c)
}

// remove must be called with h.mu held
func (h *Hub) remove(c *Client) {
	streams, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := streams[c]; !ok {
		return
	}
	delete(streams, c)
	close(c.Events)
	if len(streams) == 0 {
		delete(h.clients, c.UserID)
	}
}

// Publish delivers the event to every open stream of userID without blocking.
// A stream whose buffer is full is dropped. It reports whether any stream received the event.
func (h *Hub) Publish(userID int64, event string, payload interface{}) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := false
	for c := range h.clients[userID] {
		select {
		case c.Events <- Event{Name: event, Data: payload}:
			delivered = true
		default:
			h.logger.Warnf("Realtime stream of user %d is not draining, dropping it", userID)
			h.remove(c)
		}
	}
	return delivered
}

// IsOnline reports whether userID has at least one open stream
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID]) > 0
}

// OnlineUsers returns the number of users with an open stream
func (h *Hub) OnlineUsers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close drops every stream
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, streams := range h.clients {
		for c := range streams {
			h.remove(c)
		}
	}
}
