// Package sse provides Server-Sent Events support for the live notification feed.
package sse

import (
	"encoding/json"
	"sync"

	"crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventConnected           EventType = "connected"
	EventNotificationCreated EventType = "notification_created"
	EventNotificationsRead   EventType = "notifications_read"
)

const clientBufferSize = 32

// Event represents an SSE event payload
type Event struct {
	Type    EventType   `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	id     uuid.UUID
	events chan Event
}

// Service manages SSE connections and broadcasts feed events to every client.
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID]*client),
		log:     log,
	}
}

// addClient registers a new client connection
func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.id] = c
}

// removeClient unregisters a client connection. Clients already dropped by
// Close are left alone.
func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.id]; !ok {
		return
	}
	delete(s.clients, c.id)
	close(c.events)
}

// ClientCount reports the number of connected clients.
func (s *Service) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Publish broadcasts an event to every connected client. Slow clients whose
// buffer is full miss the event.
func (s *Service) Publish(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse event buffer full", "client", c.id, "type", event.Type)
		}
	}

	s.log.Debug("sse event published", "type", event.Type, "clients", len(s.clients))
}

// Handler returns a Gin handler for SSE connections
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			id:     uuid.New(),
			events: make(chan Event, clientBufferSize),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent(string(EventConnected), gin.H{"clientId": cl.id})
		c.Writer.Flush()

		s.log.Debug("sse client connected", "client", cl.id)

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Debug("sse client disconnected", "client", cl.id)
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, err := json.Marshal(event)
				if err != nil {
					s.log.Error("sse event encoding failed", "error", err, "type", event.Type)
					continue
				}
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close disconnects every client.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		close(c.events)
	}
	s.clients = make(map[uuid.UUID]*client)
}
