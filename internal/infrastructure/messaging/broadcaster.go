// Package messaging provides the concrete implementation of the websocket
// event broadcaster.
package messaging

import (
	"encoding/json"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

// Client represents a single connected event-stream client.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Envelope is the wire format for every published event.
type Envelope struct {
	Event     string `json:"event"`
	Message   string `json:"message"`
	Persisted string `json:"persisted"` // "remote" or "local"
	Timestamp string `json:"timestamp"`
	Payload   any    `json:"payload"`
}

// eventMessages maps event types to the display text shown to clients. A
// write that was only held locally gets a "(locally)" qualifier appended.
var eventMessages = map[string]string{
	EventCaseCreated: "Case created",
	EventCaseUpdated: "Case updated",
	EventCaseDeleted: "Case deleted",
	EventLeadAdded:   "Lead added",
}

func displayMessage(eventType string, persistedRemotely bool) string {
	message, ok := eventMessages[eventType]
	if !ok {
		message = eventType
	}
	if !persistedRemotely {
		message += " (locally)"
	}
	return message
}

var _ Broadcaster = (*EventBroadcaster)(nil)

// EventBroadcaster manages all connected clients and fans events out to them.
type EventBroadcaster struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	count      chan chan int
	logger     *logging.ChanneledLogger
	stop       chan struct{}
}

// NewEventBroadcaster creates a new broadcaster instance.
func NewEventBroadcaster(logger *logging.ChanneledLogger) *EventBroadcaster {
	return &EventBroadcaster{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		count:      make(chan chan int),
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *EventBroadcaster) Run() {
	b.logger.Events().Info("Event broadcaster is running")
	for {
		select {
		case <-b.stop:
			b.logger.Events().Info("Event broadcaster is shutting down")
			for client := range b.clients {
				close(client.Send)
				delete(b.clients, client)
			}
			return

		case client := <-b.register:
			b.clients[client] = true
			b.logger.Events().Debug("Event client registered", "clients", len(b.clients))

		case client := <-b.unregister:
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
				b.logger.Events().Debug("Event client unregistered", "clients", len(b.clients))
			}

		case reply := <-b.count:
			reply <- len(b.clients)

		case message := <-b.broadcast:
			for client := range b.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop it rather than stall the loop.
					delete(b.clients, client)
					close(client.Send)
					b.logger.Events().Warn("Event client channel full, disconnecting", "clients", len(b.clients))
				}
			}
		}
	}
}

// Publish serializes an event envelope and queues it for broadcast without
// blocking the caller.
func (b *EventBroadcaster) Publish(eventType string, payload any, persistedRemotely bool) {
	persisted := "local"
	if persistedRemotely {
		persisted = "remote"
	}

	message, err := json.Marshal(Envelope{
		Event:     eventType,
		Message:   displayMessage(eventType, persistedRemotely),
		Persisted: persisted,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		b.logger.Events().Error("Failed to marshal event envelope", "error", err.Error(), "event", eventType)
		return
	}

	select {
	case b.broadcast <- message:
	default:
		b.logger.Events().Warn("Broadcast queue full, event dropped", "event", eventType)
	}
}

// Register queues a client for registration. A no-op after shutdown, so
// handlers racing the broadcaster stop never block.
func (b *EventBroadcaster) Register(client *Client) {
	select {
	case b.register <- client:
	case <-b.stop:
		close(client.Send)
	}
}

// Unregister queues a client for unregistration.
func (b *EventBroadcaster) Unregister(client *Client) {
	select {
	case b.unregister <- client:
	case <-b.stop:
	}
}

// ClientCount returns the number of connected clients.
func (b *EventBroadcaster) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case b.count <- reply:
		return <-reply
	case <-b.stop:
		return 0
	}
}

// Shutdown stops the broadcaster loop and disconnects all clients.
func (b *EventBroadcaster) Shutdown() {
	close(b.stop)
}

// WritePump drains a client's send channel onto its websocket connection.
// It runs on the handler's goroutine and returns when the channel closes or
// a write fails.
func (b *EventBroadcaster) WritePump(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			b.logger.Events().Debug("Event client write failed", "error", err.Error())
			return
		}
	}

	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
