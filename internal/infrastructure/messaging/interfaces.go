// Package messaging defines interfaces for real-time communication.
package messaging

// Event types published to connected clients.
const (
	EventCaseCreated = "case_created"
	EventCaseUpdated = "case_updated"
	EventCaseDeleted = "case_deleted"
	EventLeadAdded   = "lead_added"
)

// Notifier publishes collection-change events to whoever is listening.
// Implementations must never block the caller.
type Notifier interface {
	Publish(eventType string, payload any, persistedRemotely bool)
}

// Broadcaster defines the interface for managing websocket client connections
// and broadcasting events.
type Broadcaster interface {
	Notifier
	Register(client *Client)
	Unregister(client *Client)
	ClientCount() int
	WritePump(client *Client)
}
