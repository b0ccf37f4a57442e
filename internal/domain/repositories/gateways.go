// Package repositories defines the persistence contracts for the data access
// facade. Each collection has a remote gateway (the system of record when
// reachable) and share a snapshot store (the client-local durable mirror).
// These interfaces abstract the persistence details, ensuring the application
// services are clean and decoupled from the database.
package repositories

import (
	"errors"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/directory"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/support"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
)

// ErrRemoteUnavailable is returned by gateways when no remote connection is
// configured or the remote store cannot be reached. Services treat it as a
// signal to fall back to the local snapshot path.
var ErrRemoteUnavailable = errors.New("remote store unavailable")

// Outcome describes which persistence path served a mutation. Callers see
// success either way; the durability guarantee differs.
type Outcome struct {
	PersistedRemotely bool `json:"persistedRemotely"`
}

// LeadGateway defines remote-store operations over the lead collection.
// Absence is returned as nil, never as an error.
type LeadGateway interface {
	SelectAll(limit int) ([]*directory.Lead, error)
	Insert(lead *directory.Lead) (*directory.Lead, error)
	Search(query string, limit int) ([]*directory.Lead, error)
}

// CaseGateway defines remote-store operations over the case collection.
type CaseGateway interface {
	SelectAll(limit int) ([]*support.Case, error)
	Insert(c *support.Case) (*support.Case, error)
	Update(c *support.Case) error
	UpdateStatus(id string, status support.Status) error
	Delete(id string) error
}

// UserGateway defines remote-store operations over the user collection.
type UserGateway interface {
	SelectAll(limit int) ([]*user.User, error)
	Insert(u *user.User) (*user.User, error)
	UpdatePassword(id, passwordHash string) error
}

// Snapshot keys. Every write replaces the full serialized collection; local
// storage therefore always holds a complete, self-consistent snapshot as of
// the last local write.
const (
	SnapshotKeyLeads = "supportAppLeads"
	SnapshotKeyCases = "supportAppCases"
	SnapshotKeyUsers = "supportAppUsers"
)

// SnapshotStore is the client-local durable key/value mirror.
type SnapshotStore interface {
	Read(key string) ([]byte, bool, error)
	Write(key string, value []byte) error
}
