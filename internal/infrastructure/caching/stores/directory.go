// Package stores provides the in-memory working copies of the lead, case, and
// user collections. Reads are answered from memory; mutations are applied
// here first and mirrored to persistence by the application services.
package stores

import (
	"sync"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/directory"
)

// LeadStore holds the in-memory lead collection, keyed by circuit code for
// fast exact lookups while preserving insertion order for listings.
type LeadStore struct {
	leads       []*directory.Lead
	byCkt       map[string]*directory.Lead
	lastUpdated time.Time
	mu          sync.RWMutex
}

// NewLeadStore creates an empty lead store.
func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads: make([]*directory.Lead, 0),
		byCkt: make(map[string]*directory.Lead),
	}
}

// ReplaceAll swaps the entire collection, preserving the given order.
func (ls *LeadStore) ReplaceAll(leads []*directory.Lead) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.leads = make([]*directory.Lead, 0, len(leads))
	ls.byCkt = make(map[string]*directory.Lead, len(leads))
	for _, lead := range leads {
		ls.leads = append(ls.leads, lead)
		ls.byCkt[lead.Ckt] = lead
	}
	ls.lastUpdated = time.Now().UTC()
}

// Append adds a lead to the end of the collection.
func (ls *LeadStore) Append(lead *directory.Lead) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.leads = append(ls.leads, lead)
	ls.byCkt[lead.Ckt] = lead
	ls.lastUpdated = time.Now().UTC()
}

// All returns a copy of the collection in insertion order.
func (ls *LeadStore) All() []*directory.Lead {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	out := make([]*directory.Lead, len(ls.leads))
	copy(out, ls.leads)
	return out
}

// GetByCkt returns the lead with the exact circuit code, or nil.
func (ls *LeadStore) GetByCkt(ckt string) *directory.Lead {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.byCkt[ckt]
}

// Count returns the number of leads currently held.
func (ls *LeadStore) Count() int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return len(ls.leads)
}

// LastUpdated reports when the collection last changed.
func (ls *LeadStore) LastUpdated() time.Time {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.lastUpdated
}
