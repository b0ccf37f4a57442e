package stores

import (
	"sync"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/support"
)

// CaseStore holds the in-memory support case collection.
type CaseStore struct {
	cases       []*support.Case
	lastUpdated time.Time
	mu          sync.RWMutex
}

// NewCaseStore creates an empty case store.
func NewCaseStore() *CaseStore {
	return &CaseStore{
		cases: make([]*support.Case, 0),
	}
}

// ReplaceAll swaps the entire collection, preserving the given order.
func (cs *CaseStore) ReplaceAll(cases []*support.Case) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cases = make([]*support.Case, 0, len(cases))
	cs.cases = append(cs.cases, cases...)
	cs.lastUpdated = time.Now().UTC()
}

// Append adds a case to the end of the collection.
func (cs *CaseStore) Append(c *support.Case) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cases = append(cs.cases, c)
	cs.lastUpdated = time.Now().UTC()
}

// All returns a copy of the collection in insertion order.
func (cs *CaseStore) All() []*support.Case {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	out := make([]*support.Case, len(cs.cases))
	copy(out, cs.cases)
	return out
}

// Get returns the case with the given id, or nil.
func (cs *CaseStore) Get(id string) *support.Case {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	for _, c := range cs.cases {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Update replaces the case with matching id. It reports whether a case with
// that id was present.
func (cs *CaseStore) Update(updated *support.Case) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for i, c := range cs.cases {
		if c.ID == updated.ID {
			cs.cases[i] = updated
			cs.lastUpdated = time.Now().UTC()
			return true
		}
	}
	return false
}

// UpdateStatus changes only the status of the case with matching id. It
// reports whether a case with that id was present.
func (cs *CaseStore) UpdateStatus(id string, status support.Status) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for _, c := range cs.cases {
		if c.ID == id {
			c.Status = status
			cs.lastUpdated = time.Now().UTC()
			return true
		}
	}
	return false
}

// Delete removes the case with matching id. It reports whether a case with
// that id was present.
func (cs *CaseStore) Delete(id string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for i, c := range cs.cases {
		if c.ID == id {
			cs.cases = append(cs.cases[:i], cs.cases[i+1:]...)
			cs.lastUpdated = time.Now().UTC()
			return true
		}
	}
	return false
}

// Count returns the number of cases currently held.
func (cs *CaseStore) Count() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.cases)
}

// LastUpdated reports when the collection last changed.
func (cs *CaseStore) LastUpdated() time.Time {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.lastUpdated
}
