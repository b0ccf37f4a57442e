package stores

import (
	"sync"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
)

// UserStore holds the in-memory account collection.
type UserStore struct {
	users       []*user.User
	lastUpdated time.Time
	mu          sync.RWMutex
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make([]*user.User, 0),
	}
}

// ReplaceAll swaps the entire collection, preserving the given order.
func (us *UserStore) ReplaceAll(users []*user.User) {
	us.mu.Lock()
	defer us.mu.Unlock()

	us.users = make([]*user.User, 0, len(users))
	us.users = append(us.users, users...)
	us.lastUpdated = time.Now().UTC()
}

// Append adds a user to the end of the collection.
func (us *UserStore) Append(u *user.User) {
	us.mu.Lock()
	defer us.mu.Unlock()

	us.users = append(us.users, u)
	us.lastUpdated = time.Now().UTC()
}

// All returns a copy of the collection in insertion order.
func (us *UserStore) All() []*user.User {
	us.mu.RLock()
	defer us.mu.RUnlock()

	out := make([]*user.User, len(us.users))
	copy(out, us.users)
	return out
}

// FindByUsername returns the user with the exact username, or nil.
func (us *UserStore) FindByUsername(username string) *user.User {
	us.mu.RLock()
	defer us.mu.RUnlock()

	for _, u := range us.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// Get returns the user with the given id, or nil.
func (us *UserStore) Get(id string) *user.User {
	us.mu.RLock()
	defer us.mu.RUnlock()

	for _, u := range us.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// Update replaces the user with matching id. It reports whether a user with
// that id was present.
func (us *UserStore) Update(updated *user.User) bool {
	us.mu.Lock()
	defer us.mu.Unlock()

	for i, u := range us.users {
		if u.ID == updated.ID {
			us.users[i] = updated
			us.lastUpdated = time.Now().UTC()
			return true
		}
	}
	return false
}

// Count returns the number of users currently held.
func (us *UserStore) Count() int {
	us.mu.RLock()
	defer us.mu.RUnlock()
	return len(us.users)
}

// LastUpdated reports when the collection last changed.
func (us *UserStore) LastUpdated() time.Time {
	us.mu.RLock()
	defer us.mu.RUnlock()
	return us.lastUpdated
}
