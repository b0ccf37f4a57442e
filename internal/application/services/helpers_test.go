package services

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/directory"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/support"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/require"
)

var errRemoteDown = errors.New("remote store unavailable")

func setupTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    true,
		OutputToConsole: false,
		LogDirectory:    t.TempDir(),
		JSONFormat:      true,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger
}

func setupTestTracker() *performance.Tracker {
	return performance.NewTracker(nil)
}

// memorySnapshots is an in-memory stand-in for the sqlite snapshot store.
type memorySnapshots struct {
	mu       sync.Mutex
	data     map[string][]byte
	writeErr error
	readErr  error
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: make(map[string][]byte)}
}

func (m *memorySnapshots) Read(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, false, m.readErr
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *memorySnapshots) Write(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data[key] = value
	return nil
}

// fakeLeadGateway simulates the remote lead store.
type fakeLeadGateway struct {
	rows      []*directory.Lead
	selectErr error
	insertErr error
	searchErr error
	inserted  []*directory.Lead
	searches  []string
}

func (f *fakeLeadGateway) SelectAll(limit int) ([]*directory.Lead, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	if len(f.rows) > limit {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func (f *fakeLeadGateway) Insert(lead *directory.Lead) (*directory.Lead, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, lead)
	return lead, nil
}

func (f *fakeLeadGateway) Search(query string, limit int) ([]*directory.Lead, error) {
	f.searches = append(f.searches, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var matched []*directory.Lead
	for _, lead := range f.rows {
		if strings.Contains(strings.ToLower(lead.Ckt), query) ||
			strings.Contains(strings.ToLower(lead.CustName), query) ||
			strings.Contains(strings.ToLower(lead.UsableIPAddress), query) {
			matched = append(matched, lead)
			if len(matched) == limit {
				break
			}
		}
	}
	return matched, nil
}

// fakeCaseGateway simulates the remote case store.
type fakeCaseGateway struct {
	rows      []*support.Case
	selectErr error
	insertErr error
	updateErr error
	statusErr error
	deleteErr error
	deleted   []string
}

func (f *fakeCaseGateway) SelectAll(limit int) ([]*support.Case, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.rows, nil
}

func (f *fakeCaseGateway) Insert(c *support.Case) (*support.Case, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.rows = append(f.rows, c)
	return c, nil
}

func (f *fakeCaseGateway) Update(c *support.Case) error {
	return f.updateErr
}

func (f *fakeCaseGateway) UpdateStatus(id string, status support.Status) error {
	return f.statusErr
}

func (f *fakeCaseGateway) Delete(id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeUserGateway simulates the remote user store.
type fakeUserGateway struct {
	rows        []*user.User
	selectErr   error
	insertErr   error
	passwordErr error
	inserted    []*user.User
}

func (f *fakeUserGateway) SelectAll(limit int) ([]*user.User, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.rows, nil
}

func (f *fakeUserGateway) Insert(u *user.User) (*user.User, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, u)
	return u, nil
}

func (f *fakeUserGateway) UpdatePassword(id, passwordHash string) error {
	return f.passwordErr
}

// recordingNotifier captures published events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	eventType string
	payload   any
	remote    bool
}

func (r *recordingNotifier) Publish(eventType string, payload any, persistedRemotely bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{eventType, payload, persistedRemotely})
}

func (r *recordingNotifier) Events() []publishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]publishedEvent(nil), r.events...)
}
