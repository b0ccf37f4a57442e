package messaging

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T) *EventBroadcaster {
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

	b := NewEventBroadcaster(logger)
	go b.Run()
	return b
}

func awaitMessage(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast message")
		return nil
	}
}

func TestEventBroadcaster_PublishFansOut(t *testing.T) {
	b := newTestBroadcaster(t)
	defer b.Shutdown()

	first := &Client{Send: make(chan []byte, 8)}
	second := &Client{Send: make(chan []byte, 8)}
	b.Register(first)
	b.Register(second)
	require.Eventually(t, func() bool { return b.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	b.Publish(EventCaseCreated, map[string]string{"id": "c-1"}, true)

	for _, client := range []*Client{first, second} {
		var envelope Envelope
		require.NoError(t, json.Unmarshal(awaitMessage(t, client.Send), &envelope))
		assert.Equal(t, EventCaseCreated, envelope.Event)
		assert.Equal(t, "Case created", envelope.Message)
		assert.Equal(t, "remote", envelope.Persisted)
		assert.NotEmpty(t, envelope.Timestamp)
	}
}

func TestEventBroadcaster_LocalPersistenceIsMarked(t *testing.T) {
	b := newTestBroadcaster(t)
	defer b.Shutdown()

	client := &Client{Send: make(chan []byte, 8)}
	b.Register(client)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	b.Publish(EventLeadAdded, map[string]string{"ckt": "CKT001"}, false)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(awaitMessage(t, client.Send), &envelope))
	assert.Equal(t, "local", envelope.Persisted)
	assert.Equal(t, "Lead added (locally)", envelope.Message)
}

func TestEventBroadcaster_UnregisterStopsDelivery(t *testing.T) {
	b := newTestBroadcaster(t)
	defer b.Shutdown()

	client := &Client{Send: make(chan []byte, 8)}
	b.Register(client)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	b.Unregister(client)
	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	// The send channel is closed on unregister.
	_, open := <-client.Send
	assert.False(t, open)
}

func TestEventBroadcaster_RegisterAfterShutdownDoesNotBlock(t *testing.T) {
	b := newTestBroadcaster(t)
	b.Shutdown()

	client := &Client{Send: make(chan []byte, 8)}
	done := make(chan struct{})
	go func() {
		b.Register(client)
		b.Unregister(client)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Register blocked after shutdown")
	}

	_, open := <-client.Send
	assert.False(t, open, "a client registered after shutdown gets a closed send channel")
}

func TestEventBroadcaster_ShutdownDisconnectsClients(t *testing.T) {
	b := newTestBroadcaster(t)

	client := &Client{Send: make(chan []byte, 8)}
	b.Register(client)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	b.Shutdown()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-client.Send:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, b.ClientCount(), "count reports zero after shutdown")
}
