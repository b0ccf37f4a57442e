package snapshot

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
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

	store, err := NewStore(filepath.Join(t.TempDir(), "data", "snapshots.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_ReadMissingKey(t *testing.T) {
	store := newTestStore(t)

	value, found, err := store.Read("supportAppLeads")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestStore_WriteThenRead(t *testing.T) {
	store := newTestStore(t)

	payload := []byte(`[{"ckt":"CKT001","cust_name":"Acme Corp"}]`)
	require.NoError(t, store.Write("supportAppLeads", payload))

	value, found, err := store.Read("supportAppLeads")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, payload, value)
}

func TestStore_WriteReplacesValue(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Write("supportAppCases", []byte(`["old"]`)))
	require.NoError(t, store.Write("supportAppCases", []byte(`["new"]`)))

	value, found, err := store.Read("supportAppCases")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte(`["new"]`), value)
}

func TestStore_KeysAreIndependent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Write("supportAppLeads", []byte(`["leads"]`)))
	require.NoError(t, store.Write("supportAppCases", []byte(`["cases"]`)))

	leads, _, err := store.Read("supportAppLeads")
	require.NoError(t, err)
	cases, _, err := store.Read("supportAppCases")
	require.NoError(t, err)

	assert.NotEqual(t, leads, cases)
}
