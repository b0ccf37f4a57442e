package services

import (
	"encoding/json"
	"testing"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/support"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/repositories"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/caching/stores"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaseFixture(t *testing.T, gateway *fakeCaseGateway, snapshots *memorySnapshots) (*CaseService, *stores.CaseStore, *recordingNotifier) {
	t.Helper()
	store := stores.NewCaseStore()
	notifier := &recordingNotifier{}
	svc := NewCaseService(setupTestLogger(t), setupTestTracker(), store, stores.NewLeadStore(), gateway, snapshots, notifier, nil)
	return svc, store, notifier
}

func testPrincipal() *user.Principal {
	return &user.Principal{ID: "user-1", Username: "engineer", Role: user.RoleUser}
}

func testCase(leadCkt string) *support.Case {
	return &support.Case{
		LeadCkt:      leadCkt,
		IPAddress:    "10.0.0.1",
		Connectivity: support.ConnectivityStable,
		AssignedDate: "2026-08-01T00:00:00Z",
		DueDate:      "2026-08-15T00:00:00Z",
		CaseRemarks:  "Link flapping at peak hours",
	}
}

func TestCaseService_AddCase(t *testing.T) {
	t.Run("Stamps Identity And Defaults", func(t *testing.T) {
		svc, store, notifier := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		stored, outcome, err := svc.AddCase(testPrincipal(), testCase("CKT001"))
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)
		assert.Equal(t, "user-1", stored.CreatedBy)
		assert.NotEmpty(t, stored.CreatedAt)
		assert.Equal(t, support.StatusPending, stored.Status)
		assert.True(t, outcome.PersistedRemotely)
		assert.Equal(t, 1, store.Count())

		events := notifier.Events()
		require.Len(t, events, 1)
		assert.Equal(t, messaging.EventCaseCreated, events[0].eventType)
	})

	t.Run("Requires A Principal", func(t *testing.T) {
		svc, _, _ := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		_, _, err := svc.AddCase(nil, testCase("CKT001"))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Rejects Missing Lead Circuit", func(t *testing.T) {
		svc, _, _ := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		_, _, err := svc.AddCase(testPrincipal(), testCase("  "))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Rejects Unknown Enums", func(t *testing.T) {
		svc, _, _ := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		bad := testCase("CKT001")
		bad.Status = "Escalated"
		_, _, err := svc.AddCase(testPrincipal(), bad)
		assert.ErrorIs(t, err, ErrValidation)

		bad = testCase("CKT001")
		bad.Connectivity = "Sometimes"
		_, _, err = svc.AddCase(testPrincipal(), bad)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Remote Failure Degrades To Local", func(t *testing.T) {
		svc, store, _ := newCaseFixture(t, &fakeCaseGateway{insertErr: errRemoteDown}, newMemorySnapshots())

		stored, outcome, err := svc.AddCase(testPrincipal(), testCase("CKT001"))
		require.NoError(t, err)
		assert.False(t, outcome.PersistedRemotely)
		assert.NotEmpty(t, stored.ID, "identity is assigned before the remote write")
		assert.Equal(t, 1, store.Count())
	})
}

func TestCaseService_UpdateCase(t *testing.T) {
	t.Run("Preserves Creation Stamps", func(t *testing.T) {
		svc, _, _ := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		stored, _, err := svc.AddCase(testPrincipal(), testCase("CKT001"))
		require.NoError(t, err)

		edited := *stored
		edited.CaseRemarks = "Replaced faulty SFP"
		edited.CreatedBy = "someone-else"
		edited.CreatedAt = "1999-01-01T00:00:00Z"

		updated, outcome, err := svc.UpdateCase(&edited)
		require.NoError(t, err)
		assert.True(t, outcome.PersistedRemotely)
		assert.Equal(t, "Replaced faulty SFP", updated.CaseRemarks)
		assert.Equal(t, stored.CreatedBy, updated.CreatedBy)
		assert.Equal(t, stored.CreatedAt, updated.CreatedAt)
	})

	t.Run("Unknown Case Is Not Found", func(t *testing.T) {
		svc, _, _ := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		missing := testCase("CKT001")
		missing.ID = "no-such-case"
		_, _, err := svc.UpdateCase(missing)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCaseService_UpdateCaseStatus(t *testing.T) {
	t.Run("Applies Valid Transition", func(t *testing.T) {
		svc, store, _ := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		stored, _, err := svc.AddCase(testPrincipal(), testCase("CKT001"))
		require.NoError(t, err)

		updated, outcome, err := svc.UpdateCaseStatus(stored.ID, support.StatusCompleted)
		require.NoError(t, err)
		assert.True(t, outcome.PersistedRemotely)
		assert.Equal(t, support.StatusCompleted, updated.Status)
		assert.Equal(t, support.StatusCompleted, store.Get(stored.ID).Status)
	})

	t.Run("Applies In Memory When Remote Update Fails", func(t *testing.T) {
		gateway := &fakeCaseGateway{}
		snapshots := newMemorySnapshots()
		svc, store, _ := newCaseFixture(t, gateway, snapshots)

		stored, _, err := svc.AddCase(testPrincipal(), testCase("CKT001"))
		require.NoError(t, err)

		gateway.statusErr = errRemoteDown
		updated, outcome, err := svc.UpdateCaseStatus(stored.ID, support.StatusOnHold)
		require.NoError(t, err)
		assert.False(t, outcome.PersistedRemotely)
		assert.Equal(t, support.StatusOnHold, updated.Status)
		assert.Equal(t, support.StatusOnHold, store.Get(stored.ID).Status)

		data, found, err := snapshots.Read(repositories.SnapshotKeyCases)
		require.NoError(t, err)
		require.True(t, found)
		var mirrored []*support.Case
		require.NoError(t, json.Unmarshal(data, &mirrored))
		require.Len(t, mirrored, 1)
		assert.Equal(t, support.StatusOnHold, mirrored[0].Status)
	})

	t.Run("Rejects Unknown Status", func(t *testing.T) {
		svc, _, _ := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		stored, _, err := svc.AddCase(testPrincipal(), testCase("CKT001"))
		require.NoError(t, err)

		_, _, err = svc.UpdateCaseStatus(stored.ID, "Archived")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Unknown Case Is Not Found", func(t *testing.T) {
		svc, _, _ := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		_, _, err := svc.UpdateCaseStatus("no-such-case", support.StatusCompleted)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCaseService_Lifecycle(t *testing.T) {
	// Open, complete, delete: the case must vanish from both the in-memory
	// collection and the mirrored snapshot.
	gateway := &fakeCaseGateway{}
	snapshots := newMemorySnapshots()
	svc, store, notifier := newCaseFixture(t, gateway, snapshots)

	stored, _, err := svc.AddCase(testPrincipal(), testCase("CKT001"))
	require.NoError(t, err)

	_, _, err = svc.UpdateCaseStatus(stored.ID, support.StatusCompleted)
	require.NoError(t, err)

	outcome, err := svc.DeleteCase(stored.ID)
	require.NoError(t, err)
	assert.True(t, outcome.PersistedRemotely)
	assert.Equal(t, []string{stored.ID}, gateway.deleted)

	assert.Nil(t, store.Get(stored.ID))
	assert.Equal(t, 0, store.Count())

	data, found, err := snapshots.Read(repositories.SnapshotKeyCases)
	require.NoError(t, err)
	require.True(t, found)
	var mirrored []*support.Case
	require.NoError(t, json.Unmarshal(data, &mirrored))
	assert.Empty(t, mirrored, "the snapshot mirrors the delete")

	events := notifier.Events()
	require.Len(t, events, 3)
	assert.Equal(t, messaging.EventCaseCreated, events[0].eventType)
	assert.Equal(t, messaging.EventCaseUpdated, events[1].eventType)
	assert.Equal(t, messaging.EventCaseDeleted, events[2].eventType)
}

func TestCaseService_LoadCases(t *testing.T) {
	t.Run("Remote Failure Falls Back To Snapshot", func(t *testing.T) {
		snapshots := newMemorySnapshots()

		seedSvc, _, _ := newCaseFixture(t, &fakeCaseGateway{}, snapshots)
		stored, _, err := seedSvc.AddCase(testPrincipal(), testCase("CKT001"))
		require.NoError(t, err)

		svc, store, _ := newCaseFixture(t, &fakeCaseGateway{selectErr: errRemoteDown}, snapshots)
		require.NoError(t, svc.LoadCases())
		assert.Equal(t, 1, store.Count())
		assert.NotNil(t, store.Get(stored.ID))
	})

	t.Run("Delete Of Missing Case Is Not Found", func(t *testing.T) {
		svc, _, _ := newCaseFixture(t, &fakeCaseGateway{}, newMemorySnapshots())

		_, err := svc.DeleteCase("no-such-case")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
