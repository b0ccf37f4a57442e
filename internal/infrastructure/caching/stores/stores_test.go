package stores

import (
	"fmt"
	"sync"
	"testing"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/directory"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/support"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadStore(t *testing.T) {
	t.Run("ReplaceAll Rebuilds Index", func(t *testing.T) {
		store := NewLeadStore()
		store.ReplaceAll([]*directory.Lead{
			{Ckt: "CKT001", CustName: "Acme"},
			{Ckt: "CKT002", CustName: "Globex"},
		})

		assert.Equal(t, 2, store.Count())
		require.NotNil(t, store.GetByCkt("CKT002"))
		assert.Equal(t, "Globex", store.GetByCkt("CKT002").CustName)

		store.ReplaceAll([]*directory.Lead{{Ckt: "CKT003"}})
		assert.Equal(t, 1, store.Count())
		assert.Nil(t, store.GetByCkt("CKT001"), "old entries drop from the index")
	})

	t.Run("All Returns A Copy", func(t *testing.T) {
		store := NewLeadStore()
		store.Append(&directory.Lead{Ckt: "CKT001"})

		leads := store.All()
		leads[0] = nil
		assert.NotNil(t, store.GetByCkt("CKT001"))
		assert.Equal(t, 1, store.Count())
	})

	t.Run("Concurrent Access", func(t *testing.T) {
		store := NewLeadStore()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func(n int) {
				defer wg.Done()
				store.Append(&directory.Lead{Ckt: fmt.Sprintf("CKT%03d", n)})
			}(i)
			go func() {
				defer wg.Done()
				_ = store.All()
				_ = store.Count()
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, store.Count())
	})
}

func TestCaseStore(t *testing.T) {
	t.Run("Update Replaces By ID", func(t *testing.T) {
		store := NewCaseStore()
		store.Append(&support.Case{ID: "c-1", LeadCkt: "CKT001", Status: support.StatusPending})

		ok := store.Update(&support.Case{ID: "c-1", LeadCkt: "CKT001", Status: support.StatusOnHold, CaseRemarks: "waiting on parts"})
		require.True(t, ok)
		assert.Equal(t, support.StatusOnHold, store.Get("c-1").Status)
		assert.Equal(t, "waiting on parts", store.Get("c-1").CaseRemarks)

		assert.False(t, store.Update(&support.Case{ID: "missing"}))
	})

	t.Run("UpdateStatus Touches Only Status", func(t *testing.T) {
		store := NewCaseStore()
		store.Append(&support.Case{ID: "c-1", LeadCkt: "CKT001", Status: support.StatusPending, CaseRemarks: "original"})

		require.True(t, store.UpdateStatus("c-1", support.StatusCompleted))
		got := store.Get("c-1")
		assert.Equal(t, support.StatusCompleted, got.Status)
		assert.Equal(t, "original", got.CaseRemarks)

		assert.False(t, store.UpdateStatus("missing", support.StatusCompleted))
	})

	t.Run("Delete Preserves Order", func(t *testing.T) {
		store := NewCaseStore()
		store.Append(&support.Case{ID: "c-1"})
		store.Append(&support.Case{ID: "c-2"})
		store.Append(&support.Case{ID: "c-3"})

		require.True(t, store.Delete("c-2"))
		all := store.All()
		require.Len(t, all, 2)
		assert.Equal(t, "c-1", all[0].ID)
		assert.Equal(t, "c-3", all[1].ID)

		assert.False(t, store.Delete("c-2"), "double delete reports absence")
	})

	t.Run("LastUpdated Tracks Mutations", func(t *testing.T) {
		store := NewCaseStore()
		assert.True(t, store.LastUpdated().IsZero())

		store.Append(&support.Case{ID: "c-1"})
		assert.False(t, store.LastUpdated().IsZero())
	})
}

func TestUserStore(t *testing.T) {
	store := NewUserStore()
	store.ReplaceAll([]*user.User{
		{ID: "u-1", Username: "alice", Role: user.RoleAdmin},
		{ID: "u-2", Username: "bob", Role: user.RoleUser},
	})

	t.Run("FindByUsername", func(t *testing.T) {
		require.NotNil(t, store.FindByUsername("alice"))
		assert.Equal(t, "u-1", store.FindByUsername("alice").ID)
		assert.Nil(t, store.FindByUsername("mallory"))
	})

	t.Run("Get By ID", func(t *testing.T) {
		require.NotNil(t, store.Get("u-2"))
		assert.Equal(t, "bob", store.Get("u-2").Username)
		assert.Nil(t, store.Get("u-404"))
	})

	t.Run("Update Replaces Account", func(t *testing.T) {
		ok := store.Update(&user.User{ID: "u-2", Username: "bob", Role: user.RoleAdmin})
		require.True(t, ok)
		assert.Equal(t, user.RoleAdmin, store.Get("u-2").Role)
	})
}
