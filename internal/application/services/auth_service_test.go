package services

import (
	"testing"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/caching/stores"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T, gateway *fakeUserGateway, snapshots *memorySnapshots) (*AuthService, *stores.UserStore) {
	t.Helper()
	store := stores.NewUserStore()
	svc := NewAuthService(setupTestLogger(t), setupTestTracker(), store, gateway, snapshots)
	return svc, store
}

func hashedUser(t *testing.T, username, password, role string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	require.NoError(t, err)
	return &user.User{
		ID:           security.GenerateULID(),
		Username:     username,
		FullName:     "Test User",
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

func adminPrincipal() *user.Principal {
	return &user.Principal{ID: "admin-1", Username: "root", Role: user.RoleAdmin}
}

func TestAuthService_LoadUsers(t *testing.T) {
	t.Run("Seeds Bootstrap Admin When Empty", func(t *testing.T) {
		gateway := &fakeUserGateway{}
		svc, store := newAuthFixture(t, gateway, newMemorySnapshots())

		require.NoError(t, svc.LoadUsers())
		require.Equal(t, 1, store.Count())

		admin := store.FindByUsername("admin")
		require.NotNil(t, admin)
		assert.Equal(t, user.RoleAdmin, admin.Role)
		require.Len(t, gateway.inserted, 1, "the seed is offered to the remote store")
	})

	t.Run("Bootstrap Admin Can Log In With Default Credentials", func(t *testing.T) {
		svc, _ := newAuthFixture(t, &fakeUserGateway{}, newMemorySnapshots())
		require.NoError(t, svc.LoadUsers())

		result, err := svc.Login("admin", "admin123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, user.RoleAdmin, result.User.Role)
	})

	t.Run("Existing Accounts Suppress Seeding", func(t *testing.T) {
		gateway := &fakeUserGateway{rows: []*user.User{
			hashedUser(t, "alice", "s3cret", user.RoleUser),
		}}
		svc, store := newAuthFixture(t, gateway, newMemorySnapshots())

		require.NoError(t, svc.LoadUsers())
		assert.Equal(t, 1, store.Count())
		assert.Nil(t, store.FindByUsername("admin"))
	})

	t.Run("Snapshot Restores Accounts With Hashes", func(t *testing.T) {
		snapshots := newMemorySnapshots()

		seedGateway := &fakeUserGateway{rows: []*user.User{
			hashedUser(t, "alice", "s3cret", user.RoleUser),
		}}
		seedSvc, _ := newAuthFixture(t, seedGateway, snapshots)
		require.NoError(t, seedSvc.LoadUsers())

		// A fresh process with the remote down restores from the snapshot
		// and can still authenticate.
		svc, store := newAuthFixture(t, &fakeUserGateway{selectErr: errRemoteDown}, snapshots)
		require.NoError(t, svc.LoadUsers())
		require.Equal(t, 1, store.Count())

		_, err := svc.Login("alice", "s3cret")
		assert.NoError(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	setup := func(t *testing.T) *AuthService {
		gateway := &fakeUserGateway{rows: []*user.User{
			hashedUser(t, "alice", "s3cret", user.RoleUser),
		}}
		svc, _ := newAuthFixture(t, gateway, newMemorySnapshots())
		require.NoError(t, svc.LoadUsers())
		return svc
	}

	t.Run("Valid Credentials Issue A Token", func(t *testing.T) {
		svc := setup(t)

		result, err := svc.Login("alice", "s3cret")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)

		principal, err := svc.ValidateToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", principal.Username)
		assert.Equal(t, result.User.ID, principal.ID)
	})

	t.Run("Wrong Password Is Unauthorized", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Login("alice", "wrong")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Unknown User Is Unauthorized", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Login("mallory", "s3cret")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Garbage Token Is Unauthorized", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthService_CreateUser(t *testing.T) {
	t.Run("Admin Creates A Regular User", func(t *testing.T) {
		gateway := &fakeUserGateway{}
		svc, store := newAuthFixture(t, gateway, newMemorySnapshots())

		created, outcome, err := svc.CreateUser(adminPrincipal(), "bob", "Bob Builder", "hunter2", "")
		require.NoError(t, err)
		assert.True(t, outcome.PersistedRemotely)
		assert.Equal(t, user.RoleUser, created.Role, "role defaults to user")
		assert.NotNil(t, store.FindByUsername("bob"))

		_, err = svc.Login("bob", "hunter2")
		assert.NoError(t, err)
	})

	t.Run("Non Admin Is Forbidden", func(t *testing.T) {
		svc, _ := newAuthFixture(t, &fakeUserGateway{}, newMemorySnapshots())

		regular := &user.Principal{ID: "u-1", Username: "alice", Role: user.RoleUser}
		_, _, err := svc.CreateUser(regular, "bob", "", "hunter2", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Duplicate Username Is Rejected", func(t *testing.T) {
		svc, _ := newAuthFixture(t, &fakeUserGateway{}, newMemorySnapshots())

		_, _, err := svc.CreateUser(adminPrincipal(), "bob", "", "hunter2", "")
		require.NoError(t, err)

		_, _, err = svc.CreateUser(adminPrincipal(), "bob", "", "other", "")
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("Unknown Role Downgrades To User", func(t *testing.T) {
		svc, _ := newAuthFixture(t, &fakeUserGateway{}, newMemorySnapshots())

		created, _, err := svc.CreateUser(adminPrincipal(), "bob", "", "hunter2", "superuser")
		require.NoError(t, err)
		assert.Equal(t, user.RoleUser, created.Role)
	})

	t.Run("Remote Failure Still Creates The Account", func(t *testing.T) {
		svc, store := newAuthFixture(t, &fakeUserGateway{insertErr: errRemoteDown}, newMemorySnapshots())

		_, outcome, err := svc.CreateUser(adminPrincipal(), "bob", "", "hunter2", "")
		require.NoError(t, err)
		assert.False(t, outcome.PersistedRemotely)
		assert.NotNil(t, store.FindByUsername("bob"))
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	setup := func(t *testing.T) (*AuthService, *user.Principal) {
		u := hashedUser(t, "alice", "oldpass", user.RoleUser)
		gateway := &fakeUserGateway{rows: []*user.User{u}}
		svc, _ := newAuthFixture(t, gateway, newMemorySnapshots())
		require.NoError(t, svc.LoadUsers())
		return svc, &user.Principal{ID: u.ID, Username: u.Username, Role: u.Role}
	}

	t.Run("Replaces Password After Verifying Old", func(t *testing.T) {
		svc, principal := setup(t)

		outcome, err := svc.ChangePassword(principal, "oldpass", "newpass")
		require.NoError(t, err)
		assert.True(t, outcome.PersistedRemotely)

		_, err = svc.Login("alice", "oldpass")
		assert.ErrorIs(t, err, ErrUnauthorized)

		_, err = svc.Login("alice", "newpass")
		assert.NoError(t, err)
	})

	t.Run("Wrong Old Password Is Rejected", func(t *testing.T) {
		svc, principal := setup(t)

		_, err := svc.ChangePassword(principal, "wrong", "newpass")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Missing Principal Is Unauthorized", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.ChangePassword(nil, "oldpass", "newpass")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthService_ListUsers(t *testing.T) {
	svc, _ := newAuthFixture(t, &fakeUserGateway{rows: []*user.User{
		hashedUser(t, "alice", "s3cret", user.RoleUser),
	}}, newMemorySnapshots())
	require.NoError(t, svc.LoadUsers())

	users, err := svc.ListUsers(adminPrincipal())
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = svc.ListUsers(&user.Principal{ID: "u-1", Role: user.RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListUsers(nil)
	assert.ErrorIs(t, err, ErrForbidden)
}
