package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/repositories"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/caching/stores"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/performance"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/security"
	"github.com/CircuitDesk/circuitdesk-go/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor used by existing stored hashes.
const bcryptCost = 10

// AuthService handles authentication workflows and account management over
// the dual-path user store.
type AuthService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	store       *stores.UserStore
	gateway     repositories.UserGateway
	snapshots   repositories.SnapshotStore
}

// NewAuthService creates a new authentication service
func NewAuthService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	store *stores.UserStore,
	gateway repositories.UserGateway,
	snapshots repositories.SnapshotStore,
) *AuthService {
	return &AuthService{
		logger:      logger,
		perfTracker: perfTracker,
		store:       store,
		gateway:     gateway,
		snapshots:   snapshots,
	}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// userRecord is the snapshot serialization of an account. Unlike the public
// entity it carries the password hash, so local-only deployments can still
// authenticate after a restart.
type userRecord struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// LoadUsers populates the in-memory collection from the remote store, falling
// back to the local snapshot. When both paths yield nothing, a bootstrap
// admin account is seeded so the application is never locked out.
func (s *AuthService) LoadUsers() error {
	marker := s.perfTracker.StartOperation("auth:load")
	defer s.perfTracker.CompleteOperation(marker)

	users, err := s.gateway.SelectAll(config.UserLoadLimit)
	if err == nil {
		s.store.ReplaceAll(users)
		s.mirror()
		s.logger.Auth().Info("Users loaded from remote store", "count", len(users))
		marker.AddMetadata("source", "remote")
	} else {
		s.logger.LogFallback("auth:load", err, nil)
		marker.AddMetadata("source", "snapshot")

		restored, found, snapErr := s.readSnapshot()
		if snapErr != nil {
			marker.SetError(snapErr)
			return snapErr
		}
		if found {
			s.store.ReplaceAll(restored)
			s.logger.Auth().Info("Users restored from snapshot", "count", len(restored))
		}
	}

	if s.store.Count() == 0 {
		return s.seedBootstrapAdmin()
	}
	return nil
}

// seedBootstrapAdmin creates the initial admin account.
func (s *AuthService) seedBootstrapAdmin() error {
	password := config.BootstrapAdminPassword
	if password == "" {
		password = "admin123"
		s.logger.Auth().Warn("BOOTSTRAP_ADMIN_PASSWORD not set, using default credentials", "username", config.BootstrapAdminUser)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}

	admin := &user.User{
		ID:           security.GenerateULID(),
		Username:     config.BootstrapAdminUser,
		FullName:     "Administrator",
		PasswordHash: string(hash),
		Role:         user.RoleAdmin,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := s.gateway.Insert(admin); err != nil {
		s.logger.LogFallback("auth:seed", err, map[string]any{"username": admin.Username})
	}

	s.store.Append(admin)
	s.mirror()
	s.logger.Auth().Info("Bootstrap admin account seeded", "username", admin.Username)
	return nil
}

// Login validates credentials and issues a signed token.
func (s *AuthService) Login(username, password string) (*AuthResult, error) {
	marker := s.perfTracker.StartOperation("auth:login")
	defer s.perfTracker.CompleteOperation(marker)

	u := s.store.FindByUsername(username)
	if u == nil {
		s.logger.LogAuthOperation("login", username, false, map[string]any{"reason": "unknown user"})
		marker.SetSuccess(false)
		return nil, ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.LogAuthOperation("login", u.ID, false, map[string]any{"reason": "bad password"})
		marker.SetSuccess(false)
		return nil, ErrUnauthorized
	}

	token, err := security.GenerateUserToken(u, config.JWTSecret)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.LogAuthOperation("login", u.ID, true, nil)
	return &AuthResult{Token: token, User: u}, nil
}

// ValidateToken verifies a bearer token and returns the principal it carries.
func (s *AuthService) ValidateToken(token string) (*user.Principal, error) {
	claims, err := security.ValidateJWT(token, config.JWTSecret)
	if err != nil {
		return nil, ErrUnauthorized
	}

	principal := security.GetPrincipalFromClaims(claims)
	if principal == nil {
		return nil, ErrUnauthorized
	}
	return principal, nil
}

// CreateUser registers a new account. Only admins may create accounts; new
// accounts default to the regular user role.
func (s *AuthService) CreateUser(principal *user.Principal, username, fullName, password, role string) (*user.User, repositories.Outcome, error) {
	marker := s.perfTracker.StartOperation("auth:register")
	defer s.perfTracker.CompleteOperation(marker)

	outcome := repositories.Outcome{}

	if !principal.IsAdmin() {
		marker.SetSuccess(false)
		return nil, outcome, ErrForbidden
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		marker.SetSuccess(false)
		return nil, outcome, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if s.store.FindByUsername(username) != nil {
		marker.SetSuccess(false)
		return nil, outcome, fmt.Errorf("%w: username %s", ErrDuplicate, username)
	}

	if role != user.RoleAdmin {
		role = user.RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		marker.SetError(err)
		return nil, outcome, err
	}

	u := &user.User{
		ID:           security.GenerateULID(),
		Username:     username,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := s.gateway.Insert(u); err != nil {
		s.logger.LogFallback("auth:register", err, map[string]any{"username": username})
	} else {
		outcome.PersistedRemotely = true
	}

	s.store.Append(u)
	s.mirror()

	s.logger.LogAuthOperation("register", u.ID, true, map[string]any{"createdBy": principal.Username, "role": role})
	return u, outcome, nil
}

// ChangePassword replaces the principal's password after verifying the
// current one.
func (s *AuthService) ChangePassword(principal *user.Principal, oldPassword, newPassword string) (repositories.Outcome, error) {
	marker := s.perfTracker.StartOperation("auth:password")
	defer s.perfTracker.CompleteOperation(marker)

	outcome := repositories.Outcome{}

	if principal == nil {
		marker.SetSuccess(false)
		return outcome, ErrUnauthorized
	}
	if newPassword == "" {
		marker.SetSuccess(false)
		return outcome, fmt.Errorf("%w: new password is required", ErrValidation)
	}

	u := s.store.Get(principal.ID)
	if u == nil {
		marker.SetSuccess(false)
		return outcome, fmt.Errorf("%w: user %s", ErrNotFound, principal.ID)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		s.logger.LogAuthOperation("password", u.ID, false, map[string]any{"reason": "bad old password"})
		marker.SetSuccess(false)
		return outcome, fmt.Errorf("%w: current password is incorrect", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		marker.SetError(err)
		return outcome, err
	}

	updated := *u
	updated.PasswordHash = string(hash)
	s.store.Update(&updated)

	if err := s.gateway.UpdatePassword(u.ID, string(hash)); err != nil {
		s.logger.LogFallback("auth:password", err, map[string]any{"id": u.ID})
	} else {
		outcome.PersistedRemotely = true
	}
	s.mirror()

	s.logger.LogAuthOperation("password", u.ID, true, nil)
	return outcome, nil
}

// ListUsers returns the account collection. Admin only.
func (s *AuthService) ListUsers(principal *user.Principal) ([]*user.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.store.All(), nil
}

// mirror writes the full account collection, hashes included, to the local
// snapshot.
func (s *AuthService) mirror() {
	users := s.store.All()
	records := make([]userRecord, 0, len(users))
	for _, u := range users {
		records = append(records, userRecord{
			ID:           u.ID,
			Username:     u.Username,
			FullName:     u.FullName,
			PasswordHash: u.PasswordHash,
			Role:         u.Role,
			CreatedAt:    u.CreatedAt,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		s.logger.Snapshot().Error("Failed to serialize user snapshot", "error", err.Error())
		return
	}
	if err := s.snapshots.Write(repositories.SnapshotKeyUsers, data); err != nil {
		s.logger.Snapshot().Error("Failed to write user snapshot", "error", err.Error())
	}
}

// readSnapshot loads and deserializes the user snapshot.
func (s *AuthService) readSnapshot() ([]*user.User, bool, error) {
	data, found, err := s.snapshots.Read(repositories.SnapshotKeyUsers)
	if err != nil || !found {
		return nil, found, err
	}

	var records []userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Snapshot().Error("Failed to deserialize user snapshot", "error", err.Error())
		return nil, true, err
	}

	users := make([]*user.User, 0, len(records))
	for _, r := range records {
		users = append(users, &user.User{
			ID:           r.ID,
			Username:     r.Username,
			FullName:     r.FullName,
			PasswordHash: r.PasswordHash,
			Role:         r.Role,
			CreatedAt:    r.CreatedAt,
		})
	}
	return users, true, nil
}
