package remote

import (
	"database/sql"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/repositories"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/persistence/database"
)

const userColumns = `id, username, full_name, password_hash, role, created_at`

// SQLUserGateway is the SQL-based implementation of the UserGateway.
type SQLUserGateway struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLUserGateway creates a new instance of the gateway.
func NewSQLUserGateway(db *database.DB, logger *logging.ChanneledLogger) *SQLUserGateway {
	return &SQLUserGateway{
		db:     db,
		logger: logger,
	}
}

// SelectAll retrieves up to limit users in creation order.
func (g *SQLUserGateway) SelectAll(limit int) ([]*user.User, error) {
	if g.db == nil {
		return nil, repositories.ErrRemoteUnavailable
	}

	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at LIMIT ?`

	start := time.Now()
	g.logger.Database().Debug("Loading users", "limit", limit)

	rows, err := g.db.Query(query, limit)
	if err != nil {
		g.logger.Database().Error("Failed to load users", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := g.scanUser(rows)
		if err != nil {
			g.logger.Database().Error("Failed to scan user row", "error", err.Error())
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g.logger.Database().Info("Users loaded", "count", len(users), "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return users, nil
}

// Insert saves a new user to the remote store and returns the stored record.
func (g *SQLUserGateway) Insert(u *user.User) (*user.User, error) {
	if g.db == nil {
		return nil, repositories.ErrRemoteUnavailable
	}

	const query = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	start := time.Now()
	g.logger.Database().Debug("Executing user insert", "id", u.ID, "username", u.Username)

	_, err := g.db.Exec(query, u.ID, u.Username, u.FullName, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		g.logger.Database().Error("User insert failed", "error", err.Error(), "id", u.ID, "username", u.Username)
		return nil, err
	}

	g.logger.Database().Info("User insert completed", "id", u.ID, "username", u.Username, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return u, nil
}

// UpdatePassword replaces the stored password hash for a user.
func (g *SQLUserGateway) UpdatePassword(id, passwordHash string) error {
	if g.db == nil {
		return repositories.ErrRemoteUnavailable
	}

	const query = `UPDATE users SET password_hash = ? WHERE id = ?`

	start := time.Now()
	g.logger.Database().Debug("Executing password update", "id", id)

	_, err := g.db.Exec(query, passwordHash, id)
	if err != nil {
		g.logger.Database().Error("Password update failed", "error", err.Error(), "id", id)
		return err
	}

	g.logger.Database().Info("Password update completed", "id", id, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return nil
}

// scanUser is a helper function to scan a result row into a User struct.
func (g *SQLUserGateway) scanUser(rows *sql.Rows) (*user.User, error) {
	var u user.User
	var fullName, createdAt sql.NullString

	err := rows.Scan(
		&u.ID,
		&u.Username,
		&fullName,
		&u.PasswordHash,
		&u.Role,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if fullName.Valid {
		u.FullName = fullName.String
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.String
	}

	return &u, nil
}
