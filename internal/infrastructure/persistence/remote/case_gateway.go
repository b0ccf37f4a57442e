package remote

import (
	"database/sql"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/support"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/repositories"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/persistence/database"
)

const caseColumns = `id, lead_ckt, ip_address, connectivity, assigned_date,
	       due_date, case_remarks, status, created_by, created_at`

// SQLCaseGateway is the SQL-based implementation of the CaseGateway.
type SQLCaseGateway struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLCaseGateway creates a new instance of the gateway.
func NewSQLCaseGateway(db *database.DB, logger *logging.ChanneledLogger) *SQLCaseGateway {
	return &SQLCaseGateway{
		db:     db,
		logger: logger,
	}
}

// SelectAll retrieves up to limit cases, newest first.
func (g *SQLCaseGateway) SelectAll(limit int) ([]*support.Case, error) {
	if g.db == nil {
		return nil, repositories.ErrRemoteUnavailable
	}

	const query = `SELECT ` + caseColumns + ` FROM cases ORDER BY created_at DESC LIMIT ?`

	start := time.Now()
	g.logger.Database().Debug("Loading cases", "limit", limit)

	rows, err := g.db.Query(query, limit)
	if err != nil {
		g.logger.Database().Error("Failed to load cases", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	var cases []*support.Case
	for rows.Next() {
		c, err := g.scanCase(rows)
		if err != nil {
			g.logger.Database().Error("Failed to scan case row", "error", err.Error())
			return nil, err
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g.logger.Database().Info("Cases loaded", "count", len(cases), "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return cases, nil
}

// Insert saves a new case to the remote store and returns the stored record.
func (g *SQLCaseGateway) Insert(c *support.Case) (*support.Case, error) {
	if g.db == nil {
		return nil, repositories.ErrRemoteUnavailable
	}

	const query = `INSERT INTO cases (` + caseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	g.logger.Database().Debug("Executing case insert", "id", c.ID, "leadCkt", c.LeadCkt)

	_, err := g.db.Exec(
		query,
		c.ID,
		c.LeadCkt,
		c.IPAddress,
		string(c.Connectivity),
		c.AssignedDate,
		c.DueDate,
		c.CaseRemarks,
		string(c.Status),
		c.CreatedBy,
		c.CreatedAt,
	)
	if err != nil {
		g.logger.Database().Error("Case insert failed", "error", err.Error(), "id", c.ID, "leadCkt", c.LeadCkt)
		return nil, err
	}

	g.logger.Database().Info("Case insert completed", "id", c.ID, "leadCkt", c.LeadCkt, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return c, nil
}

// Update replaces every mutable field of an existing case.
func (g *SQLCaseGateway) Update(c *support.Case) error {
	if g.db == nil {
		return repositories.ErrRemoteUnavailable
	}

	const query = `UPDATE cases
		SET lead_ckt = ?, ip_address = ?, connectivity = ?, assigned_date = ?,
		    due_date = ?, case_remarks = ?, status = ?
		WHERE id = ?`

	start := time.Now()
	g.logger.Database().Debug("Executing case update", "id", c.ID)

	_, err := g.db.Exec(
		query,
		c.LeadCkt,
		c.IPAddress,
		string(c.Connectivity),
		c.AssignedDate,
		c.DueDate,
		c.CaseRemarks,
		string(c.Status),
		c.ID,
	)
	if err != nil {
		g.logger.Database().Error("Case update failed", "error", err.Error(), "id", c.ID)
		return err
	}

	g.logger.Database().Info("Case update completed", "id", c.ID, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return nil
}

// UpdateStatus changes only the workflow status of an existing case.
func (g *SQLCaseGateway) UpdateStatus(id string, status support.Status) error {
	if g.db == nil {
		return repositories.ErrRemoteUnavailable
	}

	const query = `UPDATE cases SET status = ? WHERE id = ?`

	start := time.Now()
	g.logger.Database().Debug("Executing case status update", "id", id, "status", status)

	_, err := g.db.Exec(query, string(status), id)
	if err != nil {
		g.logger.Database().Error("Case status update failed", "error", err.Error(), "id", id)
		return err
	}

	g.logger.Database().Info("Case status update completed", "id", id, "status", status, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return nil
}

// Delete removes a case from the remote store.
func (g *SQLCaseGateway) Delete(id string) error {
	if g.db == nil {
		return repositories.ErrRemoteUnavailable
	}

	const query = `DELETE FROM cases WHERE id = ?`

	start := time.Now()
	g.logger.Database().Debug("Executing case delete", "id", id)

	_, err := g.db.Exec(query, id)
	if err != nil {
		g.logger.Database().Error("Case delete failed", "error", err.Error(), "id", id)
		return err
	}

	g.logger.Database().Info("Case delete completed", "id", id, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return nil
}

// scanCase is a helper function to scan a result row into a Case struct.
func (g *SQLCaseGateway) scanCase(rows *sql.Rows) (*support.Case, error) {
	var c support.Case
	var connectivity, status string
	var createdBy, createdAt sql.NullString

	err := rows.Scan(
		&c.ID,
		&c.LeadCkt,
		&c.IPAddress,
		&connectivity,
		&c.AssignedDate,
		&c.DueDate,
		&c.CaseRemarks,
		&status,
		&createdBy,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.Connectivity = support.Connectivity(connectivity)
	c.Status = support.Status(status)
	if createdBy.Valid {
		c.CreatedBy = createdBy.String
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.String
	}

	return &c, nil
}
