// Package remote provides the concrete SQL-based implementations of the
// remote-store gateways (Lead, Case, User). Every gateway tolerates a nil
// database handle and reports it as remote-unavailable so callers can fall
// back to the local snapshot path.
package remote

import (
	"database/sql"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/directory"
	"github.com/CircuitDesk/circuitdesk-go/internal/domain/repositories"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/persistence/database"
	"github.com/CircuitDesk/circuitdesk-go/pkg/config"
)

const leadColumns = `sr_no, ckt, cust_name, address, email_id, contact_name, comm_date,
	       usable_ip_address, backup, device, bandwidth, remarks,
	       pop_name, nas_ip_1, switch_ip_1, port_no_1, vlan_id_1, primary_pop,
	       pop_name_2, nas_ip_2, switch_ip_2, port_no_2, vlan_id_2,
	       subnet_mask, gateway, sales_person, testing_fe, mrtg`

// SQLLeadGateway is the SQL-based implementation of the LeadGateway.
type SQLLeadGateway struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLLeadGateway creates a new instance of the gateway.
func NewSQLLeadGateway(db *database.DB, logger *logging.ChanneledLogger) *SQLLeadGateway {
	return &SQLLeadGateway{
		db:     db,
		logger: logger,
	}
}

// SelectAll retrieves up to limit leads in insertion order.
func (g *SQLLeadGateway) SelectAll(limit int) ([]*directory.Lead, error) {
	if g.db == nil {
		return nil, repositories.ErrRemoteUnavailable
	}

	const query = `SELECT ` + leadColumns + ` FROM leads ORDER BY rowid LIMIT ?`

	start := time.Now()
	g.logger.Database().Debug("Loading leads", "limit", limit)

	rows, err := g.db.Query(query, limit)
	if err != nil {
		g.logger.Database().Error("Failed to load leads", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	var leads []*directory.Lead
	for rows.Next() {
		lead, err := g.scanLead(rows)
		if err != nil {
			g.logger.Database().Error("Failed to scan lead row", "error", err.Error())
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g.logger.Database().Info("Leads loaded", "count", len(leads), "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return leads, nil
}

// Insert saves a new lead to the remote store and returns the stored record.
func (g *SQLLeadGateway) Insert(lead *directory.Lead) (*directory.Lead, error) {
	if g.db == nil {
		return nil, repositories.ErrRemoteUnavailable
	}

	const query = `INSERT INTO leads (` + leadColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	g.logger.Database().Debug("Executing lead insert", "ckt", lead.Ckt, "custName", lead.CustName)

	_, err := g.db.Exec(
		query,
		lead.SrNo,
		lead.Ckt,
		lead.CustName,
		lead.Address,
		lead.EmailID,
		lead.ContactName,
		lead.CommDate,
		lead.UsableIPAddress,
		lead.Backup,
		lead.Device,
		lead.Bandwidth,
		lead.Remarks,
		lead.PopName,
		lead.NasIP1,
		lead.SwitchIP1,
		lead.PortNo1,
		lead.VlanID1,
		lead.PrimaryPop,
		lead.PopName2,
		lead.NasIP2,
		lead.SwitchIP2,
		lead.PortNo2,
		lead.VlanID2,
		lead.SubnetMask,
		lead.Gateway,
		lead.SalesPerson,
		lead.TestingFe,
		lead.Mrtg,
	)
	if err != nil {
		g.logger.Database().Error("Lead insert failed", "error", err.Error(), "ckt", lead.Ckt)
		return nil, err
	}

	g.logger.Database().Info("Lead insert completed", "ckt", lead.Ckt, "duration", time.Since(start))
	database.CheckAndLogSlowQuery(g.logger, query, time.Since(start))
	return lead, nil
}

// Search retrieves leads whose circuit code, customer name, or usable IP
// address contains the query text, case-insensitively, up to limit rows.
func (g *SQLLeadGateway) Search(query string, limit int) ([]*directory.Lead, error) {
	if g.db == nil {
		return nil, repositories.ErrRemoteUnavailable
	}

	const stmt = `SELECT ` + leadColumns + ` FROM leads
		WHERE LOWER(ckt) LIKE ? OR LOWER(cust_name) LIKE ? OR LOWER(usable_ip_address) LIKE ?
		LIMIT ?`

	start := time.Now()
	g.logger.Database().Debug("Searching leads", "query", query, "limit", limit)

	pattern := "%" + query + "%"
	rows, err := g.db.Query(stmt, pattern, pattern, pattern, limit)
	if err != nil {
		g.logger.Database().Error("Lead search failed", "error", err.Error(), "query", query)
		return nil, err
	}
	defer rows.Close()

	var leads []*directory.Lead
	for rows.Next() {
		lead, err := g.scanLead(rows)
		if err != nil {
			g.logger.Database().Error("Failed to scan lead row", "error", err.Error())
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g.logger.Database().Info("Lead search completed", "query", query, "count", len(leads), "duration", time.Since(start))
	if time.Since(start) > config.SlowQueryThreshold {
		g.logger.LogSlowQuery(stmt, time.Since(start))
	}
	return leads, nil
}

// scanLead is a helper function to scan a result row into a Lead struct.
func (g *SQLLeadGateway) scanLead(rows *sql.Rows) (*directory.Lead, error) {
	var lead directory.Lead
	optional := make([]sql.NullString, 16)

	err := rows.Scan(
		&lead.SrNo,
		&lead.Ckt,
		&lead.CustName,
		&lead.Address,
		&lead.EmailID,
		&lead.ContactName,
		&lead.CommDate,
		&lead.UsableIPAddress,
		&lead.Backup,
		&lead.Device,
		&lead.Bandwidth,
		&lead.Remarks,
		&optional[0], &optional[1], &optional[2], &optional[3],
		&optional[4], &optional[5], &optional[6], &optional[7],
		&optional[8], &optional[9], &optional[10], &optional[11],
		&optional[12], &optional[13], &optional[14], &optional[15],
	)
	if err != nil {
		return nil, err
	}

	targets := []**string{
		&lead.PopName, &lead.NasIP1, &lead.SwitchIP1, &lead.PortNo1,
		&lead.VlanID1, &lead.PrimaryPop, &lead.PopName2, &lead.NasIP2,
		&lead.SwitchIP2, &lead.PortNo2, &lead.VlanID2, &lead.SubnetMask,
		&lead.Gateway, &lead.SalesPerson, &lead.TestingFe, &lead.Mrtg,
	}
	for i, ns := range optional {
		if ns.Valid {
			v := ns.String
			*targets[i] = &v
		}
	}

	return &lead, nil
}
