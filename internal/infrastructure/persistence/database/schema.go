package database

import (
	"fmt"
)

// EnsureSchema creates the remote tables and indexes if they do not exist.
// It runs against a freshly provisioned store on first connect and is a
// no-op afterwards.
func EnsureSchema(db *DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		sr_no TEXT,
		ckt TEXT NOT NULL UNIQUE,
		cust_name TEXT NOT NULL,
		address TEXT,
		email_id TEXT,
		contact_name TEXT,
		comm_date TEXT,
		usable_ip_address TEXT,
		backup TEXT,
		device TEXT,
		bandwidth TEXT,
		remarks TEXT,
		pop_name TEXT,
		nas_ip_1 TEXT,
		switch_ip_1 TEXT,
		port_no_1 TEXT,
		vlan_id_1 TEXT,
		primary_pop TEXT,
		pop_name_2 TEXT,
		nas_ip_2 TEXT,
		switch_ip_2 TEXT,
		port_no_2 TEXT,
		vlan_id_2 TEXT,
		subnet_mask TEXT,
		gateway TEXT,
		sales_person TEXT,
		testing_fe TEXT,
		mrtg TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		lead_ckt TEXT NOT NULL,
		ip_address TEXT,
		connectivity TEXT,
		assigned_date TEXT,
		due_date TEXT,
		case_remarks TEXT,
		status TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		full_name TEXT,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TEXT
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_leads_ckt ON leads(ckt)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_cust_name ON leads(cust_name)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_lead_ckt ON cases(lead_ckt)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_created_at ON cases(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
}
