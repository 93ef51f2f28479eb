package store

import (
	"fmt"
	"strings"
)

// Dialect abstracts the SQL that differs between backends.
type Dialect interface {
	// DriverName returns the database/sql driver name.
	DriverName() string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	Placeholder(index int) string

	// CreateRunsTableSQL returns the DDL for the runs table.
	CreateRunsTableSQL() string

	// CreateRecordsTableSQL returns the DDL for the records table.
	CreateRecordsTableSQL() string

	// CreateFindingsTableSQL returns the DDL for the findings table.
	CreateFindingsTableSQL() string

	// Sanitize prepares a text value for storage.
	Sanitize(s string) string
}

// SQLiteDialect targets modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string           { return "sqlite" }
func (d *SQLiteDialect) Placeholder(index int) string { return "?" }
func (d *SQLiteDialect) Sanitize(s string) string     { return s }

func (d *SQLiteDialect) CreateRunsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY, analyzed_at TEXT, total_events INT,
		unique_users INT, unique_devices INT, success_rate TEXT
	)`
}

func (d *SQLiteDialect) CreateRecordsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS records (
		run_id TEXT, source TEXT, line_num INT,
		logged_at TEXT, message_code TEXT, username TEXT, mac_address TEXT,
		ip_address TEXT, nas_ip TEXT, auth_status TEXT, failure_reason TEXT,
		endpoint_profile TEXT, device_type TEXT, auth_protocol TEXT,
		message_description TEXT
	)`
}

func (d *SQLiteDialect) CreateFindingsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS findings (
		run_id TEXT, finding_type TEXT, subject TEXT, hits INT
	)`
}

// PostgresDialect targets PostgreSQL through the pgx stdlib driver.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string           { return "pgx" }
func (d *PostgresDialect) Placeholder(index int) string { return fmt.Sprintf("$%d", index) }

// Sanitize strips NUL bytes, which PostgreSQL rejects in text columns.
func (d *PostgresDialect) Sanitize(s string) string {
	if strings.ContainsRune(s, '\x00') {
		return strings.ReplaceAll(s, "\x00", "")
	}
	return s
}

func (d *PostgresDialect) CreateRunsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY, analyzed_at TIMESTAMPTZ, total_events INTEGER,
		unique_users INTEGER, unique_devices INTEGER, success_rate TEXT
	)`
}

func (d *PostgresDialect) CreateRecordsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS records (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT REFERENCES runs(run_id), source TEXT, line_num INTEGER,
		logged_at TEXT, message_code TEXT, username TEXT, mac_address TEXT,
		ip_address TEXT, nas_ip TEXT, auth_status TEXT, failure_reason TEXT,
		endpoint_profile TEXT, device_type TEXT, auth_protocol TEXT,
		message_description TEXT
	)`
}

func (d *PostgresDialect) CreateFindingsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS findings (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT REFERENCES runs(run_id), finding_type TEXT, subject TEXT, hits INTEGER
	)`
}

// insertSQL builds a parameterized INSERT for the given columns.
func insertSQL(d Dialect, table string, columns []string) string {
	ph := make([]string, len(columns))
	for i := range columns {
		ph[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(ph, ", "))
}
