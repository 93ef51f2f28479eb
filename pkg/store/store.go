// Package store exports extracted records and findings to SQL databases.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ccollicutt/iselog/pkg/analyzer"
	"github.com/ccollicutt/iselog/pkg/extractor"
)

// progressInterval is how many records are inserted between progress logs.
const progressInterval = 10000

// fieldColumns maps extractor fields to record table columns.
var fieldColumns = map[extractor.Field]string{
	extractor.FieldTimestamp:       "logged_at",
	extractor.FieldMessageCode:     "message_code",
	extractor.FieldUsername:        "username",
	extractor.FieldMACAddress:      "mac_address",
	extractor.FieldFramedIP:        "ip_address",
	extractor.FieldNASIP:           "nas_ip",
	extractor.FieldAuthStatus:      "auth_status",
	extractor.FieldFailureReason:   "failure_reason",
	extractor.FieldEndpointProfile: "endpoint_profile",
	extractor.FieldDeviceType:      "device_type",
	extractor.FieldAuthProtocol:    "auth_protocol",
}

// Run is one analysis run to persist.
type Run struct {
	ID         string
	AnalyzedAt time.Time
	Records    []extractor.Record
	Result     *analyzer.Result
}

// Store writes runs to a SQL database.
type Store struct {
	conn    *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for export progress.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// OpenSQLite opens or creates a SQLite database file and ensures the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*Store, error) {
	return Open(ctx, &SQLiteDialect{}, path, opts...)
}

// OpenPostgres connects to an existing PostgreSQL database and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	return Open(ctx, &PostgresDialect{}, dsn, opts...)
}

// Open connects using the given dialect and creates missing tables.
func Open(ctx context.Context, d Dialect, dsn string, opts ...Option) (*Store, error) {
	conn, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{conn: conn, dialect: d, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.createSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tables := []struct{ name, ddl string }{
		{"runs", s.dialect.CreateRunsTableSQL()},
		{"records", s.dialect.CreateRecordsTableSQL()},
		{"findings", s.dialect.CreateFindingsTableSQL()},
	}
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("creating %s table: %w", t.name, err)
		}
	}
	return tx.Commit()
}

// recordColumns returns the records table columns in insert order.
func recordColumns() []string {
	cols := []string{"run_id", "source", "line_num"}
	for _, f := range extractor.AllFields() {
		cols = append(cols, fieldColumns[f])
	}
	return append(cols, "message_description")
}

// WriteRun stores a run, its records and its findings in one transaction.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res := run.Result
	if res == nil {
		res = analyzer.Analyze(nil)
	}

	_, err = tx.ExecContext(ctx,
		insertSQL(s.dialect, "runs", []string{"run_id", "analyzed_at", "total_events", "unique_users", "unique_devices", "success_rate"}),
		run.ID, run.AnalyzedAt.UTC().Format(time.RFC3339), res.TotalEvents, res.UniqueUsers, res.UniqueDevices, res.SuccessRate)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.dialect, "records", recordColumns()))
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	fields := extractor.AllFields()
	for i := range run.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := &run.Records[i]
		args := make([]any, 0, len(fields)+4)
		args = append(args, run.ID, s.dialect.Sanitize(rec.Source), rec.LineNum)
		for _, f := range fields {
			v, _ := rec.Get(f)
			args = append(args, s.nullable(v))
		}
		args = append(args, s.nullable(rec.MessageDescription))

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
		if (i+1)%progressInterval == 0 {
			s.logger.Debug("export progress", zap.Int("records", i+1), zap.Int("total", len(run.Records)))
		}
	}

	findingSQL := insertSQL(s.dialect, "findings", []string{"run_id", "finding_type", "subject", "hits"})
	for _, f := range res.SuspiciousActivity {
		if _, err := tx.ExecContext(ctx, findingSQL, run.ID, string(f.Type), s.dialect.Sanitize(f.Subject), f.Count); err != nil {
			return fmt.Errorf("inserting finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}

	s.logger.Info("run exported",
		zap.String("driver", s.dialect.DriverName()),
		zap.String("run_id", run.ID),
		zap.Int("records", len(run.Records)),
		zap.Int("findings", len(res.SuspiciousActivity)))
	return nil
}

// nullable maps absent fields to SQL NULL.
func (s *Store) nullable(v string) any {
	if v == "" {
		return nil
	}
	return s.dialect.Sanitize(v)
}

// CountRecords returns how many records are stored for a run.
func (s *Store) CountRecords(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE run_id = "+s.dialect.Placeholder(1), runID).Scan(&n)
	return n, err
}
