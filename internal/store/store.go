// Package store persists the history of handler executions.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/loykin/hubspotrun/internal/common"
	"github.com/loykin/hubspotrun/internal/store/connector"
	"github.com/loykin/hubspotrun/internal/store/postgresql"
	"github.com/loykin/hubspotrun/internal/store/sqlite"
)

// Run is one recorded handler execution.
type Run = connector.Run

type Store struct {
	db       *sql.DB
	dialect  connector.Dialect
	table    string
	saveBody bool
}

// Open connects to the configured backend and ensures the runs table exists.
func Open(cfg Config) (*Store, error) {
	driver, err := cfg.NormalizedDriver()
	if err != nil {
		return nil, err
	}
	table, err := cfg.RunsTable()
	if err != nil {
		return nil, err
	}

	var (
		d   connector.Dialect
		dsn string
	)
	switch driver {
	case DriverPostgresql:
		d = postgresql.NewDialect()
		dsn = cfg.Postgres.ConnString()
		if dsn == "" {
			return nil, ErrMissingDSN
		}
	default:
		d = sqlite.NewDialect()
		dsn = cfg.SQLite.DSN()
	}

	logger := common.GetLogger().WithStore(d.DriverName())
	db, err := d.Connect(dsn)
	if err != nil {
		logger.Error("failed to connect run store", "error", err)
		return nil, err
	}
	logger.Info("run store connection established", "table", table)

	s := New(db, d, table, cfg.SaveResponseBody)
	if err := s.Ensure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection. Ensure is not called.
func New(db *sql.DB, d connector.Dialect, table string, saveBody bool) *Store {
	return &Store{db: db, dialect: d, table: table, saveBody: saveBody}
}

// Table returns the runs table name.
func (s *Store) Table() string { return s.table }

// Ensure creates the runs table and its index when missing.
func (s *Store) Ensure() error {
	logger := common.GetLogger().WithStore(s.dialect.DriverName())
	for i, q := range s.dialect.EnsureStatements(s.table) {
		logger.Debug("executing schema statement", "index", i+1, "sql", q)
		if _, err := s.db.Exec(q); err != nil {
			logger.Error("failed to ensure run table", "error", err, "index", i+1)
			return fmt.Errorf("store: ensure statement %d: %w", i+1, err)
		}
	}
	return nil
}

// Record inserts r and returns it with ID and RanAt filled in when they were
// empty. The response body is dropped unless the store saves bodies.
func (s *Store) Record(r Run) (Run, error) {
	if s == nil || s.db == nil {
		return r, nil
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	ranAt := time.Now().UTC()
	if r.RanAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, r.RanAt); err == nil {
			ranAt = t
		}
	}
	r.RanAt = ranAt.Format(time.RFC3339Nano)
	if !s.saveBody {
		r.ResponseBody = nil
	}

	ph := make([]string, 8)
	for i := range ph {
		ph[i] = s.dialect.Placeholder(i + 1)
	}
	q := fmt.Sprintf("INSERT INTO %s(id, method, path, status_code, error_message, response_body, failed, ran_at) VALUES(%s)",
		s.table, strings.Join(ph, ", "))

	var body interface{}
	if r.ResponseBody != nil {
		body = *r.ResponseBody
	}
	if _, err := s.db.Exec(q, r.ID, r.Method, r.Path, r.StatusCode, r.ErrorMessage, body,
		s.dialect.ConvertBoolToStorage(r.Failed), s.dialect.ConvertTimeToStorage(ranAt)); err != nil {
		return r, fmt.Errorf("store: record run: %w", err)
	}
	return r, nil
}

// List returns runs newest first. A limit <= 0 returns every run.
func (s *Store) List(limit int) ([]Run, error) {
	q := fmt.Sprintf("SELECT id, method, path, status_code, error_message, response_body, failed, ran_at FROM %s ORDER BY ran_at DESC, id ASC", s.table)
	var args []interface{}
	if limit > 0 {
		q += " LIMIT " + s.dialect.Placeholder(1)
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var (
			r      Run
			body   sql.NullString
			failed interface{}
			ranAt  interface{}
		)
		if err := rows.Scan(&r.ID, &r.Method, &r.Path, &r.StatusCode, &r.ErrorMessage, &body, &failed, &ranAt); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		if body.Valid {
			b := body.String
			r.ResponseBody = &b
		}
		r.Failed = s.dialect.ConvertBoolFromStorage(failed)
		r.RanAt = s.dialect.ConvertTimeFromStorage(ranAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
