package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/loykin/hubspotrun/internal/constants"
	_ "modernc.org/sqlite"
)

// timeLayout is RFC3339 with fixed-width nanoseconds so stored values sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Dialect implements SQL dialect for SQLite
type Dialect struct{}

// NewDialect creates a new SQLite dialect
func NewDialect() *Dialect {
	return &Dialect{}
}

// DriverName returns the driver name for logging
func (s *Dialect) DriverName() string {
	return "sqlite"
}

// Placeholder returns SQLite-style placeholders (?); the index is ignored
func (s *Dialect) Placeholder(int) string {
	return "?"
}

// ConvertBoolToStorage converts bool to SQLite storage format (integer 0/1)
func (s *Dialect) ConvertBoolToStorage(b bool) interface{} {
	if b {
		return 1
	}
	return 0
}

// ConvertTimeToStorage converts time to a fixed-width UTC RFC3339 string
func (s *Dialect) ConvertTimeToStorage(t time.Time) interface{} {
	return t.UTC().Format(timeLayout)
}

// ConvertBoolFromStorage converts SQLite integer storage to bool
func (s *Dialect) ConvertBoolFromStorage(val interface{}) bool {
	switch v := val.(type) {
	case int64:
		return v != 0
	case int:
		return v != 0
	case bool:
		return v
	}
	return false
}

// ConvertTimeFromStorage converts the fixed-width storage layout to an
// RFC3339Nano string. Values in any other layout are returned unchanged.
func (s *Dialect) ConvertTimeFromStorage(val interface{}) string {
	var raw string
	switch v := val.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
	if t, err := time.Parse(timeLayout, raw); err == nil {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return raw
}

// Connect establishes a connection to SQLite with connection pooling
func (s *Dialect) Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	db.SetMaxOpenConns(constants.DefaultSQLiteMaxConnections)
	db.SetMaxIdleConns(constants.DefaultSQLiteMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultSQLiteLifetime)
	db.SetConnMaxIdleTime(constants.DefaultSQLiteIdleTime)

	return db, nil
}

// EnsureStatements returns SQLite-specific table creation statements
func (s *Dialect) EnsureStatements(runsTable string) []string {
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, method TEXT NOT NULL, path TEXT NOT NULL, status_code INTEGER NOT NULL, error_message TEXT NOT NULL DEFAULT '', response_body TEXT NULL, failed INTEGER NOT NULL DEFAULT 0, ran_at TEXT NOT NULL)", runsTable),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_ran_at_idx ON %s (ran_at)", runsTable, runsTable),
	}
}
