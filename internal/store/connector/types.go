package connector

import (
	"database/sql"
	"time"
)

// Run represents a single handler execution stored in the runs table.
// ResponseBody is nil when bodies are not saved.
type Run struct {
	ID           string
	Method       string
	Path         string
	StatusCode   int
	ErrorMessage string
	ResponseBody *string
	Failed       bool
	RanAt        string // RFC3339Nano
}

// Dialect hides the differences between the supported SQL backends.
type Dialect interface {
	DriverName() string
	Placeholder(index int) string
	Connect(dsn string) (*sql.DB, error)
	EnsureStatements(runsTable string) []string
	ConvertBoolToStorage(b bool) interface{}
	ConvertTimeToStorage(t time.Time) interface{}
	ConvertBoolFromStorage(val interface{}) bool
	ConvertTimeFromStorage(val interface{}) string
}
