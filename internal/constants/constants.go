package constants

import "time"

// Database Constants
const (
	// PostgreSQL defaults
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"

	// Connection pool settings
	DefaultPostgresMaxConnections = 25
	DefaultPostgresMaxIdleConns   = 5
	DefaultSQLiteMaxConnections   = 1 // SQLite allows only one writer
	DefaultSQLiteMaxIdleConns     = 1

	// DefaultRunsTable records handler executions
	DefaultRunsTable = "hubspot_runs"
	// RunsSuffix is appended to a configured table prefix
	RunsSuffix = "_hubspot_runs"

	// DefaultSQLiteFile is used when no sqlite path is configured
	DefaultSQLiteFile = "hubspotrun.db"
)

// Time and Duration Constants
const (
	// Connection pool lifetimes
	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxIdleTime     = 1 * time.Minute
	DefaultSQLiteLifetime  = 10 * time.Minute
	DefaultSQLiteIdleTime  = 5 * time.Minute
)

// HubSpot request defaults
const (
	// DefaultRateLimit is the private app burst allowance per second
	DefaultRateLimit = 10.0
	DefaultRateBurst = 1

	// DefaultSearchLimit is the page size the bridge requests
	DefaultSearchLimit = 100
)
