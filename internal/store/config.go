package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/loykin/hubspotrun/internal/constants"
	"github.com/loykin/hubspotrun/internal/store/postgresql"
	"github.com/loykin/hubspotrun/internal/store/sqlite"
	"github.com/loykin/hubspotrun/internal/util"
)

const (
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"
)

var (
	ErrUnsupportedDriver = errors.New("store: unsupported driver")
	ErrInvalidTableName  = errors.New("store: invalid table name")
	ErrMissingDSN        = errors.New("store: postgres requires dsn or host")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	Disabled         bool              `mapstructure:"disabled" yaml:"disabled"`
	Driver           string            `mapstructure:"type" yaml:"type"`
	TablePrefix      string            `mapstructure:"table_prefix" yaml:"table_prefix"`
	SaveResponseBody bool              `mapstructure:"save_response_body" yaml:"save_response_body"`
	SQLite           sqlite.Config     `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres         postgresql.Config `mapstructure:"postgres" yaml:"postgres"`
}

// NormalizedDriver maps driver aliases onto DriverSqlite or DriverPostgresql.
// An empty driver selects sqlite.
func (c Config) NormalizedDriver() (string, error) {
	switch util.TrimAndLower(c.Driver) {
	case "", "sqlite", "sqlite3":
		return DriverSqlite, nil
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgresql, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, c.Driver)
	}
}

// RunsTable returns hubspot_runs, or <prefix>_hubspot_runs when a prefix is set.
func (c Config) RunsTable() (string, error) {
	prefix := strings.TrimSpace(c.TablePrefix)
	if prefix == "" {
		return constants.DefaultRunsTable, nil
	}
	name := prefix + constants.RunsSuffix
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return name, nil
}
