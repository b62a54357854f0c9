package sqlite

import (
	"fmt"
	"strings"

	"github.com/loykin/hubspotrun/internal/constants"
)

// SQLite configuration constants
const (
	busyTimeoutMS    = 5000 // 5 seconds in milliseconds
	foreignKeysParam = "_fk=1"
)

type Config struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DSN builds the modernc.org/sqlite connection string. ":memory:" is passed
// through and an empty path selects the default database file.
func (c Config) DSN() string {
	path := strings.TrimSpace(c.Path)
	if path == "" {
		path = constants.DefaultSQLiteFile
	}
	if path == ":memory:" {
		return path
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d&%s", path, busyTimeoutMS, foreignKeysParam)
}
