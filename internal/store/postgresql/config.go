package postgresql

import (
	"fmt"
	"strings"

	"github.com/loykin/hubspotrun/internal/constants"
	"github.com/loykin/hubspotrun/internal/util"
)

type Config struct {
	DSN      string `mapstructure:"dsn" yaml:"dsn"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	DBName   string `mapstructure:"dbname" yaml:"dbname"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// ConnString prefers an explicit DSN; otherwise it is built from components
// when host is provided. It returns "" when neither is set.
func (p Config) ConnString() string {
	if dsn, ok := util.TrimEmptyCheck(p.DSN); ok {
		return dsn
	}
	host, ok := util.TrimEmptyCheck(p.Host)
	if !ok {
		return ""
	}
	port := p.Port
	if port == 0 {
		port = constants.DefaultPostgresPort
	}
	ssl := util.TrimWithDefault(p.SSLMode, constants.DefaultPostgresSSLMode)
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		strings.TrimSpace(p.User), strings.TrimSpace(p.Password),
		host, port, strings.TrimSpace(p.DBName), ssl,
	)
}
