package main

import (
	"testing"
	"time"

	"github.com/loykin/hubspotrun/internal/constants"
	"github.com/loykin/hubspotrun/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestConfigDoc_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
logging:
  level: debug
  format: json
  mask_sensitive: false
client:
  timeout: 5s
  rate_limit: 2.5
  rate_burst: 3
auth:
  type: hapikey
store:
  type: sqlite
  table_prefix: team
  sqlite:
    path: runs.db
env:
  - name: owner
    value: "42"
retry:
  max_retries: 1
  initial_delay: 10ms
`)
	var doc ConfigDoc
	require.NoError(t, doc.Load(path))

	assert.Equal(t, "debug", doc.Logging.Level)
	require.NotNil(t, doc.Logging.MaskSensitive)
	assert.False(t, *doc.Logging.MaskSensitive)
	assert.Equal(t, "5s", doc.Client.Timeout)
	require.NotNil(t, doc.Auth)
	assert.Equal(t, "hapikey", doc.Auth.Type)
	assert.Equal(t, "runs.db", doc.Store.SQLite.Path)
	table, err := doc.Store.RunsTable()
	require.NoError(t, err)
	assert.Equal(t, "team"+constants.RunsSuffix, table)

	lim := doc.Limiter()
	assert.Equal(t, rate.Limit(2.5), lim.Limit())
	assert.Equal(t, 3, lim.Burst())

	rc, err := doc.RetryConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, rc.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, rc.InitialDelay)

	v, ok := doc.GetEnv().Lookup("owner")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestConfigDoc_LoadRejectsDirectory(t *testing.T) {
	var doc ConfigDoc
	assert.Error(t, doc.Load(t.TempDir()))
}

func TestLoadConfig_NoPath(t *testing.T) {
	setViper(t, map[string]interface{}{"config": ""})
	doc, err := loadConfig()
	require.NoError(t, err)
	assert.Nil(t, doc.Auth)
}

func TestConfigDoc_GetEnvFromOS(t *testing.T) {
	t.Setenv("HUBSPOTRUN_TEST_OWNER", "7")
	doc := ConfigDoc{Env: []EnvConfig{
		{Name: "owner", ValueFromEnv: "HUBSPOTRUN_TEST_OWNER"},
		{Name: "", Value: "skipped"},
	}}
	v, ok := doc.GetEnv().Lookup("owner")
	assert.True(t, ok)
	assert.Equal(t, "7", v)
}

func TestConfigDoc_SetupLogging(t *testing.T) {
	cases := []struct {
		level, format string
		wantErr       bool
	}{
		{"", "", false},
		{"DEBUG", "json", false},
		{"warning", "text", false},
		{"loud", "", true},
		{"info", "color", true},
	}
	for _, c := range cases {
		doc := ConfigDoc{Logging: LoggingConfig{Level: c.level, Format: c.format}}
		err := doc.SetupLogging()
		if c.wantErr {
			assert.Error(t, err, "level=%q format=%q", c.level, c.format)
		} else {
			assert.NoError(t, err, "level=%q format=%q", c.level, c.format)
		}
	}
}

func TestConfigDoc_Defaults(t *testing.T) {
	var doc ConfigDoc

	lim := doc.Limiter()
	assert.Equal(t, rate.Limit(constants.DefaultRateLimit), lim.Limit())
	assert.Equal(t, constants.DefaultRateBurst, lim.Burst())

	doc.Client.RateLimit = -1
	assert.Equal(t, rate.Inf, doc.Limiter().Limit())

	rc, err := doc.RetryConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, rc.MaxRetries)

	_, err = doc.HTTPClient()
	assert.NoError(t, err)
}

func TestConfigDoc_InvalidValues(t *testing.T) {
	neg := -1
	doc := ConfigDoc{Retry: RetryConfig{MaxRetries: &neg}}
	_, err := doc.RetryConfig()
	assert.Error(t, err)

	doc = ConfigDoc{Retry: RetryConfig{MaxDelay: "soon"}}
	_, err = doc.RetryConfig()
	assert.Error(t, err)

	doc = ConfigDoc{Client: ClientConfig{Timeout: "forever"}}
	_, err = doc.HTTPClient()
	assert.Error(t, err)
}

func TestConfigDoc_OpenStore(t *testing.T) {
	doc := ConfigDoc{Store: store.Config{Disabled: true}}
	st, err := doc.OpenStore()
	require.NoError(t, err)
	assert.Nil(t, st)

	doc = ConfigDoc{Store: store.Config{Driver: "mysql"}}
	_, err = doc.OpenStore()
	assert.ErrorIs(t, err, store.ErrUnsupportedDriver)
}
