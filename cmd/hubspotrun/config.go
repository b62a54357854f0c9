package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/hubspotrun/internal/auth"
	"github.com/loykin/hubspotrun/internal/common"
	"github.com/loykin/hubspotrun/internal/constants"
	"github.com/loykin/hubspotrun/internal/env"
	"github.com/loykin/hubspotrun/internal/httpc"
	"github.com/loykin/hubspotrun/internal/retry"
	"github.com/loykin/hubspotrun/internal/store"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

type EnvConfig struct {
	Name         string `mapstructure:"name" yaml:"name"`
	Value        string `mapstructure:"value" yaml:"value"`
	ValueFromEnv string `mapstructure:"valueFromEnv" yaml:"valueFromEnv"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
}

type ClientConfig struct {
	Timeout       string  `mapstructure:"timeout" yaml:"timeout"`
	RateLimit     float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst     int     `mapstructure:"rate_burst" yaml:"rate_burst"`
	Insecure      bool    `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string  `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxTLSVersion string  `mapstructure:"max_tls_version" yaml:"max_tls_version"`
}

type RetryConfig struct {
	MaxRetries   *int   `mapstructure:"max_retries" yaml:"max_retries"`
	InitialDelay string `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay     string `mapstructure:"max_delay" yaml:"max_delay"`
}

type ConfigDoc struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Auth    *auth.Auth    `mapstructure:"auth" yaml:"auth"`
	Store   store.Config  `mapstructure:"store" yaml:"store"`
	Env     []EnvConfig   `mapstructure:"env" yaml:"env"`
	Retry   RetryConfig   `mapstructure:"retry" yaml:"retry"`
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user/CI; cleaned and validated above
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	return dec.Decode(c)
}

// loadConfig reads the document named by the "config" key. No path means an
// empty document, so every command works without a config file.
func loadConfig() (*ConfigDoc, error) {
	doc := &ConfigDoc{}
	path := strings.TrimSpace(viper.GetString("config"))
	if path == "" {
		return doc, nil
	}
	if err := doc.Load(path); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return doc, nil
}

// GetEnv builds the template environment. Entries with valueFromEnv read the
// process environment when no literal value is given.
func (c *ConfigDoc) GetEnv() *env.Env {
	base := env.New()
	for _, kv := range c.Env {
		name := strings.TrimSpace(kv.Name)
		if name == "" {
			continue
		}
		if kv.Value == "" && strings.TrimSpace(kv.ValueFromEnv) != "" {
			if !base.SetFromOS(name, strings.TrimSpace(kv.ValueFromEnv)) {
				common.GetLogger().Warn("env variable requested but empty or not set", "name", name, "env_var", kv.ValueFromEnv)
			}
			continue
		}
		base.Set("global", name, kv.Value)
	}
	return base
}

// SetupLogging configures the global logger. Logs go to stderr so command
// output on stdout stays machine readable.
func (c *ConfigDoc) SetupLogging() error {
	level, ok := common.ParseLogLevel(strings.ToLower(strings.TrimSpace(c.Logging.Level)))
	if !ok {
		return fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}

	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	var logger *common.Logger
	switch format {
	case "json":
		logger = common.NewLoggerTo(os.Stderr, level, true)
	case "text", "":
		logger = common.NewLoggerTo(os.Stderr, level, false)
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json)", c.Logging.Format)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	common.EnableMasking(maskingEnabled)
	common.SetDefaultLogger(logger)

	logger.Debug("logging configured", "level", level.String(), "format", format, "mask_sensitive", maskingEnabled)
	return nil
}

func parseDuration(field, s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return d, nil
}

// HTTPClient builds the resty client from the client section.
func (c *ConfigDoc) HTTPClient() (*resty.Client, error) {
	timeout, err := parseDuration("client.timeout", c.Client.Timeout)
	if err != nil {
		return nil, err
	}
	h := httpc.Httpc{Timeout: timeout}
	if c.Client.Insecure || c.Client.MinTLSVersion != "" || c.Client.MaxTLSVersion != "" {
		h.TlsConfig = httpc.TLSConfig(c.Client.Insecure, c.Client.MinTLSVersion, c.Client.MaxTLSVersion)
	}
	return h.New(), nil
}

// Limiter paces handler requests. A negative rate_limit disables pacing.
func (c *ConfigDoc) Limiter() *rate.Limiter {
	limit := c.Client.RateLimit
	burst := c.Client.RateBurst
	if burst <= 0 {
		burst = constants.DefaultRateBurst
	}
	switch {
	case limit < 0:
		return rate.NewLimiter(rate.Inf, burst)
	case limit == 0:
		limit = constants.DefaultRateLimit
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}

// RetryConfig overlays the retry section on retry.DefaultRetryConfig.
func (c *ConfigDoc) RetryConfig() (*retry.Config, error) {
	rc := retry.DefaultRetryConfig()
	if c.Retry.MaxRetries != nil {
		if *c.Retry.MaxRetries < 0 {
			return nil, fmt.Errorf("invalid retry.max_retries %d", *c.Retry.MaxRetries)
		}
		rc.MaxRetries = *c.Retry.MaxRetries
	}
	initial, err := parseDuration("retry.initial_delay", c.Retry.InitialDelay)
	if err != nil {
		return nil, err
	}
	if initial > 0 {
		rc.InitialDelay = initial
	}
	maxDelay, err := parseDuration("retry.max_delay", c.Retry.MaxDelay)
	if err != nil {
		return nil, err
	}
	if maxDelay > 0 {
		rc.MaxDelay = maxDelay
	}
	return rc, nil
}

// OpenStore returns nil when the store is disabled.
func (c *ConfigDoc) OpenStore() (*store.Store, error) {
	if c.Store.Disabled {
		return nil, nil
	}
	return store.Open(c.Store)
}
