package httpc

import (
	"crypto/tls"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds a single HubSpot request.
const DefaultTimeout = 30 * time.Second

type Httpc struct {
	TlsConfig *tls.Config
	Timeout   time.Duration
	// BaseURL is prefixed to relative request URLs when set.
	BaseURL string
	// Transport replaces the default round tripper (tests, proxies).
	Transport http.RoundTripper
}

// New returns a resty.Client configured according to the receiver's settings.
// Defaults: MinVersion TLS1.3 when a TLS config is given with MinVersion zero.
func (h *Httpc) New() *resty.Client {
	c := resty.New()

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.SetTimeout(timeout)

	if base := strings.TrimRight(strings.TrimSpace(h.BaseURL), "/"); base != "" {
		c.SetBaseURL(base)
	}

	if cfg := h.TlsConfig; cfg != nil {
		if cfg.MinVersion == 0 {
			cfg.MinVersion = tls.VersionTLS13
		}
		c.SetTLSClientConfig(cfg)
	}

	if h.Transport != nil {
		c.SetTransport(h.Transport)
	}
	return c
}

// ParseTLSVersion converts a TLS version string to the corresponding crypto/tls constant.
// Supports "1.2", "12", "tls1.2", "tls12" and the same forms for 1.0, 1.1 and 1.3.
// Returns 0 if the version string is not recognized.
func ParseTLSVersion(version string) uint16 {
	switch strings.TrimSpace(strings.ToLower(version)) {
	case "1.0", "10", "tls1.0", "tls10":
		return tls.VersionTLS10
	case "1.1", "11", "tls1.1", "tls11":
		return tls.VersionTLS11
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13
	default:
		return 0
	}
}

// TLSConfig builds a tls.Config from loosely typed client settings. It returns
// nil when nothing was requested so resty keeps its defaults.
func TLSConfig(insecure bool, minVersion, maxVersion string) *tls.Config {
	minV := ParseTLSVersion(minVersion)
	maxV := ParseTLSVersion(maxVersion)
	if !insecure && minV == 0 && maxV == 0 {
		return nil
	}
	// #nosec G402 -- insecure is an explicit operator choice for self-signed proxies
	return &tls.Config{MinVersion: minV, MaxVersion: maxV, InsecureSkipVerify: insecure}
}
