// Package auth resolves how HubSpot credentials are attached to outgoing requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/hubspotrun/internal/env"
	"github.com/loykin/hubspotrun/internal/util"
)

// ErrUnsupportedType is returned for an auth type with no registered factory.
var ErrUnsupportedType = errors.New("auth: unsupported type")

// Credentials carries the connection fields of a fixture.
type Credentials struct {
	APIKey      string
	APILocation string
}

// Injector attaches credentials to a request before it is sent.
type Injector func(r *resty.Request)

// Apply runs the injector when present.
func (i Injector) Apply(r *resty.Request) {
	if i != nil && r != nil {
		i(r)
	}
}

// Auth is the config-level selection of an auth method.
type Auth struct {
	Type   string                 `mapstructure:"type" yaml:"type"`
	Config map[string]interface{} `mapstructure:"config" yaml:"config"`
}

// Resolve builds the configured method and acquires an injector for creds.
// String values in Config, nested ones included, are rendered through e first
// so secrets can be supplied as {{.env.name}} references. A nil Auth selects private_app.
func (a *Auth) Resolve(ctx context.Context, e *env.Env, creds Credentials) (Injector, error) {
	typ := TypePrivateApp
	var cfg map[string]interface{}
	if a != nil {
		if t := strings.TrimSpace(a.Type); t != "" {
			typ = t
		}
		if a.Config != nil {
			cfg, _ = util.RenderAnyTemplate(a.Config, e).(map[string]interface{})
		}
	}
	return Acquire(ctx, typ, cfg, creds)
}

// Acquire looks up the factory for typ, builds the method from spec and
// acquires an injector.
func Acquire(ctx context.Context, typ string, spec map[string]interface{}, creds Credentials) (Injector, error) {
	f, ok := lookup(typ)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
	}
	if spec == nil {
		spec = map[string]interface{}{}
	}
	m, err := f(spec)
	if err != nil {
		return nil, fmt.Errorf("auth: %s config: %w", normalizeKey(typ), err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return m.Acquire(ctx, creds)
}
