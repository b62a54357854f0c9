package auth

import (
	"context"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/hubspotrun/internal/util"
)

// Built-in auth types.
const (
	TypePrivateApp = "private_app"
	TypeHapikey    = "hapikey"
	TypeOAuth2     = "oauth2"
)

// Method is the plugin interface for an authentication method.
type Method interface {
	Acquire(ctx context.Context, creds Credentials) (Injector, error)
}

// Factory builds a Method from a loosely-typed spec map, usually by decoding
// it with mapstructure.
type Factory func(spec map[string]interface{}) (Method, error)

var (
	mu        sync.RWMutex
	providers = map[string]Factory{}
)

// normalizeKey lower-cases and trims provider type keys.
func normalizeKey(s string) string { return util.TrimAndLower(s) }

// Register registers an auth factory under a type key. Empty keys and nil
// factories are ignored.
func Register(typ string, f Factory) {
	key := normalizeKey(typ)
	if key == "" || f == nil {
		return
	}
	mu.Lock()
	providers[key] = f
	mu.Unlock()
}

func lookup(typ string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := providers[normalizeKey(typ)]
	return f, ok
}

// Types lists the registered type keys in sorted order.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(providers))
	for k := range providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func decode(spec map[string]interface{}, out interface{}) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return d.Decode(spec)
}

func init() {
	Register(TypePrivateApp, func(spec map[string]interface{}) (Method, error) {
		var c PrivateAppConfig
		if err := decode(spec, &c); err != nil {
			return nil, err
		}
		return c, nil
	})

	Register(TypeHapikey, func(spec map[string]interface{}) (Method, error) {
		var c HapikeyConfig
		if err := decode(spec, &c); err != nil {
			return nil, err
		}
		return c, nil
	})

	Register(TypeOAuth2, func(spec map[string]interface{}) (Method, error) {
		var c OAuth2Config
		if err := decode(spec, &c); err != nil {
			return nil, err
		}
		return c, nil
	})
}
