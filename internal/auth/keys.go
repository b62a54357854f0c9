package auth

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
)

// PrivateAppConfig sends the private app access token as a Bearer header.
// Token overrides the fixture api_key when set.
type PrivateAppConfig struct {
	Header string `mapstructure:"header"`
	Token  string `mapstructure:"token"`
}

func (c PrivateAppConfig) Acquire(_ context.Context, creds Credentials) (Injector, error) {
	key := firstNonEmpty(c.Token, creds.APIKey)
	if key == "" {
		return nil, nil
	}
	header := headerOrDefault(c.Header)
	return func(r *resty.Request) {
		r.SetHeader(header, "Bearer "+key)
	}, nil
}

// HapikeyConfig appends the legacy hapikey query parameter to every URL.
type HapikeyConfig struct {
	Param string `mapstructure:"param"`
	Key   string `mapstructure:"key"`
}

func (c HapikeyConfig) Acquire(_ context.Context, creds Credentials) (Injector, error) {
	key := firstNonEmpty(c.Key, creds.APIKey)
	if key == "" {
		return nil, nil
	}
	param := strings.TrimSpace(c.Param)
	if param == "" {
		param = "hapikey"
	}
	return func(r *resty.Request) {
		r.SetQueryParam(param, key)
	}, nil
}

func headerOrDefault(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return "Authorization"
	}
	return h
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
