package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

// TokenPath is the HubSpot OAuth token endpoint relative to api_location.
const TokenPath = "/oauth/v1/token"

// OAuth2Config exchanges a HubSpot refresh token for an access token.
type OAuth2Config struct {
	Header       string   `mapstructure:"header"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RefreshToken string   `mapstructure:"refresh_token"`
	TokenURL     string   `mapstructure:"token_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// Acquire performs the refresh_token grant. token_url defaults to
// api_location + /oauth/v1/token. Client credentials are sent in the form
// body, which is what HubSpot expects.
func (c OAuth2Config) Acquire(ctx context.Context, creds Credentials) (Injector, error) {
	refresh := strings.TrimSpace(c.RefreshToken)
	if refresh == "" {
		return nil, errors.New("oauth2: refresh_token is required")
	}
	clientID := strings.TrimSpace(c.ClientID)
	if clientID == "" {
		return nil, errors.New("oauth2: client_id is required")
	}
	tokenURL := strings.TrimSpace(c.TokenURL)
	if tokenURL == "" {
		base := strings.TrimRight(strings.TrimSpace(creds.APILocation), "/")
		if base == "" {
			return nil, errors.New("oauth2: token_url or api_location is required")
		}
		tokenURL = base + TokenPath
	}

	ocfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: strings.TrimSpace(c.ClientSecret),
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: c.Scopes,
	}
	tok, err := ocfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}).Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, errors.New("oauth2: empty access token")
	}

	header := headerOrDefault(c.Header)
	value := tok.Type() + " " + tok.AccessToken
	return func(r *resty.Request) {
		r.SetHeader(header, value)
	}, nil
}
