package mockapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "hubspotrun-mock"

func equal(a, b string) bool {
	return a != "" && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// requireAuth accepts the configured key as Bearer or hapikey, or a Bearer
// JWT issued by the token endpoint.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.hits++
		s.mu.Unlock()

		if key := c.Query("hapikey"); key != "" {
			if equal(s.opts.APIKey, key) {
				c.Next()
				return
			}
			apiError(c, http.StatusUnauthorized, "INVALID_AUTHENTICATION", "The API key provided is invalid.")
			return
		}

		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			apiError(c, http.StatusUnauthorized, "INVALID_AUTHENTICATION", "Authentication credentials not found.")
			return
		}
		tok := strings.TrimSpace(h[len("Bearer "):])
		if equal(s.opts.APIKey, tok) || s.validToken(tok) {
			c.Next()
			return
		}
		apiError(c, http.StatusUnauthorized, "INVALID_AUTHENTICATION", "The OAuth token used to make this call expired or is invalid.")
	}
}

func (s *Server) validToken(raw string) bool {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.opts.Now),
	)
	return err == nil && tok.Valid
}

// issueToken implements the refresh_token grant of /oauth/v1/token.
func (s *Server) issueToken(c *gin.Context) {
	if c.PostForm("grant_type") != "refresh_token" {
		apiError(c, http.StatusBadRequest, "BAD_GRANT_TYPE", "grant_type must be refresh_token")
		return
	}
	clientID := c.PostForm("client_id")
	refresh := c.PostForm("refresh_token")
	if clientID == "" || refresh == "" {
		apiError(c, http.StatusBadRequest, "BAD_REFRESH_TOKEN", "missing client_id or refresh_token")
		return
	}
	if s.opts.ClientID != "" && !equal(s.opts.ClientID, clientID) {
		apiError(c, http.StatusBadRequest, "BAD_CLIENT_ID", "unknown client_id")
		return
	}
	if s.opts.ClientSecret != "" && !equal(s.opts.ClientSecret, c.PostForm("client_secret")) {
		apiError(c, http.StatusBadRequest, "BAD_CLIENT_SECRET", "client_secret does not match")
		return
	}
	if s.opts.RefreshToken != "" && !equal(s.opts.RefreshToken, refresh) {
		apiError(c, http.StatusBadRequest, "BAD_REFRESH_TOKEN", "missing or unknown refresh token")
		return
	}

	now := s.opts.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  signed,
		"token_type":    "bearer",
		"expires_in":    int(s.opts.TokenTTL.Seconds()),
		"refresh_token": refresh,
	})
}
