package mockapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func do(t *testing.T, h http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var bearer = map[string]string{"Authorization": "Bearer pat-test"}

func TestCreateTicket(t *testing.T) {
	s := New(Options{APIKey: "pat-test"})
	body := `{"properties":{"hs_pipeline":0,"hs_ticket_category":"RFE","hs_pipeline_stage":1,"hs_ticket_priority":"HIGH","subject":"test ticket from api"}}`

	rec := do(t, s.Handler(), http.MethodPost, "/crm/v3/objects/tickets", body, bearer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := gjson.Parse(rec.Body.String())
	assert.Equal(t, "1", res.Get("id").String())
	assert.Equal(t, "0", res.Get("properties.hs_pipeline").String())
	assert.Equal(t, "1", res.Get("properties.hs_pipeline_stage").String())
	assert.Equal(t, "test ticket from api", res.Get("properties.subject").String())
	assert.False(t, res.Get("archived").Bool())

	rec = do(t, s.Handler(), http.MethodGet, "/crm/v3/objects/tickets/1?properties=subject", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	props := gjson.Get(rec.Body.String(), "properties").Map()
	assert.Len(t, props, 1)
	assert.Equal(t, "test ticket from api", props["subject"].String())
}

func TestCreate_InvalidBody(t *testing.T) {
	s := New(Options{APIKey: "k"})
	h := map[string]string{"Authorization": "Bearer k"}

	rec := do(t, s.Handler(), http.MethodPost, "/crm/v3/objects/tickets", `{"properties":`, h)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", gjson.Get(rec.Body.String(), "status").String())
	assert.NotEmpty(t, gjson.Get(rec.Body.String(), "message").String())

	rec = do(t, s.Handler(), http.MethodPost, "/crm/v3/objects/tickets", `{}`, h)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthFailures(t *testing.T) {
	s := New(Options{APIKey: "good"})
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/crm/v3/objects/tickets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication credentials not found.", gjson.Get(rec.Body.String(), "message").String())

	rec = do(t, h, http.MethodGet, "/crm/v3/objects/tickets", "", map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/crm/v3/objects/tickets?hapikey=bad", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/crm/v3/objects/tickets?hapikey=good", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, s.Hits())
}

func TestEmptyKeyRejectsEverything(t *testing.T) {
	s := New(Options{})
	rec := do(t, s.Handler(), http.MethodGet, "/crm/v3/objects/tickets", "", map[string]string{"Authorization": "Bearer "})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUnknownID(t *testing.T) {
	s := New(Options{APIKey: "pat-test"})
	rec := do(t, s.Handler(), http.MethodGet, "/crm/v3/objects/tickets/999", "", bearer)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "resource not found", gjson.Get(rec.Body.String(), "message").String())
}

func TestListPaging(t *testing.T) {
	s := New(Options{APIKey: "pat-test"})
	for i := 0; i < 5; i++ {
		s.Seed("contacts", map[string]interface{}{"email": "u" + string(rune('a'+i)) + "@example.com"})
	}

	rec := do(t, s.Handler(), http.MethodGet, "/crm/v3/objects/contacts?limit=2", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	res := gjson.Parse(rec.Body.String())
	assert.Len(t, res.Get("results").Array(), 2)
	assert.Equal(t, "2", res.Get("paging.next.after").String())

	rec = do(t, s.Handler(), http.MethodGet, "/crm/v3/objects/contacts?limit=2&after=4", "", bearer)
	res = gjson.Parse(rec.Body.String())
	assert.Len(t, res.Get("results").Array(), 1)
	assert.False(t, res.Get("paging").Exists())
}

func TestSearch(t *testing.T) {
	s := New(Options{APIKey: "pat-test"})
	for _, n := range []string{"Beta", "Alpha", "Gamma"} {
		s.Seed("companies", map[string]interface{}{"name": n, "domain": strings.ToLower(n) + ".io"})
	}
	body := `{"limit":2,"properties":["name"],"sorts":[{"propertyName":"name","direction":"ASCENDING"}],"filterGroups":[]}`
	rec := do(t, s.Handler(), http.MethodPost, "/crm/v3/objects/companies/search", body, bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(3), res.Get("total").Int())
	assert.Equal(t, "Alpha", res.Get("results.0.properties.name").String())
	assert.False(t, res.Get("results.0.properties.domain").Exists())
	assert.Equal(t, "2", res.Get("paging.next.after").String())
}

func TestFailNext(t *testing.T) {
	s := New(Options{APIKey: "pat-test"})
	s.FailNext(http.StatusTooManyRequests, 1)

	rec := do(t, s.Handler(), http.MethodGet, "/crm/v3/objects/tickets", "", bearer)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITS", gjson.Get(rec.Body.String(), "category").String())

	rec = do(t, s.Handler(), http.MethodGet, "/crm/v3/objects/tickets", "", bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func tokenRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/oauth/v1/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestOAuthTokenFlow(t *testing.T) {
	s := New(Options{ClientID: "cid", ClientSecret: "cs", RefreshToken: "rt"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, tokenRequest(url.Values{
		"grant_type": {"refresh_token"}, "client_id": {"cid"}, "client_secret": {"cs"}, "refresh_token": {"rt"},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	access := gjson.Get(rec.Body.String(), "access_token").String()
	require.NotEmpty(t, access)
	assert.Equal(t, "bearer", gjson.Get(rec.Body.String(), "token_type").String())

	got := do(t, s.Handler(), http.MethodGet, "/crm/v3/objects/tickets", "", map[string]string{"Authorization": "Bearer " + access})
	assert.Equal(t, http.StatusOK, got.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, tokenRequest(url.Values{
		"grant_type": {"refresh_token"}, "client_id": {"cid"}, "client_secret": {"cs"}, "refresh_token": {"stale"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(Options{TokenTTL: time.Minute, Now: func() time.Time { return now }})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, tokenRequest(url.Values{
		"grant_type": {"refresh_token"}, "client_id": {"any"}, "refresh_token": {"any"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	access := gjson.Get(rec.Body.String(), "access_token").String()

	now = now.Add(2 * time.Minute)
	got := do(t, s.Handler(), http.MethodGet, "/crm/v3/objects/tickets", "", map[string]string{"Authorization": "Bearer " + access})
	assert.Equal(t, http.StatusUnauthorized, got.Code)
}
