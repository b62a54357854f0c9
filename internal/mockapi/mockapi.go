// Package mockapi serves a small in-memory imitation of the HubSpot CRM v3
// object API. It backs the tests and the `hubspotrun mock` command.
package mockapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loykin/hubspotrun/internal/common"
)

const (
	defaultSecret   = "hubspotrun-mock-secret"
	defaultTokenTTL = 30 * time.Minute
	defaultLimit    = 10
	maxLimit        = 100
)

// Options configures the fake API.
type Options struct {
	// APIKey is accepted as a Bearer token or as the hapikey query value.
	APIKey string
	// Secret signs and verifies issued OAuth access tokens (HS256).
	Secret []byte
	// ClientID, ClientSecret and RefreshToken gate the token endpoint when set.
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenTTL     time.Duration
	// Now overrides the clock used for timestamps and token expiry.
	Now func() time.Time
}

// Object is a stored CRM record.
type Object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  string            `json:"createdAt"`
	UpdatedAt  string            `json:"updatedAt"`
	Archived   bool              `json:"archived"`
}

type searchSort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

type fault struct {
	code      int
	remaining int
}

// Server is the fake HubSpot API. Safe for concurrent use.
type Server struct {
	opts   Options
	engine *gin.Engine

	mu      sync.Mutex
	objects map[string][]Object
	nextID  map[string]int
	fault   *fault
	hits    int
}

// New builds a server with its routes registered.
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte(defaultSecret)
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		opts:    opts,
		engine:  gin.New(),
		objects: map[string][]Object{},
		nextID:  map[string]int{},
	}
	s.engine.Use(gin.Recovery(), s.logRequests())

	s.engine.POST("/oauth/v1/token", s.issueToken)

	objects := s.engine.Group("/crm/v3/objects", s.requireAuth(), s.injectFaults())
	objects.POST("/:type", s.create)
	objects.GET("/:type", s.list)
	objects.GET("/:type/:id", s.get)
	objects.POST("/:type/search", s.search)
	return s
}

// Handler exposes the gin engine.
func (s *Server) Handler() http.Handler { return s.engine }

// Hits returns how many object requests reached the server, auth failures included.
func (s *Server) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}

// FailNext makes the next n object requests fail with code.
func (s *Server) FailNext(code, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = &fault{code: code, remaining: n}
}

// Seed stores an object of type typ and returns it.
func (s *Server) Seed(typ string, props map[string]interface{}) Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(typ, props)
}

func (s *Server) insertLocked(typ string, props map[string]interface{}) Object {
	s.nextID[typ]++
	id := strconv.Itoa(s.nextID[typ])
	ts := s.opts.Now().UTC().Format(time.RFC3339Nano)
	p := stringify(props)
	p["hs_object_id"] = id
	p["createdate"] = ts
	o := Object{ID: id, Properties: p, CreatedAt: ts, UpdatedAt: ts}
	s.objects[typ] = append(s.objects[typ], o)
	return o
}

// stringify mirrors HubSpot returning every property value as a string.
func stringify(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in)+2)
	for k, v := range in {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

func apiError(c *gin.Context, code int, category, msg string) {
	c.AbortWithStatusJSON(code, gin.H{
		"status":        "error",
		"message":       msg,
		"category":      category,
		"correlationId": "00000000-0000-4000-8000-000000000000",
	})
}

func (s *Server) logRequests() gin.HandlerFunc {
	logger := common.GetLogger().WithComponent("mockapi")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("mock request",
			"method", c.Request.Method,
			"url", c.Request.URL.String(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) injectFaults() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		f := s.fault
		if f == nil || f.remaining <= 0 {
			s.mu.Unlock()
			c.Next()
			return
		}
		f.remaining--
		code := f.code
		s.mu.Unlock()

		category := "INTERNAL_ERROR"
		msg := http.StatusText(code)
		if code == http.StatusTooManyRequests {
			category = "RATE_LIMITS"
			msg = "You have reached your secondly limit."
		}
		apiError(c, code, category, msg)
	}
}

func (s *Server) create(c *gin.Context) {
	var in struct {
		Properties map[string]interface{} `json:"properties"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input JSON: "+err.Error())
		return
	}
	if in.Properties == nil {
		apiError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Property values were not valid: properties is required")
		return
	}
	s.mu.Lock()
	o := s.insertLocked(c.Param("type"), in.Properties)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, o)
}

func (s *Server) get(c *gin.Context) {
	typ, id := c.Param("type"), c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.objects[typ] {
		if o.ID == id {
			c.JSON(http.StatusOK, project(o, c.Query("properties")))
			return
		}
	}
	apiError(c, http.StatusNotFound, "OBJECT_NOT_FOUND", "resource not found")
}

func (s *Server) list(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))
	after := parseAfter(c.Query("after"))
	s.page(c, c.Param("type"), limit, after, c.Query("properties"), false, nil)
}

func (s *Server) search(c *gin.Context) {
	var in struct {
		Limit        int           `json:"limit"`
		After        string        `json:"after"`
		Properties   []string      `json:"properties"`
		Sorts        []searchSort  `json:"sorts"`
		FilterGroups []interface{} `json:"filterGroups"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		apiError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input JSON: "+err.Error())
		return
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	s.page(c, c.Param("type"), limit, parseAfter(in.After), strings.Join(in.Properties, ","), true, in.Sorts)
}

func (s *Server) page(c *gin.Context, typ string, limit, after int, props string, withTotal bool, sorts []searchSort) {
	s.mu.Lock()
	all := append([]Object(nil), s.objects[typ]...)
	s.mu.Unlock()

	sortObjects(all, sorts)

	if after > len(all) {
		after = len(all)
	}
	end := after + limit
	if end > len(all) {
		end = len(all)
	}
	results := make([]Object, 0, end-after)
	for _, o := range all[after:end] {
		results = append(results, project(o, props))
	}

	out := gin.H{"results": results}
	if withTotal {
		out["total"] = len(all)
	}
	if end < len(all) {
		next := strconv.Itoa(end)
		out["paging"] = gin.H{"next": gin.H{
			"after": next,
			"link":  fmt.Sprintf("%s?after=%s", c.Request.URL.Path, next),
		}}
	}
	c.JSON(http.StatusOK, out)
}

func sortObjects(objs []Object, sorts []searchSort) {
	if len(sorts) == 0 {
		return
	}
	key := sorts[0].PropertyName
	desc := strings.EqualFold(sorts[0].Direction, "DESCENDING")
	sort.SliceStable(objs, func(i, j int) bool {
		a, b := objs[i].Properties[key], objs[j].Properties[key]
		if desc {
			return a > b
		}
		return a < b
	})
}

// project keeps only the requested properties. An empty list keeps all.
func project(o Object, props string) Object {
	props = strings.TrimSpace(props)
	if props == "" {
		return o
	}
	kept := map[string]string{}
	for _, p := range strings.Split(props, ",") {
		p = strings.TrimSpace(p)
		if v, ok := o.Properties[p]; ok {
			kept[p] = v
		}
	}
	o.Properties = kept
	return o
}

func parseLimit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

func parseAfter(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
