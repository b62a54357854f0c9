// Package env holds the layered variables used to template fixture paths and
// bodies before a request is sent.
package env

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"
)

type Map map[string]string

// Env supports layered variables:
// - Global: variables from config (apply to the whole run)
// - Local: variables attached to a single fixture
// Lookup and rendering give precedence to Local over Global.
type Env struct {
	mu     sync.RWMutex
	Global Map `yaml:"-" json:"-" mapstructure:"-"`
	Local  Map `yaml:"env" json:"env" mapstructure:"env"`
}

// New returns a pointer to Env with both maps initialized.
func New() *Env {
	return &Env{Global: Map{}, Local: Map{}}
}

// Clone copies both layers.
func (e *Env) Clone() *Env {
	out := New()
	if e == nil {
		return out
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for k, v := range e.Global {
		out.Global[k] = v
	}
	for k, v := range e.Local {
		out.Local[k] = v
	}
	return out
}

// Set stores val under key in the "global" or "local" layer. Anything other
// than "local" selects global.
func (e *Env) Set(layer, key, val string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if strings.EqualFold(strings.TrimSpace(layer), "local") {
		if e.Local == nil {
			e.Local = Map{}
		}
		e.Local[key] = val
		return
	}
	if e.Global == nil {
		e.Global = Map{}
	}
	e.Global[key] = val
}

// SetFromOS stores the value of the process variable envVar under key in the
// global layer. It reports whether the variable was set and non-empty.
func (e *Env) SetFromOS(key, envVar string) bool {
	v := os.Getenv(envVar)
	e.Set("global", key, v)
	return v != ""
}

// Lookup searches Local first, then Global.
func (e *Env) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if v, ok := e.Local[key]; ok {
		return v, true
	}
	if v, ok := e.Global[key]; ok {
		return v, true
	}
	return "", false
}

func (e *Env) merged() map[string]string {
	m := map[string]string{}
	if e == nil {
		return m
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for k, v := range e.Global {
		m[k] = v
	}
	for k, v := range e.Local {
		m[k] = v
	}
	return m
}

// Render expands {{.env.name}} references. Input without "{{" is returned
// unchanged, and so is input that fails to parse or references a missing key.
func (e *Env) Render(s string) string {
	out, err := e.RenderStrict(s)
	if err != nil {
		return s
	}
	return out
}

// RenderStrict behaves like Render but reports template and missing-key errors.
// Request bodies use it so that a typo does not silently reach the API.
func (e *Env) RenderStrict(s string) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	if err := defaultGuard.Check(s); err != nil {
		return "", err
	}
	t, err := template.New("hubspot").Option("missingkey=error").Parse(s)
	if err != nil {
		return "", fmt.Errorf("env: parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, map[string]interface{}{"env": e.merged()}); err != nil {
		return "", fmt.Errorf("env: render template: %w", err)
	}
	return buf.String(), nil
}
