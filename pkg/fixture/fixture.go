// Package fixture describes the input a HubSpot API handler is invoked with:
// connection info for the API and the parameters of a single request.
//
// A fixture is plain data. It is decoded once, validated, and handed to an
// executor; nothing in this package performs I/O against the API.
package fixture

import (
	"net/http"
	"strings"
)

// Error handling policy labels understood by the handler.
const (
	ErrorHandlingMessage = "Error Message"
	ErrorHandlingRaise   = "Raise Error"
)

// DefaultAPILocation is the public HubSpot API base URL.
const DefaultAPILocation = "https://api.hubapi.com"

// TicketsPath is the CRM v3 tickets collection.
const TicketsPath = "/crm/v3/objects/tickets"

// Input is the top level fixture literal.
type Input struct {
	Info       ConnectionInfo `json:"info" yaml:"info"`
	Parameters RequestSpec    `json:"parameters" yaml:"parameters"`
}

// ConnectionInfo carries the environment parameters consumed by the executor.
type ConnectionInfo struct {
	APIKey             string `json:"api_key" yaml:"api_key"`
	APILocation        string `json:"api_location" yaml:"api_location"`
	EnableDebugLogging string `json:"enable_debug_logging" yaml:"enable_debug_logging"`
}

// RequestSpec describes the single request a fixture drives.
// Body is JSON text carried as a string, never a nested object.
type RequestSpec struct {
	ErrorHandling string `json:"error_handling" yaml:"error_handling"`
	Method        string `json:"method" yaml:"method"`
	Path          string `json:"path" yaml:"path"`
	Body          string `json:"body" yaml:"body"`
}

// TicketCreate returns the canonical ticket creation fixture.
func TicketCreate() Input {
	return Input{
		Info: ConnectionInfo{
			APIKey:             "",
			APILocation:        DefaultAPILocation,
			EnableDebugLogging: "true",
		},
		Parameters: RequestSpec{
			ErrorHandling: ErrorHandlingMessage,
			Method:        http.MethodPost,
			Path:          TicketsPath,
			Body:          `{"properties":{"hs_pipeline":0,"hs_ticket_category":"RFE","hs_pipeline_stage":1,"hs_ticket_priority":"HIGH","subject":"test ticket from api"}}`,
		},
	}
}

// DebugEnabled reports whether enable_debug_logging is "true" (any case).
func (c ConnectionInfo) DebugEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(c.EnableDebugLogging), "true")
}

// RaiseErrors reports whether the policy label asks for failures to be raised
// instead of returned as a message.
func (r RequestSpec) RaiseErrors() bool {
	return strings.EqualFold(strings.TrimSpace(r.ErrorHandling), ErrorHandlingRaise)
}

// NormalizedMethod returns the upper-cased, trimmed HTTP verb.
func (r RequestSpec) NormalizedMethod() string {
	return strings.ToUpper(strings.TrimSpace(r.Method))
}

// HasBody reports whether the request carries a payload.
func (r RequestSpec) HasBody() bool {
	return strings.TrimSpace(r.Body) != ""
}
