package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrRequestFailed marks failures talking to the API: transport errors,
	// auth acquisition and non-success responses.
	ErrRequestFailed = errors.New("hubspot request failed")
	// ErrInvalidInput marks fixtures rejected before any request is sent.
	ErrInvalidInput = errors.New("invalid handler input")
)

// Error is returned under the "Raise Error" policy. It carries the same
// message the "Error Message" policy would place in the result.
type Error struct {
	StatusCode int
	Message    string
	Kind       error
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// StatusMessage maps a response code onto the message reported when the
// response body does not carry one.
func StatusMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "400: Bad Request"
	case http.StatusUnauthorized:
		return "401: Unauthorized"
	case http.StatusNotFound:
		return "404: Page not found"
	case http.StatusMethodNotAllowed:
		return "405: Method Not Allowed"
	case http.StatusInternalServerError:
		return "500: Internal Server Error"
	default:
		return fmt.Sprintf("%d: Unexpected response from server", code)
	}
}

// ResponseMessage prefers the HubSpot "message" field of an error body.
func ResponseMessage(code int, body string) string {
	if gjson.Valid(body) {
		if m := gjson.Get(body, "message"); m.Exists() && strings.TrimSpace(m.String()) != "" {
			return m.String()
		}
	}
	return StatusMessage(code)
}
