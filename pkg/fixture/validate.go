package fixture

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	valid "github.com/asaskevich/govalidator"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidLocation  = errors.New("api_location is not an absolute URL")
	ErrInvalidMethod    = errors.New("method is not a standard HTTP verb")
	ErrInvalidDebugFlag = errors.New(`enable_debug_logging must be "true" or "false"`)
	ErrInvalidBody      = errors.New("body is not a JSON object")
	ErrInvalidPath      = errors.New("path is empty")
	ErrTicketSchema     = errors.New("body does not match the ticket properties schema")
)

var standardMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodConnect: {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// IsStandardMethod reports whether m (any case) is one of the HTTP/1.1 verbs.
func IsStandardMethod(m string) bool {
	_, ok := standardMethods[strings.ToUpper(strings.TrimSpace(m))]
	return ok
}

// Validate checks the shape of the fixture and reports every problem found.
func (in Input) Validate() error {
	var errs []error

	loc := strings.TrimSpace(in.Info.APILocation)
	if !valid.IsRequestURL(loc) || !(strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLocation, in.Info.APILocation))
	}

	switch strings.ToLower(strings.TrimSpace(in.Info.EnableDebugLogging)) {
	case "", "true", "false":
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidDebugFlag, in.Info.EnableDebugLogging))
	}

	if !IsStandardMethod(in.Parameters.Method) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMethod, in.Parameters.Method))
	}

	if strings.TrimSpace(in.Parameters.Path) == "" {
		errs = append(errs, ErrInvalidPath)
	}

	if in.Parameters.HasBody() {
		if _, err := in.Parameters.BodyObject(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// BodyObject parses the body independently of the outer serialization.
func (r RequestSpec) BodyObject() (gjson.Result, error) {
	body := strings.TrimSpace(r.Body)
	if !gjson.Valid(body) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON text", ErrInvalidBody)
	}
	parsed := gjson.Parse(body)
	if !parsed.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: top level is %s", ErrInvalidBody, parsed.Type)
	}
	return parsed, nil
}

// TicketProperties are the fields a ticket creation body carries.
type TicketProperties struct {
	Pipeline      int64
	Category      string
	PipelineStage int64
	Priority      string
	Subject       string
}

// ticketFields maps each ticket property to its expected JSON type.
var ticketFields = map[string]gjson.Type{
	"hs_pipeline":        gjson.Number,
	"hs_ticket_category": gjson.String,
	"hs_pipeline_stage":  gjson.Number,
	"hs_ticket_priority": gjson.String,
	"subject":            gjson.String,
}

// TicketProperties checks that body.properties holds exactly the ticket keys
// with their expected types and returns them.
func (r RequestSpec) TicketProperties() (TicketProperties, error) {
	obj, err := r.BodyObject()
	if err != nil {
		return TicketProperties{}, err
	}
	props := obj.Get("properties")
	if !props.IsObject() {
		return TicketProperties{}, fmt.Errorf("%w: missing properties object", ErrTicketSchema)
	}

	seen := 0
	var schemaErr error
	props.ForEach(func(key, value gjson.Result) bool {
		want, ok := ticketFields[key.String()]
		if !ok {
			schemaErr = fmt.Errorf("%w: unexpected key %q", ErrTicketSchema, key.String())
			return false
		}
		if value.Type != want {
			schemaErr = fmt.Errorf("%w: %s is %s, want %s", ErrTicketSchema, key.String(), value.Type, want)
			return false
		}
		seen++
		return true
	})
	if schemaErr != nil {
		return TicketProperties{}, schemaErr
	}
	if seen != len(ticketFields) {
		return TicketProperties{}, fmt.Errorf("%w: expected %d keys, got %d", ErrTicketSchema, len(ticketFields), seen)
	}

	return TicketProperties{
		Pipeline:      props.Get("hs_pipeline").Int(),
		Category:      props.Get("hs_ticket_category").String(),
		PipelineStage: props.Get("hs_pipeline_stage").Int(),
		Priority:      props.Get("hs_ticket_priority").String(),
		Subject:       props.Get("subject").String(),
	}, nil
}
