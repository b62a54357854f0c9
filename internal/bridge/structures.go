package bridge

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidStructure is returned for a structure with no mapping.
var ErrInvalidStructure = errors.New("bridge: invalid structure")

const (
	StructureCompanies = "Companies"
	StructureContacts  = "Contacts"
	StructureTickets   = "Tickets"
	StructureAdhoc     = "Adhoc"
)

// mapping ties a structure to the response key holding its records and to
// the function building its request path.
type mapping struct {
	structure string
	accessor  string
	path      func(params map[string]string) string
}

var mappings = map[string]mapping{
	StructureCompanies: {StructureCompanies, "results", objectPath("/crm/v3/objects/companies")},
	StructureContacts:  {StructureContacts, "results", objectPath("/crm/v3/objects/contacts")},
	StructureTickets:   {StructureTickets, "results", objectPath("/crm/v3/objects/tickets")},
	StructureAdhoc:     {StructureAdhoc, "", adhocPath},
}

const adhocPathKey = "adapterPath"

var structureSep = regexp.MustCompile(`\s*>\s*`)

// objectPath appends /<id> when an id parameter is given and /search when a
// body parameter is given. Both parameters are consumed.
func objectPath(base string) func(map[string]string) string {
	return func(params map[string]string) string {
		p := base
		if id, ok := params["id"]; ok {
			p = p + "/" + id
			delete(params, "id")
		}
		if _, ok := params["body"]; ok {
			p += "/search"
		}
		return p
	}
}

func adhocPath(params map[string]string) string {
	p := params[adhocPathKey]
	delete(params, adhocPathKey)
	return p
}

// lookupMapping selects the mapping from the first segment of an "A > B" structure.
func lookupMapping(structure string) (mapping, error) {
	segments := structureSep.Split(strings.TrimSpace(structure), -1)
	m, ok := mappings[segments[0]]
	if !ok {
		return mapping{}, fmt.Errorf("%w: '%s' is not a valid structure", ErrInvalidStructure, segments[0])
	}
	return m, nil
}

// structureLabel returns the mapped structure name, or "unknown" when
// structure has no mapping.
func structureLabel(structure string) string {
	m, err := lookupMapping(structure)
	if err != nil {
		return "unknown"
	}
	return m.structure
}

// parameters parses the query for m and substitutes request parameters.
// Adhoc queries are path?params; the path is kept under adhocPathKey.
func (m mapping) parameters(query string, reqParams map[string]string) (map[string]string, error) {
	var params map[string]string
	if m.structure == StructureAdhoc {
		path, rest, _ := strings.Cut(query, "?")
		params = ParseQuery(rest)
		params[adhocPathKey] = strings.TrimSpace(path)
	} else {
		params = ParseQuery(query)
	}
	for k, v := range params {
		sv, err := SubstituteParameters(v, reqParams)
		if err != nil {
			return nil, err
		}
		params[k] = sv
	}
	return params, nil
}

// accessorFor returns the response key holding records. Adhoc takes it from
// the accessor parameter, which is consumed.
func (m mapping) accessorFor(params map[string]string) string {
	if m.structure != StructureAdhoc {
		return m.accessor
	}
	a := params["accessor"]
	delete(params, "accessor")
	return a
}
