package bridge

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrMissingParameter = errors.New("bridge: qualification references a parameter that was not provided")
	ErrInvalidOrder     = errors.New("bridge: invalid order metadata")
)

var (
	parameterRe = regexp.MustCompile(`<%=\s*parameter\[\s*"([^"]*)"\s*\]\s*%>`)
	fieldRe     = regexp.MustCompile(`^<%=\s*field\[\s*"([^"]*)"\s*\]\s*%>$`)
	propDotRe   = regexp.MustCompile(`properties\.(.+)$`)
	propBrackRe = regexp.MustCompile(`properties\[["']([^"']+)["']\]`)
)

// SubstituteParameters replaces <%=parameter["Name"]%> references with values
// from params. A reference to an absent parameter is an error.
func SubstituteParameters(s string, params map[string]string) (string, error) {
	var missing []string
	out := parameterRe.ReplaceAllStringFunc(s, func(m string) string {
		name := parameterRe.FindStringSubmatch(m)[1]
		v, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(missing, ", "))
	}
	return out, nil
}

// ParseQuery splits k=v&k2=v2 into a map. Only the first "=" of a pair
// separates key from value, so JSON bodies survive as values.
func ParseQuery(q string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(q, "&") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// OrderItem is one entry of the order metadata.
type OrderItem struct {
	Field     string
	Ascending bool
}

// ParseOrder reads order metadata of the form
// <%=field["name"]%>:ASC,<%=field["other"]%>:DESC. Bare field names are accepted.
func ParseOrder(s string) ([]OrderItem, error) {
	var out []OrderItem
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir := part, "ASC"
		if i := strings.LastIndex(part, ":"); i >= 0 {
			field, dir = strings.TrimSpace(part[:i]), strings.ToUpper(strings.TrimSpace(part[i+1:]))
		}
		if m := fieldRe.FindStringSubmatch(field); m != nil {
			field = m[1]
		}
		if field == "" || (dir != "ASC" && dir != "DESC") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, part)
		}
		out = append(out, OrderItem{Field: field, Ascending: dir == "ASC"})
	}
	return out, nil
}

// propertyName extracts x from properties.x, $.properties.x or
// properties["x"]. It returns "" for other fields.
func propertyName(field string) string {
	if m := propBrackRe.FindStringSubmatch(field); m != nil {
		return m[1]
	}
	if m := propDotRe.FindStringSubmatch(field); m != nil {
		return m[1]
	}
	return ""
}

// PropertyNames lists the HubSpot properties referenced by fields, in order.
func PropertyNames(fields []string) []string {
	var out []string
	for _, f := range fields {
		if p := propertyName(f); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// gjsonPath converts a $.a.b / $["a"][0] JSON path into gjson syntax. ok is
// false for fields that are not JSON paths.
func gjsonPath(field string) (string, bool) {
	if !strings.HasPrefix(field, "$.") && !strings.HasPrefix(field, "$[") {
		return "", false
	}
	rest := field[1:]
	var parts []string
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			parts = append(parts, escapeKey(rest[:end]))
			rest = rest[end:]
		case '[':
			end := strings.Index(rest, "]")
			if end < 0 {
				return "", false
			}
			tok := strings.Trim(rest[1:end], `"'`)
			parts = append(parts, escapeKey(tok))
			rest = rest[end+1:]
		default:
			return "", false
		}
	}
	return strings.Join(parts, "."), len(parts) > 0
}

// escapeKey escapes gjson path metacharacters in a literal key.
func escapeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		switch r {
		case '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
