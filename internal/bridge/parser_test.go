package bridge

import (
	"errors"
	"testing"
)

func TestSubstituteParameters(t *testing.T) {
	got, err := SubstituteParameters(`id=<%=parameter["Ticket Id"]%>`, map[string]string{"Ticket Id": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "id=42" {
		t.Fatalf("got %q", got)
	}

	_, err = SubstituteParameters(`<%= parameter["Missing"] %>`, nil)
	if !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestParseQuery_KeepsJSONValues(t *testing.T) {
	q := ParseQuery(`id=7&body={"filterGroups":[{"filters":[{"propertyName":"a","operator":"EQ","value":"x=y"}]}]}`)
	if q["id"] != "7" {
		t.Fatalf("id = %q", q["id"])
	}
	if q["body"] != `{"filterGroups":[{"filters":[{"propertyName":"a","operator":"EQ","value":"x=y"}]}]}` {
		t.Fatalf("body = %q", q["body"])
	}
	if len(ParseQuery("")) != 0 {
		t.Fatalf("empty query should give empty map")
	}
}

func TestParseOrder(t *testing.T) {
	items, err := ParseOrder(`<%=field["properties.subject"]%>:DESC, createdAt`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Field != "properties.subject" || items[0].Ascending {
		t.Fatalf("first item = %+v", items[0])
	}
	if items[1].Field != "createdAt" || !items[1].Ascending {
		t.Fatalf("second item = %+v", items[1])
	}

	if _, err := ParseOrder("subject:SIDEWAYS"); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
}

func TestPropertyNames(t *testing.T) {
	got := PropertyNames([]string{"id", "properties.subject", `$.properties["hs_pipeline"]`, "createdAt"})
	if len(got) != 2 || got[0] != "subject" || got[1] != "hs_pipeline" {
		t.Fatalf("got %v", got)
	}
}

func TestGjsonPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"$.properties.subject", "properties.subject", true},
		{`$["properties"]["hs.name"]`, `properties.hs\.name`, true},
		{"$.results[0].id", "results.0.id", true},
		{"properties.subject", "", false},
		{"$[unterminated", "", false},
	}
	for _, c := range cases {
		got, ok := gjsonPath(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("gjsonPath(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestLookupMapping(t *testing.T) {
	m, err := lookupMapping("Tickets > Pipeline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.structure != StructureTickets {
		t.Fatalf("structure = %s", m.structure)
	}
	if _, err := lookupMapping("Deals"); !errors.Is(err, ErrInvalidStructure) {
		t.Fatalf("expected ErrInvalidStructure, got %v", err)
	}
}

func TestPrepare_Paths(t *testing.T) {
	cases := []struct {
		name     string
		req      Request
		path     string
		accessor string
		search   bool
	}{
		{"list", Request{Structure: "Contacts"}, "/crm/v3/objects/contacts", "results", false},
		{"by id", Request{Structure: "Companies", Query: "id=9"}, "/crm/v3/objects/companies/9", "results", false},
		{"search", Request{Structure: "Tickets", Query: "body={}"}, "/crm/v3/objects/tickets/search", "results", true},
		{"adhoc", Request{Structure: "Adhoc", Query: "/crm/v3/owners?accessor=results&limit=5"}, "/crm/v3/owners", "results", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := prepare(c.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.path != c.path || p.accessor != c.accessor || p.isSearch != c.search {
				t.Fatalf("got path=%q accessor=%q search=%v", p.path, p.accessor, p.isSearch)
			}
			if _, ok := p.params["body"]; ok {
				t.Fatalf("body should be consumed")
			}
		})
	}
}

func TestPrepare_InvalidBody(t *testing.T) {
	_, err := prepare(Request{Structure: "Tickets", Query: "body={nope"})
	if !errors.Is(err, ErrInvalidSearchBody) {
		t.Fatalf("expected ErrInvalidSearchBody, got %v", err)
	}
}

func TestStructureLabel(t *testing.T) {
	tests := map[string]string{
		"Tickets":               "Tickets",
		"Adhoc > /crm/v3/x":     "Adhoc",
		" Contacts > By Email ": "Contacts",
		"Deals":                 "unknown",
	}
	for in, want := range tests {
		if got := structureLabel(in); got != want {
			t.Errorf("structureLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
