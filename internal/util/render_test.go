package util

import (
	"testing"

	"github.com/loykin/hubspotrun/internal/env"
)

func TestRenderAnyTemplate_NestedValues(t *testing.T) {
	e := env.New()
	e.Set("global", "client_id", "cid-1")
	e.Set("local", "secret", "s3")

	in := map[string]interface{}{
		"plain":     "no templating here",
		"client_id": "{{.env.client_id}}",
		"nested": map[string]interface{}{
			"client_secret": "{{.env.secret}}",
		},
		"scopes":  []interface{}{"crm.objects.tickets.write", "{{.env.client_id}}"},
		"missing": "{{.env.nope}}",
		"port":    5432,
	}

	out, ok := RenderAnyTemplate(in, e).(map[string]interface{})
	if !ok {
		t.Fatalf("expected map output")
	}
	if out["plain"] != "no templating here" {
		t.Fatalf("plain mismatch: %v", out["plain"])
	}
	if out["client_id"] != "cid-1" {
		t.Fatalf("client_id not rendered: %v", out["client_id"])
	}
	if got := out["nested"].(map[string]interface{})["client_secret"]; got != "s3" {
		t.Fatalf("nested value not rendered: %v", got)
	}
	if got := out["scopes"].([]interface{})[1]; got != "cid-1" {
		t.Fatalf("slice value not rendered: %v", got)
	}
	if out["missing"] != "{{.env.nope}}" {
		t.Fatalf("missing key should stay unchanged, got %v", out["missing"])
	}
	if out["port"] != 5432 {
		t.Fatalf("non-string changed: %v", out["port"])
	}
}

func TestRenderAnyTemplate_NilEnv(t *testing.T) {
	if got := RenderAnyTemplate("{{.env.x}}", nil); got != "{{.env.x}}" {
		t.Fatalf("nil env should leave input, got %v", got)
	}
}

func TestTrimHelpers(t *testing.T) {
	if v, ok := TrimEmptyCheck("  a "); v != "a" || !ok {
		t.Fatalf("TrimEmptyCheck: %q %v", v, ok)
	}
	if _, ok := TrimEmptyCheck("   "); ok {
		t.Fatal("blank should report false")
	}
	if TrimWithDefault(" ", "d") != "d" || TrimWithDefault(" x ", "d") != "x" {
		t.Fatal("TrimWithDefault mismatch")
	}
	if TrimAndLower(" SQLite ") != "sqlite" {
		t.Fatal("TrimAndLower mismatch")
	}
}
