package util

import (
	"github.com/loykin/hubspotrun/internal/env"
)

// RenderAnyTemplate walks arbitrary structures (map[string]any, []any) and renders
// all string values using the provided env. Strings that fail to render are
// kept as-is. Non-string scalars are returned unchanged.
func RenderAnyTemplate(in interface{}, e *env.Env) interface{} {
	var fn func(v interface{}) interface{}
	fn = func(v interface{}) interface{} {
		switch t := v.(type) {
		case map[string]interface{}:
			m := make(map[string]interface{}, len(t))
			for k, vv := range t {
				m[k] = fn(vv)
			}
			return m
		case []interface{}:
			arr := make([]interface{}, len(t))
			for i := range t {
				arr[i] = fn(t[i])
			}
			return arr
		case string:
			if e == nil {
				return t
			}
			return e.Render(t)
		default:
			return v
		}
	}
	return fn(in)
}
