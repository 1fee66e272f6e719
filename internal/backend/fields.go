package backend

import (
	"encoding/json"
	"fmt"
	"math"
)

// String returns the string field key, or "" when absent or of another type.
func (d Document) String(key string) string {
	s, _ := d.Fields[key].(string)
	return s
}

// Strings accepts both []string and the []any produced by JSON decoding.
func (d Document) Strings(key string) []string {
	switch v := d.Fields[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Int reads numeric fields regardless of the integer or float type the
// driver decoded them into.
func (d Document) Int(key string) int {
	switch v := d.Fields[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(math.Round(v))
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// Match reports whether the document satisfies every filter. Drivers that
// filter in process use it.
func (d Document) Match(filters []Filter) bool {
	for _, f := range filters {
		if !d.matchOne(f) {
			return false
		}
	}
	return true
}

func (d Document) matchOne(f Filter) bool {
	var got any
	switch f.Attribute {
	case AttrID:
		got = d.ID
	default:
		got = d.Fields[f.Attribute]
	}

	want := fmt.Sprint(got)
	for _, v := range f.Values {
		if fmt.Sprint(v) == want {
			return true
		}
	}
	return false
}
