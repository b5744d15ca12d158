// Package input reads untrusted, loosely shaped form data.
//
// Form data arrives as decoded JSON (map[string]any, []any, string, float64,
// bool, nil) with no guarantee about its shape. Every accessor here performs a
// single guarded read and degrades to a zero value instead of failing, so a
// malformed field can never abort a projection.
package input

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record returns v as an object when it is one.
func Record(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

// Nested walks keys through nested objects and returns the object found at the
// end, or nil when any step is missing or not an object.
func Nested(m map[string]any, keys ...string) map[string]any {
	cur := m
	for _, k := range keys {
		if cur == nil {
			return nil
		}
		next, ok := Record(cur[k])
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// Raw returns the value stored under key. A nil map yields (nil, false).
func Raw(m map[string]any, key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// String returns the trimmed string stored under key, or nil when the value is
// missing, not a string, or blank.
func String(m map[string]any, key string) *string {
	v, _ := Raw(m, key)
	return StringValue(v)
}

// StringValue is String for a bare value.
func StringValue(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return Ptr(s)
}

// Text returns the trimmed string under key or "".
func Text(m map[string]any, key string) string {
	return Deref(String(m, key))
}

// Bool reports whether the value under key is strictly the boolean true.
func Bool(m map[string]any, key string) bool {
	v, _ := Raw(m, key)
	b, ok := v.(bool)
	return ok && b
}

// Number reads a numeric value. Numeric strings are accepted since form
// widgets frequently deliver numbers as text.
func Number(m map[string]any, key string) (float64, bool) {
	v, _ := Raw(m, key)
	return NumberValue(v)
}

// NumberValue is Number for a bare value.
func NumberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// Array returns the slice stored under key.
func Array(m map[string]any, key string) ([]any, bool) {
	v, _ := Raw(m, key)
	return ArrayValue(v)
}

// ArrayValue normalizes the slice shapes that decoded or hand-built data can
// take into []any.
func ArrayValue(v any) ([]any, bool) {
	switch arr := v.(type) {
	case []any:
		return arr, true
	case []map[string]any:
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return out, true
	case []string:
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}

// Records returns the object entries of the array under key. Non-object
// entries are skipped.
func Records(m map[string]any, key string) []map[string]any {
	arr, ok := Array(m, key)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, e := range arr {
		if r, ok := Record(e); ok {
			out = append(out, r)
		}
	}
	return out
}

// Strings returns the non-blank trimmed strings of the array under key.
func Strings(m map[string]any, key string) []string {
	v, _ := Raw(m, key)
	return StringsValue(v)
}

// StringsValue is Strings for a bare value.
func StringsValue(v any) []string {
	arr, ok := ArrayValue(v)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s := StringValue(e); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// Ptr returns a pointer to the trimmed s, or nil when s is blank.
func Ptr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// AllNil reports whether every pointer is nil.
func AllNil(ps ...*string) bool {
	for _, p := range ps {
		if p != nil {
			return false
		}
	}
	return true
}

// JoinNonEmpty joins the non-nil values with sep and returns nil when nothing
// is left.
func JoinNonEmpty(sep string, ps ...*string) *string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	return Ptr(strings.Join(parts, sep))
}
