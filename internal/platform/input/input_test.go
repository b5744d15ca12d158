package input

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	m := map[string]any{
		"name":   "  Ada  ",
		"blank":  "   ",
		"number": 42.0,
		"object": map[string]any{"a": "b"},
	}

	tests := []struct {
		key  string
		want *string
	}{
		{"name", Ptr("Ada")},
		{"blank", nil},
		{"number", nil},
		{"object", nil},
		{"missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, String(m, tt.key))
		})
	}
}

func TestString_NilMap(t *testing.T) {
	assert.Nil(t, String(nil, "x"))
	assert.False(t, Bool(nil, "x"))
	assert.Nil(t, Records(nil, "x"))
}

func TestBool_Strict(t *testing.T) {
	m := map[string]any{"t": true, "f": false, "s": "true", "n": 1.0}
	assert.True(t, Bool(m, "t"))
	assert.False(t, Bool(m, "f"))
	assert.False(t, Bool(m, "s"))
	assert.False(t, Bool(m, "n"))
}

func TestNumber(t *testing.T) {
	m := map[string]any{
		"float": 30.0,
		"int":   40,
		"text":  " 50 ",
		"comma": "2,5",
		"json":  json.Number("60"),
		"bad":   "abc",
		"bool":  true,
		"empty": "",
	}

	tests := []struct {
		key  string
		want float64
		ok   bool
	}{
		{"float", 30, true},
		{"int", 40, true},
		{"text", 50, true},
		{"comma", 2.5, true},
		{"json", 60, true},
		{"bad", 0, false},
		{"bool", 0, false},
		{"empty", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := Number(m, tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecords_SkipsNonObjects(t *testing.T) {
	m := map[string]any{
		"list": []any{map[string]any{"a": "1"}, "x", nil, map[string]any{"b": "2"}},
		"str":  "not a list",
	}
	assert.Len(t, Records(m, "list"), 2)
	assert.Nil(t, Records(m, "str"))
}

func TestStrings(t *testing.T) {
	m := map[string]any{"codes": []any{"G", " ", 3.0, " B "}}
	assert.Equal(t, []string{"G", "B"}, Strings(m, "codes"))
	assert.Equal(t, []string{"x"}, StringsValue([]string{"x", ""}))
}

func TestNested(t *testing.T) {
	m := map[string]any{"a": map[string]any{"b": map[string]any{"c": "d"}, "s": "x"}}
	assert.Equal(t, map[string]any{"c": "d"}, Nested(m, "a", "b"))
	assert.Nil(t, Nested(m, "a", "s"))
	assert.Nil(t, Nested(m, "missing", "b"))
	assert.Nil(t, Nested(nil, "a"))
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, Ptr("Ada Lovelace"), JoinNonEmpty(" ", Ptr("Ada"), nil, Ptr("Lovelace")))
	assert.Nil(t, JoinNonEmpty(" ", nil, nil))
	assert.True(t, AllNil(nil, nil))
	assert.False(t, AllNil(nil, Ptr("x")))
}
