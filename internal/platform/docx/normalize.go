package docx

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/paperwork/paperwork/internal/platform/input"
)

// ToString coerces a template leaf. Numbers and booleans are formatted,
// strings pass through and everything else becomes "".
func ToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case json.Number:
		return t.String()
	}
	return ""
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeLoop maps a loop source entry-wise. Primitive entries become
// strings and record entries become flat records of strings. Anything that is
// not a list yields an empty list.
func NormalizeLoop(v any, label func(field, value string) string) []any {
	arr, ok := input.ArrayValue(v)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(arr))
	for _, e := range arr {
		rec, isRec := e.(map[string]any)
		if !isRec {
			out = append(out, ToString(e))
			continue
		}
		row := make(map[string]any, len(rec))
		for k, fv := range rec {
			s := ToString(fv)
			if label != nil {
				s = label(k, s)
			}
			row[k] = s
		}
		out = append(out, row)
	}
	return out
}
