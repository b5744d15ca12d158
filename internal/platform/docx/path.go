package docx

import (
	"strconv"
	"strings"

	"github.com/paperwork/paperwork/internal/platform/input"
)

// Context is the template context handed to the DOCX engine. Its leaves are
// strings, lists of strings or lists of string records.
type Context = map[string]any

// splitPath turns "a.b[0].c" and "a.b.0.c" into the same segments.
func splitPath(path string) []string {
	path = strings.NewReplacer("[", ".", "]", "").Replace(strings.TrimSpace(path))
	out := make([]string, 0, strings.Count(path, ".")+1)
	for _, seg := range strings.Split(path, ".") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// GetPathValue walks a dotted path through nested objects and numerically
// indexed arrays. Any segment that does not resolve yields (nil, false).
func GetPathValue(root any, path string) (any, bool) {
	cur := root
	for _, seg := range splitPath(path) {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			arr, ok := input.ArrayValue(c)
			if !ok {
				return nil, false
			}
			i, ok := index(seg, len(arr))
			if !ok {
				return nil, false
			}
			cur = arr[i]
		}
	}
	return cur, true
}

func index(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// ContextBuilder assembles a Context it owns. Intermediate objects are
// created on demand; caller data is never written to.
type ContextBuilder struct {
	root Context
}

// NewContextBuilder starts from an empty context.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{root: Context{}}
}

// NewContextBuilderFrom starts from a deep copy of ctx.
func NewContextBuilderFrom(ctx Context) *ContextBuilder {
	root, _ := cloneValue(ctx).(map[string]any)
	if root == nil {
		root = Context{}
	}
	return &ContextBuilder{root: root}
}

// Set stores value at path. It reports false, leaving the context as it was,
// when a segment runs into a scalar or an out-of-range array index.
func (b *ContextBuilder) Set(path string, value any) bool {
	segs := splitPath(path)
	if len(segs) == 0 {
		return false
	}
	var cur any = b.root
	for _, seg := range segs[:len(segs)-1] {
		switch c := cur.(type) {
		case map[string]any:
			next, ok := c[seg]
			if !ok || next == nil {
				next = map[string]any{}
				c[seg] = next
			}
			cur = next
		case []any:
			i, ok := index(seg, len(c))
			if !ok {
				return false
			}
			if c[i] == nil {
				c[i] = map[string]any{}
			}
			cur = c[i]
		default:
			return false
		}
	}

	last := segs[len(segs)-1]
	switch c := cur.(type) {
	case map[string]any:
		c[last] = value
		return true
	case []any:
		i, ok := index(last, len(c))
		if !ok {
			return false
		}
		c[i] = value
		return true
	}
	return false
}

// Get reads path from the context under construction.
func (b *ContextBuilder) Get(path string) (any, bool) {
	return GetPathValue(b.root, path)
}

// Context returns the assembled context.
func (b *ContextBuilder) Context() Context {
	return b.root
}

// CloneContext returns a deep copy of ctx.
func CloneContext(ctx Context) Context {
	out, _ := cloneValue(ctx).(map[string]any)
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return nil
		}
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		if t == nil {
			return nil
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
