package docx

import (
	"strconv"
	"strings"
)

// EnumLabels maps a schema path (array indexes removed) and an enum value to
// its display label from ui:enumNames.
type EnumLabels map[string]map[string]string

// ParseEnumLabels collects enum labels by walking schema properties and array
// items alongside the matching uiSchema nodes.
func ParseEnumLabels(schema, uiSchema map[string]any) EnumLabels {
	out := EnumLabels{}
	out.walk(schema, uiSchema, "")
	return out
}

func (e EnumLabels) walk(schema, ui map[string]any, path string) {
	if schema == nil {
		return
	}
	e.collect(schema, ui, path)
	if props, ok := schema["properties"].(map[string]any); ok {
		for name, sub := range props {
			subSchema, _ := sub.(map[string]any)
			subUI, _ := ui[name].(map[string]any)
			e.walk(subSchema, subUI, joinPath(path, name))
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		itemsUI, _ := ui["items"].(map[string]any)
		e.walk(items, itemsUI, path)
	}
}

func (e EnumLabels) collect(schema, ui map[string]any, path string) {
	values, ok := schema["enum"].([]any)
	if !ok || path == "" {
		return
	}
	names, ok := ui["ui:enumNames"].([]any)
	if !ok {
		return
	}
	labels := make(map[string]string, len(values))
	for i, v := range values {
		if i >= len(names) {
			break
		}
		if name, isStr := names[i].(string); isStr && name != "" {
			labels[ToString(v)] = name
		}
	}
	if len(labels) > 0 {
		e[path] = labels
	}
}

// Label returns the label for value at a model path, if one is declared.
func (e EnumLabels) Label(path, value string) (string, bool) {
	labels, ok := e[schemaPath(path)]
	if !ok {
		return "", false
	}
	l, ok := labels[value]
	return l, ok
}

// schemaPath drops numeric segments so "contacts.0.relation" matches the
// item schema of "contacts".
func schemaPath(path string) string {
	segs := splitPath(path)
	out := segs[:0]
	for _, s := range segs {
		if _, err := strconv.Atoi(s); err == nil {
			continue
		}
		out = append(out, s)
	}
	return strings.Join(out, ".")
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
