package docx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SupportedVersion is the only mapping manifest version accepted.
const SupportedVersion = 1

// Binding connects a template variable to a document model path.
type Binding struct {
	Var  string `json:"var"`
	Path string `json:"path"`
}

// I18NConfig selects the translations folded into the "t" subtree.
type I18NConfig struct {
	Prefix string `json:"prefix,omitempty"`
}

// Mapping is a parsed docx/mapping.json manifest.
type Mapping struct {
	Version int         `json:"version"`
	Fields  []Binding   `json:"fields"`
	Loops   []Binding   `json:"loops,omitempty"`
	I18N    *I18NConfig `json:"i18n,omitempty"`
}

// Paths lists every model path the mapping reads.
func (m *Mapping) Paths() []string {
	out := make([]string, 0, len(m.Fields)+len(m.Loops))
	for _, b := range m.Fields {
		out = append(out, b.Path)
	}
	for _, b := range m.Loops {
		out = append(out, b.Path)
	}
	return out
}

// Prefix returns the configured translation prefix, if any.
func (m *Mapping) Prefix() string {
	if m.I18N == nil {
		return ""
	}
	return strings.TrimSpace(m.I18N.Prefix)
}

// ParseMapping decodes and validates a mapping manifest. source names the
// manifest in error messages.
func ParseMapping(source string, raw []byte) (*Mapping, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &StageError{Stage: StageParse, Path: source, Err: err}
	}
	return ValidateMapping(doc)
}

// ValidateMapping checks a decoded manifest. Violations are reported, never
// coerced.
func ValidateMapping(doc any) (*Mapping, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, validationError(fmt.Errorf("manifest must be an object"))
	}

	version, present := obj["version"]
	if !present || version == nil {
		return nil, validationError(ErrMissingVersion)
	}
	if n, isNum := version.(float64); !isNum || n != SupportedVersion {
		return nil, validationError(fmt.Errorf("%w %v", ErrUnsupportedVersion, version))
	}

	rawFields, present := obj["fields"]
	if !present {
		return nil, validationError(ErrMissingFields)
	}
	fieldList, isArr := rawFields.([]any)
	if !isArr {
		return nil, validationError(ErrInvalidFields)
	}
	if len(fieldList) == 0 {
		return nil, validationError(ErrMissingFields)
	}
	fields, err := bindings("fields", fieldList)
	if err != nil {
		return nil, err
	}

	m := &Mapping{Version: SupportedVersion, Fields: fields}

	if rawLoops, present := obj["loops"]; present && rawLoops != nil {
		loopList, isArr := rawLoops.([]any)
		if !isArr {
			return nil, validationError(ErrInvalidLoops)
		}
		if m.Loops, err = bindings("loops", loopList); err != nil {
			return nil, err
		}
	}

	if rawI18N, present := obj["i18n"]; present && rawI18N != nil {
		cfg, isObj := rawI18N.(map[string]any)
		if !isObj {
			return nil, validationError(ErrInvalidI18N)
		}
		prefix, _ := cfg["prefix"].(string)
		m.I18N = &I18NConfig{Prefix: prefix}
	}
	return m, nil
}

func bindings(name string, list []any) ([]Binding, error) {
	out := make([]Binding, 0, len(list))
	for i, e := range list {
		rec, _ := e.(map[string]any)
		v, _ := rec["var"].(string)
		p, _ := rec["path"].(string)
		if strings.TrimSpace(v) == "" || strings.TrimSpace(p) == "" {
			return nil, validationError(fmt.Errorf("%s[%d]: %w", name, i, ErrInvalidBinding))
		}
		out = append(out, Binding{Var: strings.TrimSpace(v), Path: strings.TrimSpace(p)})
	}
	return out, nil
}
