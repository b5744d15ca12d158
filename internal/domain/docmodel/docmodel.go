// Package docmodel projects raw form data onto per-formpack document models.
//
// Each formpack registers a Builder. Builders never fail: malformed input
// degrades to nil leaves and empty lists.
package docmodel

import (
	"encoding/json"
	"time"

	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/input"
	"github.com/paperwork/paperwork/internal/platform/pdfmodel"
)

// Model is a projected document.
type Model interface {
	FormpackID() string
	// TemplateData returns the model as a plain tree of maps, slices, strings,
	// booleans, numbers and nils.
	TemplateData() map[string]any
}

// Input is what a builder receives.
type Input struct {
	Locale     string
	Data       map[string]any
	Translator i18n.Translator
	// Now is the export time used for date lines.
	Now time.Time
}

// T is a nil-safe shorthand for Translator.T.
func (in Input) T(key string, opts ...i18n.Option) string {
	if in.Translator == nil {
		return i18n.KeyTranslator{}.T(key, opts...)
	}
	return in.Translator.T(key, opts...)
}

// Lookup is a nil-safe shorthand for Translator.Lookup.
func (in Input) Lookup(key string) (any, bool) {
	if in.Translator == nil {
		return nil, false
	}
	return in.Translator.Lookup(key)
}

// IsGerman reports whether the input locale resolves to German.
func (in Input) IsGerman() bool {
	return i18n.IsGerman(in.Locale)
}

// Builder projects one formpack.
type Builder interface {
	FormpackID() string
	Build(in Input) Model
}

// PdfBuilder is implemented by builders that can also produce a PDF block
// tree.
type PdfBuilder interface {
	BuildPdf(in Input) pdfmodel.Document
}

// Tree converts a struct into the plain tree form used by TemplateData.
func Tree(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// Generic is the fallback model for formpacks without a registered builder.
// It keeps the non-blank string leaves of the raw data.
type Generic struct {
	ID   string
	Data map[string]any
}

func (g Generic) FormpackID() string { return g.ID }

func (g Generic) TemplateData() map[string]any {
	out, _ := stringLeaves(g.Data).(map[string]any)
	if out == nil {
		return map[string]any{}
	}
	return out
}

func stringLeaves(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			if c := stringLeaves(e); c != nil {
				out[k] = c
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			if c := stringLeaves(e); c != nil {
				out = append(out, c)
			}
		}
		return out
	case string:
		if p := input.Ptr(t); p != nil {
			return *p
		}
	}
	return nil
}
