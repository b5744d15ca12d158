package docmodel

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/input"
	"github.com/paperwork/paperwork/internal/platform/pdfmodel"
)

// TranslatorSource hands out translators per locale and namespace.
type TranslatorSource interface {
	Translator(locale, namespace string) i18n.Translator
}

// Registry dispatches on formpack id.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
	source   TranslatorSource
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRegistry creates a Registry. A nil source makes builders see key-only
// translations.
func NewRegistry(source TranslatorSource, logger zerolog.Logger, builders ...Builder) *Registry {
	r := &Registry{
		builders: make(map[string]Builder),
		source:   source,
		logger:   logger,
		now:      time.Now,
	}
	for _, b := range builders {
		r.Register(b)
	}
	return r
}

// Register adds or replaces the builder for its formpack id.
func (r *Registry) Register(b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[b.FormpackID()] = b
}

// Lookup returns the builder for id.
func (r *Registry) Lookup(id string) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builders[strings.TrimSpace(id)]
	return b, ok
}

// IDs lists registered formpack ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.builders))
	for id := range r.builders {
		out = append(out, id)
	}
	return out
}

// Input assembles the builder input for a formpack.
func (r *Registry) Input(formpackID, locale string, data any) Input {
	m, _ := input.Record(data)
	var tr i18n.Translator = i18n.KeyTranslator{}
	if r.source != nil {
		tr = r.source.Translator(locale, i18n.FormpackNamespace(formpackID))
	}
	return Input{Locale: locale, Data: m, Translator: tr, Now: r.now()}
}

// Build projects data for formpackID. Unknown ids and builder panics yield a
// Generic model; Build itself never fails.
func (r *Registry) Build(formpackID, locale string, data any) (m Model) {
	in := r.Input(formpackID, locale, data)
	b, ok := r.Lookup(formpackID)
	if !ok {
		return Generic{ID: formpackID, Data: in.Data}
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("formpack", formpackID).
				Interface("panic", rec).
				Msg("document model builder panicked")
			m = Generic{ID: formpackID}
		}
	}()
	return b.Build(in)
}

// BuildPdf produces the PDF block tree for formpackID when its builder
// supports it.
func (r *Registry) BuildPdf(formpackID, locale string, data any, exportedAt time.Time) (doc pdfmodel.Document, ok bool) {
	b, found := r.Lookup(formpackID)
	if !found {
		return pdfmodel.Document{}, false
	}
	pb, isPdf := b.(PdfBuilder)
	if !isPdf {
		return pdfmodel.Document{}, false
	}
	in := r.Input(formpackID, locale, data)
	if !exportedAt.IsZero() {
		in.Now = exportedAt
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("formpack", formpackID).
				Interface("panic", rec).
				Msg("pdf builder panicked")
			doc = pdfmodel.Document{Sections: []pdfmodel.Section{}}
		}
	}()
	return pb.BuildPdf(in), true
}
