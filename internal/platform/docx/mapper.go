// Package docx maps document models onto DOCX template contexts.
//
// A formpack ships docx/mapping.json, which binds template variables to
// model paths, and one .docx file per template variant. The Mapper loads
// both through an AssetCache and produces a Context whose every leaf is a
// string; rendering the template itself happens elsewhere.
package docx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/input"
	"github.com/paperwork/paperwork/internal/platform/telemetry"
)

// Asset paths relative to a formpack.
const (
	MappingPath    = "docx/mapping.json"
	TranslationKey = "t"
)

// TemplatePath returns the asset path of a template variant.
func TemplatePath(templateID string) string {
	return "docx/" + templateID + ".docx"
}

// TemplateDataer is implemented by document models.
type TemplateDataer interface {
	TemplateData() map[string]any
}

// PathAwareTemplateDataer is implemented by models whose template data
// depends on which paths a mapping reads.
type PathAwareTemplateDataer interface {
	TemplateDataFor(paths []string) map[string]any
}

// MapOptions carries the per-export inputs of MapDocumentDataToTemplate.
type MapOptions struct {
	Locale   string
	Schema   map[string]any
	UISchema map[string]any
}

// Mapper turns document models into template contexts.
type Mapper struct {
	cache   *AssetCache
	bundles i18n.Bundles
	logger  zerolog.Logger
}

// NewMapper creates a Mapper. bundles may be nil, in which case enum labels
// stay untranslated and the "t" subtree is empty.
func NewMapper(cache *AssetCache, bundles i18n.Bundles, logger zerolog.Logger) *Mapper {
	return &Mapper{cache: cache, bundles: bundles, logger: logger}
}

// LoadMapping fetches and validates the mapping manifest of a formpack.
func (m *Mapper) LoadMapping(ctx context.Context, formpackID string) (*Mapping, error) {
	p, err := ResolveAssetPath(formpackID, MappingPath)
	if err != nil {
		return nil, err
	}
	raw, err := m.cache.Get(ctx, p)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Path: p, Err: err}
	}
	return ParseMapping(p, raw)
}

// LoadTemplate returns the DOCX bytes of a template variant.
func (m *Mapper) LoadTemplate(ctx context.Context, formpackID, templateID string) ([]byte, error) {
	if err := checkTemplate(formpackID, templateID); err != nil {
		return nil, err
	}
	p, err := ResolveAssetPath(formpackID, TemplatePath(templateID))
	if err != nil {
		return nil, err
	}
	raw, err := m.cache.Get(ctx, p)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Path: p, Err: err}
	}
	return raw, nil
}

// Preload warms the cache with the mapping and the given templates so later
// exports succeed offline.
func (m *Mapper) Preload(ctx context.Context, formpackID string, templateIDs ...string) error {
	ctx, span := telemetry.StartSpan(ctx, "docx.preload", attribute.String("formpack", formpackID))
	defer span.End()

	var errs []error
	if _, err := m.LoadMapping(ctx, formpackID); err != nil {
		errs = append(errs, err)
	}
	for _, id := range templateIDs {
		if _, err := m.LoadTemplate(ctx, formpackID, id); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	telemetry.RecordError(ctx, err)
	return err
}

func checkTemplate(formpackID, templateID string) error {
	if templateID == WalletTemplateID && formpackID != WalletFormpackID {
		return &StageError{Stage: StageTemplate, Path: TemplatePath(templateID), Err: ErrWalletTemplate}
	}
	return nil
}

// MapDocumentDataToTemplate builds the template context of one export.
// data is a document model or a plain tree. The wallet check runs before
// anything is loaded.
func (m *Mapper) MapDocumentDataToTemplate(ctx context.Context, formpackID, templateID string, data any, opts MapOptions) (Context, error) {
	ctx, span := telemetry.StartSpan(ctx, "docx.map",
		attribute.String("formpack", formpackID),
		attribute.String("template", templateID),
	)
	defer span.End()

	if err := checkTemplate(formpackID, templateID); err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	mapping, err := m.LoadMapping(ctx, formpackID)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	start := time.Now()
	bundle := m.bundle(opts.Locale, formpackID)
	out := Apply(mapping, templateData(data, mapping.Paths()), ApplyOptions{
		FormpackID: formpackID,
		Enums:      ParseEnumLabels(opts.Schema, opts.UISchema),
		Bundle:     bundle,
	})
	m.logger.Debug().
		Str("formpack", formpackID).
		Str("template", templateID).
		Int("fields", len(mapping.Fields)).
		Int("loops", len(mapping.Loops)).
		Dur("elapsed", time.Since(start)).
		Msg("docx context mapped")
	return out, nil
}

func (m *Mapper) bundle(locale, formpackID string) map[string]any {
	if m.bundles == nil {
		return nil
	}
	b, err := m.bundles.ResourceBundle(locale, i18n.FormpackNamespace(formpackID))
	if err != nil {
		m.logger.Debug().Err(err).Str("formpack", formpackID).Msg("no translations for docx export")
		return nil
	}
	return b
}

func templateData(data any, paths []string) map[string]any {
	switch d := data.(type) {
	case PathAwareTemplateDataer:
		return d.TemplateDataFor(paths)
	case TemplateDataer:
		return d.TemplateData()
	}
	m, _ := input.Record(data)
	return m
}

// ApplyOptions are the resolved inputs of Apply.
type ApplyOptions struct {
	FormpackID string
	Enums      EnumLabels
	// Bundle is the formpack's resource tree for the export locale.
	Bundle map[string]any
}

// Apply maps a template data tree through a validated mapping.
func Apply(mapping *Mapping, data map[string]any, opts ApplyOptions) Context {
	tr := i18n.NewTranslator(opts.Bundle)
	label := func(path, value string) string {
		key, ok := opts.Enums.Label(path, value)
		if !ok {
			return value
		}
		return tr.T(key, i18n.Default(key))
	}

	b := NewContextBuilder()
	for _, f := range mapping.Fields {
		v, _ := GetPathValue(data, f.Path)
		b.Set(f.Var, label(f.Path, ToString(v)))
	}
	for _, l := range mapping.Loops {
		v, _ := GetPathValue(data, l.Path)
		b.Set(l.Var, NormalizeLoop(v, func(field, value string) string {
			return label(l.Path+"."+field, value)
		}))
	}
	b.Context()[TranslationKey] = BuildTranslations(opts.Bundle, mapping.Prefix(), opts.FormpackID)
	return b.Context()
}

// BuildDocxExportFilename returns "<formpackId>-<templateId>-<YYYYMMDD>.docx".
func BuildDocxExportFilename(formpackID, templateID string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s.docx",
		sanitizeSegment(formpackID, "document"),
		sanitizeSegment(templateID, "export"),
		at.Format("20060102"))
}
