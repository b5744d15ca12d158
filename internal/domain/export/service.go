// Package export turns stored records into export artefacts: the JSON
// envelope, the DOCX template context and the PDF block tree.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/domain/exportdefaults"
	"github.com/paperwork/paperwork/internal/domain/jsonexport"
	"github.com/paperwork/paperwork/internal/formpacks"
	"github.com/paperwork/paperwork/internal/platform/docx"
	"github.com/paperwork/paperwork/internal/platform/pdfmodel"
	"github.com/paperwork/paperwork/internal/platform/store"
	"github.com/paperwork/paperwork/internal/platform/telemetry"
)

// Export formats, also used as metric labels.
const (
	FormatJSON = "json"
	FormatDocx = "docx"
	FormatPdf  = "pdf"
)

// DefaultTemplate is the DOCX variant used when none is requested.
const DefaultTemplate = "a4"

var (
	// ErrNoPdfLayout is returned for formpacks without a PDF builder.
	ErrNoPdfLayout = errors.New("export: formpack has no PDF layout")
	// ErrUnknownTemplate is returned for template ids the manifest does not list.
	ErrUnknownTemplate = errors.New("export: formpack does not ship this template")
)

// Options tune a single export.
type Options struct {
	// Locale overrides the record's locale.
	Locale string
	// TemplateID selects the DOCX variant. Empty means DefaultTemplate.
	TemplateID string
	// At is the export time. Zero means now.
	At time.Time
}

// Result is one export artefact.
type Result struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DocxResult is the mapped template context together with the template it
// belongs to.
type DocxResult struct {
	Result
	Context  docx.Context
	Template []byte
}

type Service struct {
	records       store.Store
	registry      *docmodel.Registry
	mapper        *docx.Mapper
	assets        fs.FS
	app           jsonexport.App
	defaultLocale string
	metrics       *telemetry.Provider
	logger        zerolog.Logger
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithApp(id, version string) Option {
	return func(s *Service) { s.app = jsonexport.App{ID: id, Version: version} }
}

func WithDefaultLocale(locale string) Option {
	return func(s *Service) { s.defaultLocale = locale }
}

func WithMetrics(p *telemetry.Provider) Option {
	return func(s *Service) { s.metrics = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService wires the export pipeline. assets is the formpack asset tree
// used for manifests and schemas.
func NewService(records store.Store, registry *docmodel.Registry, mapper *docx.Mapper, assets fs.FS, opts ...Option) *Service {
	s := &Service{
		records:       records,
		registry:      registry,
		mapper:        mapper,
		assets:        assets,
		app:           jsonexport.App{ID: "paperwork", Version: "dev"},
		defaultLocale: "de",
		logger:        zerolog.Nop(),
		now:           time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// exportRun carries the per-call state shared by the three formats.
type exportRun struct {
	ctx    context.Context
	record *store.Record
	locale string
	at     time.Time
}

func (s *Service) begin(ctx context.Context, format, recordID string, opts Options) (*exportRun, func(error), error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "export."+format, attribute.String("record_id", recordID))

	formpackID := ""
	finish := func(err error) {
		s.metrics.ObserveExport(formpackID, format, time.Since(start), err)
		telemetry.RecordError(ctx, err)
		span.End()
		evt := s.logger.Info()
		if err != nil {
			evt = s.logger.Warn().Err(err)
		}
		evt.Str("format", format).
			Str("record_id", recordID).
			Str("formpack", formpackID).
			Dur("elapsed", time.Since(start)).
			Msg("export")
	}

	rec, err := s.records.GetRecord(ctx, recordID)
	if err != nil {
		finish(err)
		return nil, nil, err
	}
	formpackID = rec.FormpackID
	telemetry.AddAttributes(ctx, attribute.String("formpack", formpackID))

	run := &exportRun{ctx: ctx, record: rec, locale: s.locale(rec, opts), at: opts.At}
	if run.at.IsZero() {
		run.at = s.now()
	}
	return run, finish, nil
}

func (s *Service) locale(rec *store.Record, opts Options) string {
	switch {
	case opts.Locale != "":
		return opts.Locale
	case rec.Locale != "":
		return rec.Locale
	}
	return s.defaultLocale
}

// ExportJSON builds the JSON export envelope of a record with its snapshots
// as revisions.
func (s *Service) ExportJSON(ctx context.Context, recordID string, opts Options) (res *Result, err error) {
	run, finish, err := s.begin(ctx, FormatJSON, recordID, opts)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	snaps, err := s.records.ListSnapshots(run.ctx, run.record.ID)
	if err != nil {
		return nil, err
	}
	revisions := make([]jsonexport.RevisionInput, 0, len(snaps))
	for _, snap := range snaps {
		revisions = append(revisions, jsonexport.RevisionInput{
			ID:        snap.ID,
			Label:     snap.Label,
			CreatedAt: snap.CreatedAt,
			Data:      snap.Data,
		})
	}

	rec := run.record
	env := jsonexport.Build(jsonexport.Input{
		App:        s.app,
		Formpack:   jsonexport.Formpack{ID: rec.FormpackID, Version: s.formpackVersion(rec.FormpackID)},
		RecordID:   rec.ID,
		RecordName: rec.Title,
		UpdatedAt:  rec.UpdatedAt,
		Locale:     run.locale,
		Data:       rec.Data,
		Revisions:  revisions,
		ExportedAt: run.at,
	})
	body, err := jsonexport.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return &Result{
		Filename:    jsonexport.BuildFilename(rec.FormpackID, rec.Title, rec.ID, run.at, run.locale),
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// ExportDocx projects the record, maps it onto the formpack's DOCX mapping,
// fills export placeholders and loads the template. Body is the context as
// JSON; rendering it into the template is left to the caller.
func (s *Service) ExportDocx(ctx context.Context, recordID string, opts Options) (res *DocxResult, err error) {
	run, finish, err := s.begin(ctx, FormatDocx, recordID, opts)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	rec := run.record
	templateID := opts.TemplateID
	if templateID == "" {
		templateID = DefaultTemplate
	}
	schema, uiSchema, err := formpacks.Schemas(s.assets, rec.FormpackID)
	if err != nil {
		s.logger.Debug().Err(err).Str("formpack", rec.FormpackID).Msg("schemas unavailable, enum labels stay raw")
	}

	model := s.registry.Build(rec.FormpackID, run.locale, rec.Data)
	mapped, err := s.mapper.MapDocumentDataToTemplate(run.ctx, rec.FormpackID, templateID, model, docx.MapOptions{
		Locale:   run.locale,
		Schema:   schema,
		UISchema: uiSchema,
	})
	if err != nil {
		return nil, err
	}
	mapped = exportdefaults.ApplyDocxExportDefaults(mapped, rec.FormpackID, run.locale, rec.Data)

	if m, merr := formpacks.LoadManifest(s.assets, rec.FormpackID); merr == nil && !m.HasTemplate(templateID) {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownTemplate, rec.FormpackID, templateID)
	}
	tmpl, err := s.mapper.LoadTemplate(run.ctx, rec.FormpackID, templateID)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(mapped, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal docx context: %w", err)
	}
	return &DocxResult{
		Result: Result{
			Filename:    docx.BuildDocxExportFilename(rec.FormpackID, templateID, run.at),
			ContentType: "application/json",
			Body:        body,
		},
		Context:  mapped,
		Template: tmpl,
	}, nil
}

// ExportPdf builds the PDF block tree of a record. Body is the document as
// JSON.
func (s *Service) ExportPdf(ctx context.Context, recordID string, opts Options) (res *Result, err error) {
	run, finish, err := s.begin(ctx, FormatPdf, recordID, opts)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	rec := run.record
	doc, ok := s.registry.BuildPdf(rec.FormpackID, run.locale, rec.Data, run.at)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPdfLayout, rec.FormpackID)
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal pdf document: %w", err)
	}
	return &Result{
		Filename:    pdfmodel.BuildFilename(rec.FormpackID, run.at),
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// ImportJSON stores the record of a JSON export, keeping its id, and adds
// revisions not already present as snapshots. Importing the same file twice
// changes nothing but the record's update time.
func (s *Service) ImportJSON(ctx context.Context, raw []byte) (*store.Record, error) {
	env, err := jsonexport.Parse(raw)
	if err != nil {
		return nil, err
	}
	if _, err := formpacks.LoadManifest(s.assets, env.Formpack.ID); err != nil {
		return nil, err
	}

	rec := &store.Record{
		ID:         env.Record.ID,
		FormpackID: env.Formpack.ID,
		Locale:     env.Locale,
		Title:      env.Record.Name,
		Data:       env.Data,
	}
	if err := s.records.PutRecord(ctx, rec); err != nil {
		return nil, err
	}

	existing, err := s.records.ListSnapshots(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, snap := range existing {
		seen[snap.ID] = true
	}
	for _, rev := range env.Revisions {
		if rev.ID != "" && seen[rev.ID] {
			continue
		}
		created, _ := time.Parse(time.RFC3339, rev.CreatedAt)
		snap := &store.Snapshot{ID: rev.ID, RecordID: rec.ID, Label: rev.Label, Data: rev.Data, CreatedAt: created}
		if err := s.records.PutSnapshot(ctx, snap); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("record_id", rec.ID).
		Str("formpack", rec.FormpackID).
		Int("revisions", len(env.Revisions)).
		Msg("record imported")
	return rec, nil
}

func (s *Service) formpackVersion(id string) string {
	m, err := formpacks.LoadManifest(s.assets, id)
	if err != nil {
		return ""
	}
	return m.Version
}
