package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/domain/doctorletter"
	"github.com/paperwork/paperwork/internal/domain/jsonexport"
	"github.com/paperwork/paperwork/internal/domain/notfallpass"
	"github.com/paperwork/paperwork/internal/domain/offlabel"
	"github.com/paperwork/paperwork/internal/formpacks"
	"github.com/paperwork/paperwork/internal/platform/docx"
	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/pdfmodel"
	"github.com/paperwork/paperwork/internal/platform/store"
	"github.com/paperwork/paperwork/internal/platform/telemetry"
)

var exportTime = time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC)

type pipeline struct {
	svc     *Service
	records *store.Memory
	reg     *prometheus.Registry
}

func newPipeline(t *testing.T) pipeline {
	t.Helper()
	catalog := i18n.NewCatalog()
	require.NoError(t, catalog.LoadFS(formpacks.FS()))

	registry := docmodel.NewRegistry(catalog, zerolog.Nop(),
		notfallpass.Builder{}, doctorletter.Builder{}, offlabel.Builder{})
	mapper := docx.NewMapper(docx.NewAssetCache(docx.FSFetcher{FS: formpacks.FS()}), catalog, zerolog.Nop())

	reg := prometheus.NewRegistry()
	records := store.NewMemory()
	svc := NewService(records, registry, mapper, formpacks.FS(),
		WithApp("paperwork", "1.2.3"),
		WithMetrics(telemetry.NewProvider(telemetry.Config{}, reg)),
	)
	svc.now = func() time.Time { return exportTime }
	return pipeline{svc: svc, records: records, reg: reg}
}

func (p pipeline) put(t *testing.T, r *store.Record) *store.Record {
	t.Helper()
	require.NoError(t, p.records.PutRecord(context.Background(), r))
	return r
}

func TestExportJSON(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	rec := p.put(t, &store.Record{FormpackID: "notfallpass", Locale: "de", Title: "Hello World", Data: map[string]any{
		"person": map[string]any{"name": "Erika Muster"},
	}})
	require.NoError(t, p.records.PutSnapshot(ctx, &store.Snapshot{RecordID: rec.ID, Label: "v1", Data: map[string]any{"symptoms": "x"}}))

	res, err := p.svc.ExportJSON(ctx, rec.ID, Options{})
	require.NoError(t, err)
	assert.Equal(t, "notfallpass_Hello-World_2024-05-02_de.json", res.Filename)

	env, err := jsonexport.Parse(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "paperwork", env.App.ID)
	assert.Equal(t, "1.2.3", env.App.Version)
	assert.Equal(t, "notfallpass", env.Formpack.ID)
	assert.Equal(t, "1.3.0", env.Formpack.Version)
	assert.Equal(t, rec.ID, env.Record.ID)
	assert.Equal(t, "2024-05-02T14:30:00Z", env.ExportedAt)
	assert.Equal(t, map[string]any{"name": "Erika Muster"}, env.Data["person"])
	require.Len(t, env.Revisions, 1)
	assert.Equal(t, "v1", env.Revisions[0].Label)
}

func TestExportJSON_LocaleOverride(t *testing.T) {
	p := newPipeline(t)
	rec := p.put(t, &store.Record{FormpackID: "doctor-letter", Locale: "de"})

	res, err := p.svc.ExportJSON(context.Background(), rec.ID, Options{Locale: "en", At: exportTime.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, "doctor-letter_"+rec.ID+"_2024-05-03_en.json", res.Filename)
}

func TestExportDocx_Notfallpass(t *testing.T) {
	p := newPipeline(t)
	rec := p.put(t, &store.Record{FormpackID: "notfallpass", Locale: "de", Data: map[string]any{
		"person":    map[string]any{"name": "Erika Muster", "birthDate": "1980-04-01"},
		"diagnoses": map[string]any{"meCfs": true},
		"contacts":  []any{map[string]any{"name": "Max", "phone": "0123"}},
	}})

	res, err := p.svc.ExportDocx(context.Background(), rec.ID, Options{TemplateID: "wallet"})
	require.NoError(t, err)
	assert.Equal(t, "notfallpass-wallet-20240502.docx", res.Filename)
	assert.NotEmpty(t, res.Template)

	person := res.Context["person"].(map[string]any)
	assert.Equal(t, "Erika Muster", person["name"])
	assert.Equal(t, "01-04-1980", person["birthDate"])
	assert.Equal(t, "Keine bekannten Allergien", res.Context["allergies"], "empty field gets its placeholder")
	assert.Contains(t, res.Context, docx.TranslationKey)

	contacts := res.Context["contacts"].([]any)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Max", contacts[0].(map[string]any)["name"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(res.Body, &decoded))
	assert.Equal(t, "Erika Muster", decoded["person"].(map[string]any)["name"])
}

func TestExportDocx_DoctorLetterCaseTextFallback(t *testing.T) {
	p := newPipeline(t)
	rec := p.put(t, &store.Record{FormpackID: "doctor-letter", Locale: "en", Data: map[string]any{
		"patient": map[string]any{"firstName": "Ada", "lastName": "Lovelace"},
	}})

	res, err := p.svc.ExportDocx(context.Background(), rec.ID, Options{})
	require.NoError(t, err)
	assert.Equal(t, "doctor-letter-a4-20240502.docx", res.Filename)

	dec := res.Context["decision"].(map[string]any)
	assert.Equal(t, "No information about the course of illness was provided.", dec["caseText"])
	patient := res.Context["patient"].(map[string]any)
	assert.Equal(t, "Ada Lovelace", patient["fullName"])
	assert.Equal(t, "not specified", patient["birthDate"])
}

func TestExportDocx_WalletOnlyForNotfallpass(t *testing.T) {
	p := newPipeline(t)
	rec := p.put(t, &store.Record{FormpackID: "doctor-letter"})

	_, err := p.svc.ExportDocx(context.Background(), rec.ID, Options{TemplateID: "wallet"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, docx.ErrWalletTemplate))
	assert.Equal(t, docx.StageTemplate, docx.StageOf(err))
	assert.Equal(t, "Wallet template is only available for notfallpass", err.Error())

	n, err := testutil.GatherAndCount(p.reg, "paperwork_exports_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "failed export is counted")
}

func TestExportPdf_DoctorLetter(t *testing.T) {
	p := newPipeline(t)
	rec := p.put(t, &store.Record{FormpackID: "doctor-letter", Locale: "de", Data: map[string]any{
		"patient": map[string]any{"firstName": "Ada"},
		"decision": map[string]any{
			"q1": "yes", "q2": "yes", "q3": "yes", "q4": "EBV",
		},
	}})

	res, err := p.svc.ExportPdf(context.Background(), rec.ID, Options{})
	require.NoError(t, err)
	assert.Equal(t, "doctor-letter-20240502.pdf", res.Filename)

	var doc pdfmodel.Document
	require.NoError(t, json.Unmarshal(res.Body, &doc))
	assert.Equal(t, []string{"patient", "doctor", "case"}, doc.SectionIDs())
	require.NotNil(t, doc.Meta)
	assert.Equal(t, "de", doc.Meta.Locale)
}

func TestExportPdf_UnknownFormpack(t *testing.T) {
	p := newPipeline(t)
	rec := p.put(t, &store.Record{FormpackID: "custom-form"})

	_, err := p.svc.ExportPdf(context.Background(), rec.ID, Options{})
	assert.True(t, errors.Is(err, ErrNoPdfLayout), "got %v", err)
}

func TestExport_MissingRecord(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	_, err := p.svc.ExportJSON(ctx, "nope", Options{})
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = p.svc.ExportDocx(ctx, "nope", Options{})
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = p.svc.ExportPdf(ctx, "nope", Options{})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestImportJSON_RoundTrip(t *testing.T) {
	src := newPipeline(t)
	ctx := context.Background()
	rec := src.put(t, &store.Record{FormpackID: "offlabel-antrag", Locale: "de", Title: "Antrag", Data: map[string]any{
		"request": map[string]any{"drug": "ivabradine"},
	}})
	require.NoError(t, src.records.PutSnapshot(ctx, &store.Snapshot{RecordID: rec.ID, Label: "draft", Data: map[string]any{}}))
	exported, err := src.svc.ExportJSON(ctx, rec.ID, Options{})
	require.NoError(t, err)

	dst := newPipeline(t)
	imported, err := dst.svc.ImportJSON(ctx, exported.Body)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, imported.ID)
	assert.Equal(t, "Antrag", imported.Title)

	got, err := dst.records.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Data, got.Data)

	_, err = dst.svc.ImportJSON(ctx, exported.Body)
	require.NoError(t, err)
	snaps, err := dst.records.ListSnapshots(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, snaps, 1, "re-import must not duplicate revisions")
	assert.Equal(t, "draft", snaps[0].Label)
}

func TestImportJSON_Rejects(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	_, err := p.svc.ImportJSON(ctx, []byte(`{"formpack":{"id":"unknown"},"data":{}}`))
	assert.True(t, errors.Is(err, formpacks.ErrUnknownFormpack), "got %v", err)

	_, err = p.svc.ImportJSON(ctx, []byte(`not json`))
	assert.True(t, errors.Is(err, jsonexport.ErrInvalidEnvelope), "got %v", err)
}
