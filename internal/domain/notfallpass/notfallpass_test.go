package notfallpass

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/formpacks"
	"github.com/paperwork/paperwork/internal/platform/i18n"
)

func catalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	c := i18n.NewCatalog()
	require.NoError(t, c.LoadFS(formpacks.FS()))
	return c
}

func inputFor(t *testing.T, locale string, data map[string]any) docmodel.Input {
	return docmodel.Input{
		Locale:     locale,
		Data:       data,
		Translator: catalog(t).Translator(locale, i18n.FormpackNamespace(FormpackID)),
		Now:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDiagnosisParagraphs_Ordering(t *testing.T) {
	var keys i18n.KeyTranslator
	tests := []struct {
		name  string
		flags map[string]any
		want  []string
	}{
		{"me/cfs and pots", map[string]any{"meCfs": true, "pots": true}, []string{KeyMeCfs, KeyPots}},
		{"pots alone", map[string]any{"meCfs": false, "pots": true}, []string{}},
		{"me/cfs and long covid", map[string]any{"meCfs": true, "longCovid": true}, []string{KeyMeCfs, KeyLongCovid}},
		{"all", map[string]any{"longCovid": true, "pots": true, "meCfs": true}, []string{KeyMeCfs, KeyPots, KeyLongCovid}},
		{"long covid alone", map[string]any{"longCovid": true}, []string{}},
		{"string flags are not true", map[string]any{"meCfs": "true"}, []string{}},
		{"nil", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiagnosisParagraphs(tt.flags, keys))
		})
	}
}

func TestBuild_FullRecord(t *testing.T) {
	in := inputFor(t, "de", map[string]any{
		"person": map[string]any{"name": " Erika Mustermann ", "birthDate": "1985-07-03"},
		"contacts": []any{
			map[string]any{"name": "Max", "phone": "0171 1234567", "relation": "partner"},
			map[string]any{"name": " ", "phone": "", "relation": nil},
		},
		"diagnoses":   map[string]any{"meCfs": true, "pots": true},
		"symptoms":    "Fatigue, PEM",
		"medications": []any{map[string]any{"name": "Ivabradin", "dosage": "2,5 mg", "schedule": "morgens"}, "bogus"},
		"allergies":   "   ",
		"doctor":      map[string]any{"name": "Dr. Weber", "phone": 12345.0},
	})

	m := Build(in)

	assert.Equal(t, "Erika Mustermann", *m.Person.Name)
	assert.Equal(t, "03-07-1985", *m.Person.BirthDate)
	require.Len(t, m.Contacts, 1)
	assert.Equal(t, "Max", *m.Contacts[0].Name)
	require.Len(t, m.Diagnoses.Paragraphs, 2)
	assert.Contains(t, m.Diagnoses.Paragraphs[0], "ME/CFS")
	assert.Contains(t, m.Diagnoses.Paragraphs[1], "POTS")
	assert.Contains(t, *m.Diagnoses.Formatted, "\n\n")
	require.Len(t, m.Medications, 1)
	assert.Nil(t, m.Allergies)
	assert.Nil(t, m.Doctor.Phone, "numbers are not strings")
}

func TestBuild_MalformedInputNeverFails(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{},
		{"person": "Erika", "contacts": "none", "diagnoses": []any{true}, "medications": map[string]any{}},
		{"person": map[string]any{"name": 1.0, "birthDate": false}},
	}
	for _, data := range inputs {
		assert.NotPanics(t, func() {
			m := Build(docmodel.Input{Locale: "en", Data: data})
			assert.Nil(t, m.Person.Name)
			assert.NotNil(t, m.Contacts)
			assert.NotNil(t, m.Medications)
			assert.NotNil(t, m.Diagnoses.Paragraphs)
			assert.Nil(t, m.Diagnoses.Formatted)
		})
	}
}

func TestTemplateData_NullLeaves(t *testing.T) {
	td := Build(docmodel.Input{Data: map[string]any{}}).TemplateData()

	person := td["person"].(map[string]any)
	assert.Contains(t, person, "name")
	assert.Nil(t, person["name"])
	assert.Equal(t, []any{}, td["contacts"])
}

func TestBuildPdfDocumentModel_Sections(t *testing.T) {
	in := inputFor(t, "en", map[string]any{
		"person":    map[string]any{"name": "Jane Doe"},
		"contacts":  []any{map[string]any{"name": "John", "phone": "555", "relation": "friend"}},
		"diagnoses": map[string]any{"meCfs": true},
	})

	doc := BuildPdfDocumentModel(in)

	assert.Equal(t, "Emergency pass", doc.Title)
	assert.Equal(t, SectionIDs, doc.SectionIDs())
	require.NotNil(t, doc.Meta)
	assert.Equal(t, "2024-05-01T12:00:00Z", doc.Meta.CreatedAtISO)

	contacts, _ := doc.Section("contacts")
	require.Len(t, contacts.Blocks, 1)
	assert.Equal(t, []string{"John (Friend): 555"}, contacts.Blocks[0].Items)

	symptoms, _ := doc.Section("symptoms")
	assert.Empty(t, symptoms.Blocks)
	assert.NotNil(t, symptoms.Blocks)

	person, _ := doc.Section("person")
	require.Len(t, person.Blocks, 1)
	assert.Equal(t, [][2]string{{"Name", "Jane Doe"}}, person.Blocks[0].Rows)
}
