package jsonexport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	return Input{
		App:        App{ID: "paperwork", Version: "1.4.0"},
		Formpack:   Formpack{ID: "notfallpass", Version: "1.3.0"},
		RecordID:   "3f1c",
		RecordName: " Mein Pass ",
		UpdatedAt:  time.Date(2024, 5, 1, 8, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
		Locale:     "de",
		Data:       map[string]any{"person": map[string]any{"name": "Erika"}},
		Revisions: []RevisionInput{
			{ID: "s1", Label: "before", CreatedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Data: map[string]any{"person": map[string]any{}}},
		},
		ExportedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	in := sampleInput()

	env := Build(in)

	assert.Equal(t, "paperwork", env.App.ID)
	assert.Equal(t, "notfallpass", env.Formpack.ID)
	assert.Equal(t, "3f1c", env.Record.ID)
	assert.Equal(t, "Mein Pass", env.Record.Name)
	assert.Equal(t, "2024-05-01T06:30:00Z", env.Record.UpdatedAt)
	assert.Equal(t, "2024-05-02T09:00:00Z", env.ExportedAt)
	assert.Equal(t, "de", env.Locale)
	assert.Equal(t, env.Data, env.Record.Data)
	require.Len(t, env.Revisions, 1)
	assert.Equal(t, "before", env.Revisions[0].Label)

	env.Data["person"].(map[string]any)["name"] = "changed"
	assert.Equal(t, "Erika", in.Data["person"].(map[string]any)["name"], "input is copied")
	assert.Equal(t, "Erika", env.Record.Data["person"].(map[string]any)["name"])
}

func TestMarshal_OmitsOptionalFields(t *testing.T) {
	in := sampleInput()
	in.RecordName = ""
	in.Revisions = nil

	raw, err := Marshal(Build(in))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.NotContains(t, doc, "revisions")
	assert.NotContains(t, doc["record"], "name")
	assert.Contains(t, doc, "exportedAt")
}

func TestParse_RoundTripsBuild(t *testing.T) {
	raw, err := Marshal(Build(sampleInput()))
	require.NoError(t, err)

	env, err := Parse(raw)

	require.NoError(t, err)
	assert.Equal(t, "notfallpass", env.Formpack.ID)
	assert.Equal(t, "Erika", env.Data["person"].(map[string]any)["name"])
}

func TestParse_Rejects(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":     `{`,
		"no formpack":  `{"data": {}}`,
		"no data":      `{"formpack": {"id": "notfallpass"}}`,
		"array data":   `{"formpack": {"id": "notfallpass"}, "data": []}`,
		"blank formid": `{"formpack": {"id": "  "}, "data": {}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidEnvelope)
		})
	}
}

func TestParse_FallsBackToRecordData(t *testing.T) {
	env, err := Parse([]byte(`{"formpack": {"id": "doctor-letter"}, "record": {"id": "r1", "locale": "en", "data": {"a": "b"}}}`))

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "b"}, env.Data)
	assert.Equal(t, "en", env.Locale)
}

func TestBuildFilename(t *testing.T) {
	at := time.Date(2023, 10, 27, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		formpack   string
		recordName string
		recordID   string
		locale     string
		want       string
	}{
		{"sanitizes the record name", "test-formpack", "Hello World! 2024", "id-1", "de", "test-formpack_Hello-World-2024_2023-10-27_de.json"},
		{"falls back to the id", "notfallpass", "  !!  ", "3f1c-9a", "en", "notfallpass_3f1c-9a_2023-10-27_en.json"},
		{"falls back to record", "notfallpass", "", "", "en", "notfallpass_record_2023-10-27_en.json"},
		{"keeps underscores", "doctor-letter", "Brief_Mai", "x", "de-DE", "doctor-letter_Brief_Mai_2023-10-27_de-DE.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilename(tt.formpack, tt.recordName, tt.recordID, at, tt.locale))
		})
	}
}
