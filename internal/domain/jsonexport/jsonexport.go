// Package jsonexport builds and reads the JSON export envelope of a record.
package jsonexport

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidEnvelope is returned by Parse for files that are not exports.
var ErrInvalidEnvelope = errors.New("jsonexport: invalid export envelope")

type App struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

type Formpack struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

type Record struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	UpdatedAt string         `json:"updatedAt"`
	Locale    string         `json:"locale"`
	Data      map[string]any `json:"data"`
}

type Revision struct {
	ID        string         `json:"id"`
	Label     string         `json:"label,omitempty"`
	CreatedAt string         `json:"createdAt"`
	Data      map[string]any `json:"data"`
}

// Envelope is the downloaded export file.
type Envelope struct {
	App        App            `json:"app"`
	Formpack   Formpack       `json:"formpack"`
	Record     Record         `json:"record"`
	Locale     string         `json:"locale"`
	ExportedAt string         `json:"exportedAt"`
	Data       map[string]any `json:"data"`
	Revisions  []Revision     `json:"revisions,omitempty"`
}

// RevisionInput is one snapshot to include.
type RevisionInput struct {
	ID        string
	Label     string
	CreatedAt time.Time
	Data      map[string]any
}

// Input is everything Build needs.
type Input struct {
	App        App
	Formpack   Formpack
	RecordID   string
	RecordName string
	UpdatedAt  time.Time
	Locale     string
	Data       map[string]any
	Revisions  []RevisionInput
	ExportedAt time.Time
}

// Build assembles the envelope. Data is deep-copied; record.data and the
// top-level data carry the same content.
func Build(in Input) Envelope {
	env := Envelope{
		App:      in.App,
		Formpack: in.Formpack,
		Record: Record{
			ID:        in.RecordID,
			Name:      strings.TrimSpace(in.RecordName),
			UpdatedAt: isoTime(in.UpdatedAt),
			Locale:    in.Locale,
			Data:      copyData(in.Data),
		},
		Locale:     in.Locale,
		ExportedAt: isoTime(in.ExportedAt),
		Data:       copyData(in.Data),
	}
	for _, r := range in.Revisions {
		env.Revisions = append(env.Revisions, Revision{
			ID:        r.ID,
			Label:     strings.TrimSpace(r.Label),
			CreatedAt: isoTime(r.CreatedAt),
			Data:      copyData(r.Data),
		})
	}
	return env
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func copyData(m map[string]any) map[string]any {
	out := map[string]any{}
	raw, err := json.Marshal(m)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// Marshal renders the envelope as indented JSON.
func Marshal(env Envelope) ([]byte, error) {
	return json.MarshalIndent(env, "", "  ")
}

// Parse reads an export file. The formpack id and an object-valued data
// section are required; record.data falls back to the top-level data.
func Parse(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if strings.TrimSpace(env.Formpack.ID) == "" {
		return nil, fmt.Errorf("%w: formpack.id is missing", ErrInvalidEnvelope)
	}
	if env.Data == nil {
		env.Data = env.Record.Data
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: data must be an object", ErrInvalidEnvelope)
	}
	if env.Record.Data == nil {
		env.Record.Data = env.Data
	}
	if env.Locale == "" {
		env.Locale = env.Record.Locale
	}
	return &env, nil
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dashRuns    = regexp.MustCompile(`-{2,}`)
)

func sanitize(s string) string {
	out := unsafeChars.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(dashRuns.ReplaceAllString(out, "-"), "-")
}

// BuildFilename returns
// "<formpackId>_<recordNameOrId>_<YYYY-MM-DD>_<locale>.json".
func BuildFilename(formpackID, recordName, recordID string, at time.Time, locale string) string {
	name := sanitize(recordName)
	if name == "" {
		name = sanitize(recordID)
	}
	if name == "" {
		name = "record"
	}
	id := sanitize(formpackID)
	if id == "" {
		id = "formpack"
	}
	loc := sanitize(locale)
	if loc == "" {
		loc = "und"
	}
	return fmt.Sprintf("%s_%s_%s_%s.json", id, name, at.Format("2006-01-02"), loc)
}
