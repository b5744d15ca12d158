// Package exportdefaults fills empty DOCX template fields with per-formpack,
// per-language placeholders so an exported document is never blank.
package exportdefaults

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/paperwork/paperwork/internal/domain/decision"
	"github.com/paperwork/paperwork/internal/platform/docx"
	"github.com/paperwork/paperwork/internal/platform/i18n"
)

// Formpack ids with default tables.
const (
	NotfallpassID    = "notfallpass"
	DoctorLetterID   = "doctor-letter"
	OfflabelAntragID = "offlabel-antrag"
)

// CaseTextPath is the doctor-letter context path replaced when no decision
// question was answered.
const CaseTextPath = "decision.caseText"

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults is the table for one formpack and language.
type Defaults struct {
	// Fields maps dotted context paths to placeholder text.
	Fields map[string]string `yaml:"fields"`
	// CaseTextFallback is only set for the doctor letter.
	CaseTextFallback string `yaml:"caseTextFallback"`
}

type table map[string]map[string]Defaults

var tables = mustLoad(defaultsYAML)

func mustLoad(raw []byte) table {
	t, err := load(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func load(raw []byte) (table, error) {
	var t table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse export defaults: %w", err)
	}
	for id, langs := range t {
		for _, lang := range []string{i18n.German, i18n.English} {
			if _, ok := langs[lang]; !ok {
				return nil, fmt.Errorf("export defaults %s: missing language %q", id, lang)
			}
		}
	}
	return t, nil
}

// For returns the defaults of formpackID. German locales get the German
// table, every other locale the English one. Unknown formpacks yield an empty
// table.
func For(formpackID, locale string) Defaults {
	d := tables[formpackID][i18n.Resolve(locale)]
	out := Defaults{Fields: make(map[string]string, len(d.Fields)), CaseTextFallback: d.CaseTextFallback}
	for k, v := range d.Fields {
		out.Fields[k] = v
	}
	return out
}

// Notfallpass returns the emergency pass defaults.
func Notfallpass(locale string) Defaults { return For(NotfallpassID, locale) }

// DoctorLetter returns the doctor letter defaults.
func DoctorLetter(locale string) Defaults { return For(DoctorLetterID, locale) }

// OfflabelAntrag returns the off-label application defaults.
func OfflabelAntrag(locale string) Defaults { return For(OfflabelAntragID, locale) }

// ApplyDocxExportDefaults returns a copy of ctx in which every default field
// whose value is an empty or whitespace-only string carries its placeholder.
// Other values, including non-strings, stay as they are. For the doctor
// letter the case text is replaced by the fallback when raw holds no
// decision answer at all. Applying it twice gives the same result.
func ApplyDocxExportDefaults(ctx docx.Context, formpackID, locale string, raw map[string]any) docx.Context {
	d := For(formpackID, locale)
	b := docx.NewContextBuilderFrom(ctx)

	for path, placeholder := range d.Fields {
		v, ok := b.Get(path)
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			b.Set(path, placeholder)
		}
	}

	if formpackID == DoctorLetterID && d.CaseTextFallback != "" && !decision.HasAnyAnswer(raw["decision"]) {
		if _, ok := b.Get(CaseTextPath); ok {
			b.Set(CaseTextPath, d.CaseTextFallback)
		}
	}
	return b.Context()
}
