// Package notfallpass projects the emergency pass formpack.
package notfallpass

import (
	"strings"

	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/input"
)

// FormpackID of the emergency pass.
const FormpackID = "notfallpass"

// Diagnosis paragraph keys in output order.
const (
	KeyMeCfs     = "notfallpass.export.diagnoses.meCfs.paragraph"
	KeyPots      = "notfallpass.export.diagnoses.pots.paragraph"
	KeyLongCovid = "notfallpass.export.diagnoses.longCovid.paragraph"
)

type Person struct {
	Name      *string `json:"name"`
	BirthDate *string `json:"birthDate"`
}

type Contact struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Relation *string `json:"relation"`
}

type Medication struct {
	Name     *string `json:"name"`
	Dosage   *string `json:"dosage"`
	Schedule *string `json:"schedule"`
}

type Doctor struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type Diagnoses struct {
	MeCfs      bool     `json:"meCfs"`
	Pots       bool     `json:"pots"`
	LongCovid  bool     `json:"longCovid"`
	Paragraphs []string `json:"paragraphs"`
	Formatted  *string  `json:"formatted"`
}

// Model is the projected emergency pass.
type Model struct {
	Person      Person       `json:"person"`
	Contacts    []Contact    `json:"contacts"`
	Diagnoses   Diagnoses    `json:"diagnoses"`
	Symptoms    *string      `json:"symptoms"`
	Medications []Medication `json:"medications"`
	Allergies   *string      `json:"allergies"`
	Doctor      Doctor       `json:"doctor"`
}

func (m Model) FormpackID() string { return FormpackID }

func (m Model) TemplateData() map[string]any { return docmodel.Tree(m) }

// Builder registers the emergency pass with a docmodel.Registry.
type Builder struct{}

func (Builder) FormpackID() string { return FormpackID }

func (Builder) Build(in docmodel.Input) docmodel.Model { return Build(in) }

// Build projects raw form data.
func Build(in docmodel.Input) Model {
	data := in.Data
	person := input.Nested(data, "person")
	doctor := input.Nested(data, "doctor")

	flags := input.Nested(data, "diagnoses")
	paragraphs := DiagnosisParagraphs(flags, in.Translator)

	return Model{
		Person: Person{
			Name:      input.String(person, "name"),
			BirthDate: docmodel.NormalizeBirthDatePtr(input.String(person, "birthDate")),
		},
		Contacts: contacts(data),
		Diagnoses: Diagnoses{
			MeCfs:      input.Bool(flags, "meCfs"),
			Pots:       input.Bool(flags, "pots"),
			LongCovid:  input.Bool(flags, "longCovid"),
			Paragraphs: paragraphs,
			Formatted:  input.Ptr(strings.Join(paragraphs, "\n\n")),
		},
		Symptoms:    input.String(data, "symptoms"),
		Medications: medications(data),
		Allergies:   input.String(data, "allergies"),
		Doctor: Doctor{
			Name:  input.String(doctor, "name"),
			Phone: input.String(doctor, "phone"),
		},
	}
}

// DiagnosisParagraphs returns the diagnosis paragraphs in fixed order. POTS
// and Long COVID only accompany ME/CFS, never stand alone.
func DiagnosisParagraphs(flags map[string]any, tr i18n.Translator) []string {
	if tr == nil {
		tr = i18n.KeyTranslator{}
	}
	out := []string{}
	if !input.Bool(flags, "meCfs") {
		return out
	}
	out = append(out, tr.T(KeyMeCfs))
	if input.Bool(flags, "pots") {
		out = append(out, tr.T(KeyPots))
	}
	if input.Bool(flags, "longCovid") {
		out = append(out, tr.T(KeyLongCovid))
	}
	return out
}

func contacts(data map[string]any) []Contact {
	out := []Contact{}
	for _, r := range input.Records(data, "contacts") {
		c := Contact{
			Name:     input.String(r, "name"),
			Phone:    input.String(r, "phone"),
			Relation: input.String(r, "relation"),
		}
		if input.AllNil(c.Name, c.Phone, c.Relation) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func medications(data map[string]any) []Medication {
	out := []Medication{}
	for _, r := range input.Records(data, "medications") {
		m := Medication{
			Name:     input.String(r, "name"),
			Dosage:   input.String(r, "dosage"),
			Schedule: input.String(r, "schedule"),
		}
		if input.AllNil(m.Name, m.Dosage, m.Schedule) {
			continue
		}
		out = append(out, m)
	}
	return out
}
