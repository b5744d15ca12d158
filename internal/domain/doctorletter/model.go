// Package doctorletter projects the doctor-letter formpack: patient and
// practice details plus the case paragraph resolved from the questionnaire.
package doctorletter

import (
	"github.com/paperwork/paperwork/internal/domain/decision"
	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/input"
)

const FormpackID = "doctor-letter"

type Patient struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	FullName        *string `json:"fullName"`
	BirthDate       *string `json:"birthDate"`
	StreetAndNumber *string `json:"streetAndNumber"`
	PostalCode      *string `json:"postalCode"`
	City            *string `json:"city"`
}

type Doctor struct {
	Practice        *string `json:"practice"`
	Title           *string `json:"title"`
	Gender          *string `json:"gender"`
	Name            *string `json:"name"`
	Salutation      *string `json:"salutation"`
	StreetAndNumber *string `json:"streetAndNumber"`
	PostalCode      *string `json:"postalCode"`
	City            *string `json:"city"`
}

type Decision struct {
	CaseID   int     `json:"caseId"`
	CaseKey  string  `json:"caseKey"`
	CaseText *string `json:"caseText"`
}

type Model struct {
	Patient  Patient  `json:"patient"`
	Doctor   Doctor   `json:"doctor"`
	Decision Decision `json:"decision"`
}

func (m Model) FormpackID() string { return FormpackID }

func (m Model) TemplateData() map[string]any { return docmodel.Tree(m) }

type Builder struct{}

func (Builder) FormpackID() string { return FormpackID }

func (Builder) Build(in docmodel.Input) docmodel.Model { return Build(in) }

// Build projects raw form data.
func Build(in docmodel.Input) Model {
	patient := input.Nested(in.Data, "patient")
	doctor := input.Nested(in.Data, "doctor")

	p := Patient{
		FirstName:       input.String(patient, "firstName"),
		LastName:        input.String(patient, "lastName"),
		BirthDate:       docmodel.NormalizeBirthDatePtr(input.String(patient, "birthDate")),
		StreetAndNumber: input.String(patient, "streetAndNumber"),
		PostalCode:      input.String(patient, "postalCode"),
		City:            input.String(patient, "city"),
	}
	p.FullName = input.JoinNonEmpty(" ", p.FirstName, p.LastName)

	d := Doctor{
		Practice:        input.String(doctor, "practice"),
		Title:           input.String(doctor, "title"),
		Gender:          input.String(doctor, "gender"),
		Name:            input.String(doctor, "name"),
		StreetAndNumber: input.String(doctor, "streetAndNumber"),
		PostalCode:      input.String(doctor, "postalCode"),
		City:            input.String(doctor, "city"),
	}
	d.Salutation = input.Ptr(salutation(d, in.IsGerman()))

	return Model{Patient: p, Doctor: d, Decision: ResolveDecision(in)}
}

// ResolveDecision evaluates the questionnaire and translates the case
// paragraph. A missing translation shows the case key itself.
func ResolveDecision(in docmodel.Input) Decision {
	raw, _ := input.Raw(in.Data, "decision")
	answers := decision.AnswersFrom(raw)
	res := decision.Resolve(answers)
	text := in.T(res.CaseKey, i18n.Default(res.CaseKey), i18n.Vars(answers))
	return Decision{CaseID: res.CaseID, CaseKey: res.CaseKey, CaseText: input.Ptr(text)}
}

func salutation(d Doctor, german bool) string {
	name := input.JoinNonEmpty(" ", d.Title, d.Name)
	if german {
		if name == nil {
			return "Sehr geehrte Damen und Herren,"
		}
		switch input.Deref(d.Gender) {
		case "female":
			return "Sehr geehrte Frau " + *name + ","
		case "male":
			return "Sehr geehrter Herr " + *name + ","
		default:
			return "Guten Tag " + *name + ","
		}
	}
	if name == nil {
		return "Dear Sir or Madam,"
	}
	switch input.Deref(d.Gender) {
	case "female":
		return "Dear Ms " + *name + ","
	case "male":
		return "Dear Mr " + *name + ","
	default:
		return "Dear " + *name + ","
	}
}
