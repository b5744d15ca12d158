// Package offlabel assembles the off-label application formpack: an
// application to the health insurer, a cover letter to the treating practice
// with a liability declaration, and a physician statement template.
//
// Letters are built as block trees and flattened into newline-free paragraph
// lists. The resulting ExportBundle feeds both the DOCX and the PDF export.
package offlabel

import (
	"strings"

	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/platform/input"
)

const FormpackID = "offlabel-antrag"

type Patient struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Name            *string `json:"name"`
	BirthDate       *string `json:"birthDate"`
	InsuranceNumber *string `json:"insuranceNumber"`
	StreetAndNumber *string `json:"streetAndNumber"`
	PostalCode      *string `json:"postalCode"`
	City            *string `json:"city"`
}

type Doctor struct {
	Name            *string `json:"name"`
	Practice        *string `json:"practice"`
	StreetAndNumber *string `json:"streetAndNumber"`
	PostalCode      *string `json:"postalCode"`
	City            *string `json:"city"`
	Phone           *string `json:"phone"`
}

type Insurer struct {
	Name            *string `json:"name"`
	Department      *string `json:"department"`
	StreetAndNumber *string `json:"streetAndNumber"`
	PostalCode      *string `json:"postalCode"`
	City            *string `json:"city"`
}

// Request is the resolved medication request.
type Request struct {
	Drug               DrugKey `json:"drug"`
	DrugName           *string `json:"drugName"`
	ApprovedFor        *string `json:"approvedFor"`
	IndicationKey      *string `json:"indicationKey"`
	Diagnosis          *string `json:"diagnosis"`
	TreatmentGoal      *string `json:"treatmentGoal"`
	Dose               *string `json:"dose"`
	Duration           *string `json:"duration"`
	Monitoring         *string `json:"monitoring"`
	PriorTherapies     *string `json:"priorTherapies"`
	ApplySection2Abs1a bool    `json:"applySection2Abs1a"`
}

// EmergencyClauses reports whether the letters argue with § 2 Abs. 1a SGB V
// (points 7 and 9) instead of the evidence review clause (point 10). Both a
// custom medication and the explicit opt-in trigger it.
func (r Request) EmergencyClauses() bool {
	return r.Drug == OtherDrug || r.ApplySection2Abs1a
}

// ResolveRequest normalizes the request object.
func ResolveRequest(data map[string]any, german bool) Request {
	req := input.Nested(data, "request")
	r := Request{
		Drug:               NormalizeDrug(req["drug"]),
		PriorTherapies:     input.String(req, "priorTherapies"),
		ApplySection2Abs1a: input.Bool(req, "applySection2Abs1a") || input.Bool(req, "applySection2a"),
	}
	if r.Drug == OtherDrug {
		r.DrugName = input.String(req, "otherDrugName")
		r.Diagnosis = input.String(req, "otherIndication")
		r.TreatmentGoal = input.String(req, "otherTreatmentGoal")
		r.Dose = input.String(req, "otherDose")
		r.Duration = input.String(req, "otherDuration")
		r.Monitoring = input.String(req, "otherMonitoring")
		return r
	}
	drug, _ := LookupDrug(r.Drug)
	r.DrugName = input.Ptr(drug.Name.In(german))
	r.ApprovedFor = input.Ptr(drug.ApprovedFor.In(german))
	if ind, ok := drug.Indication(input.Text(req, "selectedIndicationKey")); ok {
		r.IndicationKey = input.Ptr(ind.Key)
		r.Diagnosis = input.Ptr(ind.Diagnosis.In(german))
		r.TreatmentGoal = input.Ptr(ind.TreatmentGoal.In(german))
		r.Dose = input.Ptr(ind.Dose.In(german))
		r.Duration = input.Ptr(ind.Duration.In(german))
		r.Monitoring = input.Ptr(ind.Monitoring.In(german))
	}
	return r
}

// Model is the projected application. The export bundle is merged into the
// template data at the top level.
type Model struct {
	Patient  Patient      `json:"patient"`
	Doctor   Doctor       `json:"doctor"`
	Insurer  Insurer      `json:"insurer"`
	Request  Request      `json:"request"`
	Severity Severity     `json:"severity"`
	Bundle   ExportBundle `json:"-"`

	documents Documents
}

func (m Model) FormpackID() string { return FormpackID }

func (m Model) TemplateData() map[string]any {
	return m.templateData(m.Bundle)
}

// TemplateDataFor adapts the template data to a DOCX mapping. When none of
// the mapped paths addresses the liability section of part 2, the liability
// declaration is appended inline to arzt.paragraphs.
func (m Model) TemplateDataFor(paths []string) map[string]any {
	for _, p := range paths {
		if strings.HasPrefix(p, "arzt.liability") {
			return m.TemplateData()
		}
	}
	b := m.Bundle
	b.Arzt.Paragraphs = InlineLiability(b.Arzt.Paragraphs, b.Arzt)
	return m.templateData(b)
}

func (m Model) templateData(b ExportBundle) map[string]any {
	td := docmodel.Tree(m)
	for k, v := range docmodel.Tree(b) {
		td[k] = v
	}
	return td
}

// Documents returns the rendered block trees of the three letters.
func (m Model) Documents() Documents { return m.documents }

type Builder struct{}

func (Builder) FormpackID() string { return FormpackID }

func (Builder) Build(in docmodel.Input) docmodel.Model { return Build(in) }

// Build projects raw form data and assembles the letters.
func Build(in docmodel.Input) Model {
	german := in.IsGerman()
	patient := input.Nested(in.Data, "patient")
	doctor := input.Nested(in.Data, "doctor")
	insurer := input.Nested(in.Data, "insurer")

	m := Model{
		Patient: Patient{
			FirstName:       input.String(patient, "firstName"),
			LastName:        input.String(patient, "lastName"),
			BirthDate:       docmodel.NormalizeBirthDatePtr(input.String(patient, "birthDate")),
			InsuranceNumber: input.String(patient, "insuranceNumber"),
			StreetAndNumber: input.String(patient, "streetAndNumber"),
			PostalCode:      input.String(patient, "postalCode"),
			City:            input.String(patient, "city"),
		},
		Doctor: Doctor{
			Name:            input.String(doctor, "name"),
			Practice:        input.String(doctor, "practice"),
			StreetAndNumber: input.String(doctor, "streetAndNumber"),
			PostalCode:      input.String(doctor, "postalCode"),
			City:            input.String(doctor, "city"),
			Phone:           input.String(doctor, "phone"),
		},
		Insurer: Insurer{
			Name:            input.String(insurer, "name"),
			Department:      input.String(insurer, "department"),
			StreetAndNumber: input.String(insurer, "streetAndNumber"),
			PostalCode:      input.String(insurer, "postalCode"),
			City:            input.String(insurer, "city"),
		},
		Request:  ResolveRequest(in.Data, german),
		Severity: ParseSeverity(input.Nested(in.Data, "severity"), german, in.Translator),
	}
	m.Patient.Name = input.JoinNonEmpty(" ", m.Patient.FirstName, m.Patient.LastName)

	a := newAssembler(in, m)
	m.Bundle, m.documents = a.assemble()
	return m
}
