package doctorletter

import (
	"strings"

	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/input"
	"github.com/paperwork/paperwork/internal/platform/pdfmodel"
)

// SectionIDs of the PDF export in order.
var SectionIDs = []string{"patient", "doctor", "case"}

func (Builder) BuildPdf(in docmodel.Input) pdfmodel.Document {
	return BuildPdfDocumentModel(in)
}

// BuildPdfDocumentModel projects the doctor letter onto a PDF block tree.
func BuildPdfDocumentModel(in docmodel.Input) pdfmodel.Document {
	m := Build(in)
	de := in.IsGerman()
	label := func(key, deText, enText string) string {
		def := enText
		if de {
			def = deText
		}
		return in.T("doctor-letter.export."+key, i18n.Default(def))
	}
	d := input.Deref

	patient := pdfmodel.NewSection("patient", label("sections.patient", "Patientin / Patient", "Patient")).
		KV(label("labels.name", "Name", "Name"), d(m.Patient.FullName)).
		KV(label("labels.birthDate", "Geburtsdatum", "Date of birth"), d(m.Patient.BirthDate)).
		KV(label("labels.address", "Anschrift", "Address"), address(m.Patient.StreetAndNumber, m.Patient.PostalCode, m.Patient.City)).
		Build()

	doctor := pdfmodel.NewSection("doctor", label("sections.doctor", "Praxis", "Practice")).
		KV(label("labels.practice", "Praxis", "Practice"), d(m.Doctor.Practice)).
		KV(label("labels.name", "Name", "Name"), d(input.JoinNonEmpty(" ", m.Doctor.Title, m.Doctor.Name))).
		KV(label("labels.address", "Anschrift", "Address"), address(m.Doctor.StreetAndNumber, m.Doctor.PostalCode, m.Doctor.City)).
		Build()

	caseSection := pdfmodel.NewSection("case", label("sections.case", "Anliegen", "Request"))
	for _, p := range strings.Split(d(m.Decision.CaseText), "\n\n") {
		caseSection.Paragraph(p)
	}

	return pdfmodel.Document{
		Title:    label("title", "Brief an die behandelnde Praxis", "Letter to the treating practice"),
		Meta:     pdfmodel.NewMeta(in.Now, in.Locale, m.TemplateData()),
		Sections: []pdfmodel.Section{patient, doctor, caseSection.Build()},
	}
}

func address(street, postal, city *string) string {
	return input.Deref(input.JoinNonEmpty(", ", street, input.JoinNonEmpty(" ", postal, city)))
}
