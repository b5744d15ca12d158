package notfallpass

import (
	"strings"

	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/input"
	"github.com/paperwork/paperwork/internal/platform/pdfmodel"
)

// Section ids of the PDF export in order.
var SectionIDs = []string{"person", "contacts", "diagnoses", "symptoms", "medications", "allergies", "doctor"}

func (Builder) BuildPdf(in docmodel.Input) pdfmodel.Document {
	return BuildPdfDocumentModel(in)
}

// BuildPdfDocumentModel projects the emergency pass onto a PDF block tree.
func BuildPdfDocumentModel(in docmodel.Input) pdfmodel.Document {
	m := Build(in)
	label := func(key, de, en string) string {
		def := en
		if in.IsGerman() {
			def = de
		}
		return in.T("notfallpass.export."+key, i18n.Default(def))
	}
	d := input.Deref

	person := pdfmodel.NewSection("person", label("sections.person", "Persönliche Angaben", "Personal details")).
		KV(label("labels.name", "Name", "Name"), d(m.Person.Name)).
		KV(label("labels.birthDate", "Geburtsdatum", "Date of birth"), d(m.Person.BirthDate)).
		Build()

	contactLines := make([]string, 0, len(m.Contacts))
	for _, c := range m.Contacts {
		line := d(c.Name)
		if c.Relation != nil {
			line = strings.TrimSpace(line + " (" + relationLabel(in, *c.Relation) + ")")
		}
		if c.Phone != nil {
			line = strings.TrimSpace(line + ": " + *c.Phone)
		}
		contactLines = append(contactLines, strings.TrimPrefix(line, ": "))
	}
	contacts := pdfmodel.NewSection("contacts", label("sections.contacts", "Notfallkontakte", "Emergency contacts")).
		Bullets(contactLines...).
		Build()

	diagnoses := pdfmodel.NewSection("diagnoses", label("sections.diagnoses", "Diagnosen", "Diagnoses")).
		Paragraphs(m.Diagnoses.Paragraphs...).
		Build()

	symptoms := pdfmodel.NewSection("symptoms", label("sections.symptoms", "Symptome", "Symptoms")).
		Paragraph(d(m.Symptoms)).
		Build()

	medLines := make([]string, 0, len(m.Medications))
	for _, med := range m.Medications {
		if line := input.JoinNonEmpty(", ", med.Name, med.Dosage, med.Schedule); line != nil {
			medLines = append(medLines, *line)
		}
	}
	meds := pdfmodel.NewSection("medications", label("sections.medications", "Medikamente", "Medications")).
		Bullets(medLines...).
		Build()

	allergies := pdfmodel.NewSection("allergies", label("sections.allergies", "Allergien und Unverträglichkeiten", "Allergies and intolerances")).
		Paragraph(d(m.Allergies)).
		Build()

	doctor := pdfmodel.NewSection("doctor", label("sections.doctor", "Behandelnde Ärztin / behandelnder Arzt", "Treating physician")).
		KV(label("labels.name", "Name", "Name"), d(m.Doctor.Name)).
		KV(label("labels.phone", "Telefon", "Phone"), d(m.Doctor.Phone)).
		Build()

	return pdfmodel.Document{
		Title:    label("title", "Notfallpass", "Emergency pass"),
		Meta:     pdfmodel.NewMeta(in.Now, in.Locale, nil),
		Sections: []pdfmodel.Section{person, contacts, diagnoses, symptoms, meds, allergies, doctor},
	}
}

func relationLabel(in docmodel.Input, relation string) string {
	return in.T("notfallpass.contacts.relation."+relation, i18n.Default(relation))
}
