package offlabel

import (
	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/pdfmodel"
)

// SectionIDs of the PDF export in order.
var SectionIDs = []string{"part1", "part2", "part3", "sources", "checklist"}

func (Builder) BuildPdf(in docmodel.Input) pdfmodel.Document {
	return BuildPdfDocumentModel(in)
}

// BuildPdfDocumentModel renders the export bundle as a PDF block tree. The
// document meta carries the bundle as template data.
func BuildPdfDocumentModel(in docmodel.Input) pdfmodel.Document {
	m := Build(in)
	de := in.IsGerman()
	label := func(key, deText, enText string) string {
		return in.T("offlabel-antrag.export."+key, i18n.Default(pick(de, deText, enText)))
	}
	b := m.Bundle

	sources := pdfmodel.NewSection("sources", label("sections.sources", "Quellen", "Sources")).
		Bullets(b.Sources...).
		Build()
	checklist := pdfmodel.NewSection("checklist", label("sections.checklist", "Checkliste", "Checklist")).
		Bullets(b.Checklist...).
		Build()

	return pdfmodel.Document{
		Title: label("title", "Antrag auf Kostenübernahme (Off-Label-Use)", "Application for reimbursement (off-label use)"),
		Meta:  pdfmodel.NewMeta(in.Now, in.Locale, docmodel.Tree(b)),
		Sections: []pdfmodel.Section{
			letterSection("part1", label("sections.part1", "Teil 1: Antrag an die Krankenkasse", "Part 1: Application to the health insurer"), b.KK),
			letterSection("part2", label("sections.part2", "Teil 2: Schreiben an die Praxis", "Part 2: Letter to the practice"), b.Arzt),
			letterSection("part3", label("sections.part3", "Teil 3: Ärztliche Stellungnahme", "Part 3: Physician statement"), b.Part3),
			sources,
			checklist,
		},
	}
}

// letterSection lays out one letter. Each paragraph entry becomes a block;
// the closing greeting and the signature share one line-break block.
func letterSection(id, heading string, s LetterSection) pdfmodel.Section {
	sec := pdfmodel.NewSection(id, heading).
		LineBreaks(s.SenderLines...).
		LineBreaks(s.AddresseeLines...).
		Paragraph(s.DateLine).
		Paragraph(s.Subject)

	ps := s.Paragraphs
	for i := 0; i < len(ps); i++ {
		if IsClosingGreeting(ps[i]) && i+1 < len(ps) && !isBlank(ps[i+1]) {
			sec.LineBreaks(ps[i], ps[i+1])
			i++
			continue
		}
		sec.Paragraph(ps[i])
	}

	if len(s.Attachments) > 0 {
		sec.Paragraph(s.AttachmentsHeading).Bullets(s.Attachments...)
	}
	if len(s.LiabilityParagraphs) > 0 {
		sec.Paragraph(s.LiabilityHeading).
			Paragraphs(s.LiabilityParagraphs...).
			LineBreaks(s.LiabilityDateLine, s.LiabilitySignerName)
	}
	return sec.Build()
}
