package offlabel

import (
	"fmt"
	"strings"

	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/platform/input"
)

// Liability resource keys in the formpack namespace.
const (
	LiabilityHeadingKey    = "offlabel-antrag.export.part2.liability.heading"
	LiabilityParagraphsKey = "offlabel-antrag.export.part2.liability.paragraphs"
)

var legalSources = struct {
	bsg, bverfg, sgb, md Localized
}{
	bsg:    Localized{"BSG, Urteil vom 19.03.2002, B 1 KR 37/00 R", "Federal Social Court (BSG), judgment of 19 March 2002, B 1 KR 37/00 R"},
	bverfg: Localized{"BVerfG, Beschluss vom 06.12.2005, 1 BvR 347/98", "Federal Constitutional Court (BVerfG), order of 6 December 2005, 1 BvR 347/98"},
	sgb:    Localized{"§ 2 Abs. 1a SGB V", "Section 2 (1a) SGB V"},
	md:     Localized{"Medizinischer Dienst Bund: Begutachtungsanleitung Off-Label-Use", "Medical Service (MD Bund): assessment guideline for off-label use"},
}

type assembler struct {
	in     docmodel.Input
	m      Model
	t      letterTexts
	german bool
	date   string
}

func newAssembler(in docmodel.Input, m Model) *assembler {
	german := in.IsGerman()
	return &assembler{
		in:     in,
		m:      m,
		t:      textsFor(german),
		german: german,
		date:   docmodel.FormatDate(in.Now, german),
	}
}

func (a *assembler) assemble() (ExportBundle, Documents) {
	kkBody := a.kkBody()
	arztBody := a.arztBody()
	part3Body := a.part3Body()

	kk := a.kkSection(kkBody)
	arzt := a.arztSection(arztBody)
	part3 := a.part3Section(part3Body)

	bundle := ExportBundle{
		KK:        kk,
		Arzt:      arzt,
		Part3:     part3,
		Sources:   a.sources(),
		Checklist: append([]string{}, a.t.checklist...),
	}
	docs := Documents{
		Part1: letterDocument("part1", kk, kkBody),
		Part2: letterDocument("part2", arzt, arztBody),
		Part3: letterDocument("part3", part3, part3Body),
	}
	return bundle, docs
}

// or returns the value of p, or the placeholder when p is nil.
func (a *assembler) or(p *string) string {
	if p == nil {
		return a.t.placeholder
	}
	return *p
}

func (a *assembler) patientName() string { return a.or(a.m.Patient.Name) }

func (a *assembler) doctorName() string { return a.or(a.m.Doctor.Name) }

func (a *assembler) drugName() string { return a.or(a.m.Request.DrugName) }

func (a *assembler) dateLine(city *string) string {
	if city == nil {
		return a.date
	}
	return fmt.Sprintf(a.t.dateLine, *city, a.date)
}

// paragraphs flattens a letter body and normalizes the closing spacing.
func paragraphs(body []Block) []string {
	return ApplyClosingSpacing(FlattenBlocksToParagraphs(body, FlattenOptions{BulletPrefix: DefaultBulletPrefix}))
}

func para(id, text string) Block { return Block{Kind: BlockParagraph, ID: id, Text: text} }

// point is one numbered argument of the insurer application.
type point struct {
	n    int
	body []Block
}

// points returns the argument blocks of part 1. Points 7 and 9 and point 10
// exclude each other. Rendered numbers are sequential.
func (a *assembler) points() []Block {
	r := a.m.Request
	emergency := r.EmergencyClauses()

	all := []point{
		{1, []Block{para("point1", fmt.Sprintf(a.t.diagnosisKK, a.or(r.Diagnosis)))}},
		{2, a.severityBlocks("point2")},
		{3, a.standardTherapyBlocks("point3")},
		{4, []Block{para("point4", fmt.Sprintf(a.t.treatmentKK, a.drugName(), a.or(r.TreatmentGoal)))}},
		{5, []Block{para("point5", a.regimen())}},
		{6, []Block{para("point6", fmt.Sprintf(a.t.evidence, a.drugName()))}},
		{7, []Block{para("point7", a.t.emergency)}},
		{8, []Block{para("point8", a.t.deadline)}},
		{9, []Block{para("point9", a.t.indicia)}},
		{10, []Block{para("point10", a.t.mdReview)}},
	}

	var out []Block
	num := 0
	for _, p := range all {
		switch {
		case (p.n == 7 || p.n == 9) && !emergency:
			continue
		case p.n == 10 && emergency:
			continue
		}
		num++
		id := fmt.Sprintf("point%d", p.n)
		out = append(out, para(id, fmt.Sprintf("%d. %s", num, a.t.points[p.n-1])))
		out = append(out, p.body...)
	}
	return out
}

func (a *assembler) severityBlocks(id string) []Block {
	sev := a.m.Severity.Lines
	if len(sev) == 0 {
		return []Block{para(id, a.t.severityNone)}
	}
	return []Block{
		para(id, a.t.severityIntro),
		{Kind: BlockList, ID: id, Items: append([]string{}, sev...)},
	}
}

func (a *assembler) standardTherapyBlocks(id string) []Block {
	out := []Block{para(id, a.t.noStandard)}
	if p := a.m.Request.PriorTherapies; p != nil {
		out = append(out, para(id, fmt.Sprintf(a.t.priorTherapies, *p)))
	}
	return out
}

func (a *assembler) regimen() string {
	r := a.m.Request
	return fmt.Sprintf(a.t.regimen, a.or(r.Dose), a.or(r.Duration), a.or(r.Monitoring))
}

func (a *assembler) kkBody() []Block {
	r := a.m.Request
	body := []Block{
		para("salutation", a.t.salutation),
		para("intro", fmt.Sprintf(a.t.kkIntro, a.drugName(), a.or(r.ApprovedFor))),
	}
	body = append(body, a.points()...)
	return append(body,
		para("closing", a.t.closing),
		para("signature", a.patientName()),
	)
}

func (a *assembler) arztBody() []Block {
	salutation := a.t.salutation
	if n := a.m.Doctor.Name; n != nil {
		salutation = fmt.Sprintf(a.t.salutationName, *n)
	}
	body := []Block{
		para("salutation", salutation),
		para("intro", fmt.Sprintf(a.t.arztBodyDrug, a.drugName())),
	}
	for _, p := range a.t.arztBody {
		body = append(body, para("body", p))
	}
	return append(body,
		para("closing", a.t.closing),
		para("signature", a.patientName()),
	)
}

func (a *assembler) part3Body() []Block {
	r := a.m.Request
	patient := a.patientName()
	if b := a.m.Patient.BirthDate; b != nil {
		patient += " (" + fmt.Sprintf(a.t.born, *b) + ")"
	}
	body := []Block{
		para("salutation", a.t.salutation),
		para("intro", a.t.part3Intro),
		para("diagnosis", fmt.Sprintf(a.t.diagnosisDoctor, patient, a.or(r.Diagnosis))),
	}
	body = append(body, a.severityBlocks("severity")...)
	body = append(body, a.standardTherapyBlocks("standardTherapy")...)
	body = append(body,
		para("treatment", fmt.Sprintf(a.t.treatmentDoctor, a.drugName(), a.or(r.TreatmentGoal))),
		para("regimen", a.regimen()),
		para("evidence", fmt.Sprintf(a.t.evidence, a.drugName())),
	)
	if r.EmergencyClauses() {
		body = append(body, para("emergency", a.t.emergency), para("indicia", a.t.indicia))
	} else {
		body = append(body, para("mdReview", a.t.mdReview))
	}
	return append(body,
		para("support", a.t.part3Closing),
		para("closing", a.t.closing),
		para("signature", a.doctorName()),
	)
}

func (a *assembler) patientLines() []string {
	p := a.m.Patient
	out := lines(p.Name, p.StreetAndNumber, input.JoinNonEmpty(" ", p.PostalCode, p.City))
	if n := p.InsuranceNumber; n != nil {
		out = append(out, fmt.Sprintf(a.t.insuranceNo, *n))
	}
	return out
}

func (a *assembler) insurerLines() []string {
	i := a.m.Insurer
	return lines(i.Name, i.Department, i.StreetAndNumber, input.JoinNonEmpty(" ", i.PostalCode, i.City))
}

func (a *assembler) practiceLines() []string {
	d := a.m.Doctor
	return lines(d.Practice, d.Name, d.StreetAndNumber, input.JoinNonEmpty(" ", d.PostalCode, d.City))
}

func (a *assembler) kkSection(body []Block) LetterSection {
	attachments := []string{a.t.attStatement, a.t.attReports, a.t.attSources}
	if a.m.Severity.HasDisabilityCard() {
		attachments = append(attachments, a.t.attDisability)
	}
	if a.m.Severity.Pflegegrad != nil {
		attachments = append(attachments, a.t.attCare)
	}
	return LetterSection{
		SenderLines:        a.patientLines(),
		AddresseeLines:     a.insurerLines(),
		DateLine:           a.dateLine(a.m.Patient.City),
		Subject:            fmt.Sprintf(a.t.kkSubject, a.drugName()),
		Paragraphs:         paragraphs(body),
		AttachmentsHeading: a.t.attachmentsHeading,
		Attachments:        attachments,
		SignatureBlocks:    []SignatureBlock{{Label: a.t.insuredLabel, Name: a.patientName()}},
	}
}

func (a *assembler) arztSection(body []Block) LetterSection {
	heading, liability := a.liability()
	s := LetterSection{
		SenderLines:         a.patientLines(),
		AddresseeLines:      a.practiceLines(),
		DateLine:            a.dateLine(a.m.Patient.City),
		Subject:             fmt.Sprintf(a.t.arztSubject, a.drugName()),
		Paragraphs:          paragraphs(body),
		AttachmentsHeading:  a.t.attachmentsHeading,
		Attachments:         append([]string{}, a.t.arztAttachments...),
		SignatureBlocks:     []SignatureBlock{{Label: a.t.patientLabel, Name: a.patientName()}},
		LiabilityHeading:    heading,
		LiabilityParagraphs: liability,
	}
	if len(liability) > 0 {
		s.LiabilityDateLine = a.t.liabilityDate
		s.LiabilitySignerName = a.patientName()
	}
	return s
}

func (a *assembler) part3Section(body []Block) LetterSection {
	sender := a.practiceLines()
	if p := a.m.Doctor.Phone; p != nil {
		sender = append(sender, fmt.Sprintf(a.t.phone, *p))
	}
	return LetterSection{
		SenderLines:        sender,
		AddresseeLines:     a.insurerLines(),
		DateLine:           a.dateLine(a.m.Doctor.City),
		Subject:            fmt.Sprintf(a.t.part3Subject, a.drugName()),
		Paragraphs:         paragraphs(body),
		AttachmentsHeading: a.t.attachmentsHeading,
		Attachments:        []string{a.t.attSources},
		SignatureBlocks:    []SignatureBlock{{Label: a.t.doctorLabel, Name: a.doctorName()}},
	}
}

// liability reads the declaration from the formpack resources. Missing or
// malformed resources yield no declaration.
func (a *assembler) liability() (string, []string) {
	var heading string
	if v, ok := a.in.Lookup(LiabilityHeadingKey); ok {
		if s := input.StringValue(v); s != nil {
			heading = *s
		}
	}
	v, _ := a.in.Lookup(LiabilityParagraphsKey)
	paragraphs := nonBlank(input.StringsValue(v))
	if len(paragraphs) == 0 {
		return "", nil
	}
	return heading, paragraphs
}

func (a *assembler) sources() []string {
	out := []string{}
	if d, ok := LookupDrug(a.m.Request.Drug); ok {
		out = append(out, d.Sources...)
	}
	out = append(out, legalSources.bsg.In(a.german))
	if a.m.Request.EmergencyClauses() {
		out = append(out, legalSources.bverfg.In(a.german), legalSources.sgb.In(a.german))
	} else {
		out = append(out, legalSources.md.In(a.german))
	}
	return out
}

// lines keeps the non-nil values, split on newlines.
func lines(ps ...*string) []string {
	out := []string{}
	for _, p := range ps {
		if p == nil {
			continue
		}
		for _, l := range strings.Split(*p, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}
