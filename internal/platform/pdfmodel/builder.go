package pdfmodel

import "strings"

// SectionBuilder accumulates blocks for one section. Empty content is
// dropped, so a section without surviving content builds with no blocks.
type SectionBuilder struct {
	id      string
	heading string
	blocks  []Block
	rows    [][2]string
}

// NewSection starts a section.
func NewSection(id, heading string) *SectionBuilder {
	return &SectionBuilder{id: id, heading: Clean(heading)}
}

// Paragraph adds a paragraph. Text containing newlines becomes a lineBreaks
// block so line structure survives.
func (b *SectionBuilder) Paragraph(text string) *SectionBuilder {
	if strings.Contains(text, "\n") {
		return b.LineBreaks(strings.Split(text, "\n")...)
	}
	text = Clean(text)
	if text == "" {
		return b
	}
	b.flushRows()
	b.blocks = append(b.blocks, Block{Kind: KindParagraph, Text: text})
	return b
}

// Paragraphs adds one paragraph per entry.
func (b *SectionBuilder) Paragraphs(texts ...string) *SectionBuilder {
	for _, t := range texts {
		b.Paragraph(t)
	}
	return b
}

// LineBreaks adds consecutive lines. Blank lines are kept between content but
// trimmed at both ends.
func (b *SectionBuilder) LineBreaks(lines ...string) *SectionBuilder {
	cleaned := make([]string, 0, len(lines))
	for _, l := range lines {
		cleaned = append(cleaned, Clean(l))
	}
	for len(cleaned) > 0 && cleaned[0] == "" {
		cleaned = cleaned[1:]
	}
	for len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}
	if len(cleaned) == 0 {
		return b
	}
	b.flushRows()
	b.blocks = append(b.blocks, Block{Kind: KindLineBreaks, Lines: cleaned})
	return b
}

// Bullets adds a bullet list of the non-blank items.
func (b *SectionBuilder) Bullets(items ...string) *SectionBuilder {
	cleaned := make([]string, 0, len(items))
	for _, it := range items {
		if c := Clean(it); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return b
	}
	b.flushRows()
	b.blocks = append(b.blocks, Block{Kind: KindBullets, Items: cleaned})
	return b
}

// KV adds a key/value row. Consecutive rows share one kvTable; rows with an
// empty value are dropped.
func (b *SectionBuilder) KV(key, value string) *SectionBuilder {
	value = Clean(value)
	if value == "" {
		return b
	}
	b.rows = append(b.rows, [2]string{Clean(key), value})
	return b
}

// Build returns the section. Blocks is never nil.
func (b *SectionBuilder) Build() Section {
	b.flushRows()
	blocks := b.blocks
	if blocks == nil {
		blocks = []Block{}
	}
	return Section{ID: b.id, Heading: b.heading, Blocks: blocks}
}

func (b *SectionBuilder) flushRows() {
	if len(b.rows) == 0 {
		return
	}
	b.blocks = append(b.blocks, Block{Kind: KindKVTable, Rows: b.rows})
	b.rows = nil
}
