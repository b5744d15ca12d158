// Package pdfmodel defines the block tree handed to the PDF layout renderer.
//
// A Document is a list of addressable sections holding typed blocks. Block
// text is plain: markup is stripped on construction so that no block can carry
// executable content.
package pdfmodel

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// BlockKind discriminates the Block union.
type BlockKind string

const (
	KindParagraph  BlockKind = "paragraph"
	KindLineBreaks BlockKind = "lineBreaks"
	KindBullets    BlockKind = "bullets"
	KindKVTable    BlockKind = "kvTable"
)

// Block is one of paragraph{text}, lineBreaks{lines}, bullets{items} or
// kvTable{rows}. Rows are fixed 2-tuples of key and value.
type Block struct {
	Kind  BlockKind   `json:"type"`
	Text  string      `json:"text,omitempty"`
	Lines []string    `json:"lines,omitempty"`
	Items []string    `json:"items,omitempty"`
	Rows  [][2]string `json:"rows,omitempty"`
}

// Section is an addressable group of blocks.
type Section struct {
	ID      string  `json:"id"`
	Heading string  `json:"heading,omitempty"`
	Blocks  []Block `json:"blocks"`
}

// Meta carries document-level data for presentation-layer renderers.
type Meta struct {
	CreatedAtISO string `json:"createdAtIso"`
	Locale       string `json:"locale"`
	TemplateData any    `json:"templateData,omitempty"`
}

// Document is the block tree of one export.
type Document struct {
	Title    string    `json:"title,omitempty"`
	Meta     *Meta     `json:"meta,omitempty"`
	Sections []Section `json:"sections"`
}

// NewMeta builds Meta with the creation time in UTC RFC 3339.
func NewMeta(at time.Time, locale string, templateData any) *Meta {
	return &Meta{
		CreatedAtISO: at.UTC().Format(time.RFC3339),
		Locale:       locale,
		TemplateData: templateData,
	}
}

// Section returns the section with id, if present.
func (d Document) Section(id string) (Section, bool) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// SectionIDs lists section ids in document order.
func (d Document) SectionIDs() []string {
	out := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = s.ID
	}
	return out
}

var policy = bluemonday.StrictPolicy()

// cleanPasses bounds how often nested entity encodings are peeled off.
const cleanPasses = 8

// Clean strips markup from s and returns trimmed plain text. Entity-encoded
// markup is decoded and stripped too, however often it was encoded.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	for i := 0; i < cleanPasses; i++ {
		next := html.UnescapeString(policy.Sanitize(html.UnescapeString(s)))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	// Still changing: drop anything that could open a tag.
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(s))
}
