package offlabel

import (
	"strings"
	"unicode/utf8"
)

// BlockKind discriminates letter blocks.
type BlockKind string

const (
	BlockHeading    BlockKind = "heading"
	BlockParagraph  BlockKind = "paragraph"
	BlockLineBreaks BlockKind = "lineBreaks"
	BlockList       BlockKind = "list"
	BlockPageBreak  BlockKind = "pageBreak"
)

// Block is one node of a letter's block tree.
type Block struct {
	Kind  BlockKind `json:"type"`
	ID    string    `json:"id,omitempty"`
	Text  string    `json:"text,omitempty"`
	Lines []string  `json:"lines,omitempty"`
	Items []string  `json:"items,omitempty"`
}

// DefaultBulletPrefix is used for list items when FlattenOptions leaves the
// prefix empty.
const DefaultBulletPrefix = "• "

// FlattenOptions configures FlattenBlocksToParagraphs.
type FlattenOptions struct {
	IncludeHeadings bool
	BulletPrefix    string
	// WrapAt wraps list items at this many characters. Continuation lines are
	// separate entries starting with a tab. Zero disables wrapping.
	WrapAt int
}

// FlattenBlocksToParagraphs renders a block tree as a flat list of lines. No
// entry ever contains a newline. Page breaks are dropped.
func FlattenBlocksToParagraphs(blocks []Block, opts FlattenOptions) []string {
	prefix := opts.BulletPrefix
	if prefix == "" {
		prefix = DefaultBulletPrefix
	}
	out := []string{}
	for _, b := range blocks {
		switch b.Kind {
		case BlockHeading:
			if opts.IncludeHeadings {
				out = append(out, splitText(b.Text)...)
			}
		case BlockParagraph:
			out = append(out, splitText(b.Text)...)
		case BlockLineBreaks:
			for _, l := range b.Lines {
				out = append(out, splitLines(l)...)
			}
		case BlockList:
			for _, item := range b.Items {
				out = append(out, listItem(item, prefix, opts.WrapAt)...)
			}
		}
	}
	return out
}

// splitText splits a paragraph on newlines. Blank paragraphs vanish; blank
// lines inside a paragraph are kept.
func splitText(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return splitLines(strings.Trim(s, "\r\n"))
}

func splitLines(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return lines
}

func listItem(item, prefix string, wrapAt int) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil
	}
	var out []string
	for i, line := range splitLines(item) {
		for j, chunk := range wrap(line, wrapAt) {
			if i == 0 && j == 0 {
				out = append(out, prefix+chunk)
			} else {
				out = append(out, "\t"+chunk)
			}
		}
	}
	return out
}

// wrap breaks s at word boundaries into chunks of at most width runes. Words
// longer than width stay on their own line.
func wrap(s string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return []string{s}
	}
	var out []string
	var cur strings.Builder
	curLen := 0
	for _, w := range strings.Fields(s) {
		wl := utf8.RuneCountInString(w)
		if curLen > 0 && curLen+1+wl > width {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}
	return out
}
