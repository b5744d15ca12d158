package offlabel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenBlocksToParagraphs(t *testing.T) {
	blocks := []Block{
		{Kind: BlockHeading, Text: "Subject"},
		{Kind: BlockParagraph, Text: "first line\nsecond line"},
		{Kind: BlockParagraph, Text: "   "},
		{Kind: BlockLineBreaks, Lines: []string{"a", "b\r\nc"}},
		{Kind: BlockPageBreak},
		{Kind: BlockList, Items: []string{"one", "", "two"}},
	}

	t.Run("without headings", func(t *testing.T) {
		got := FlattenBlocksToParagraphs(blocks, FlattenOptions{})
		assert.Equal(t, []string{"first line", "second line", "a", "b", "c", "• one", "• two"}, got)
	})

	t.Run("with headings and custom prefix", func(t *testing.T) {
		got := FlattenBlocksToParagraphs(blocks, FlattenOptions{IncludeHeadings: true, BulletPrefix: "- "})
		assert.Equal(t, []string{"Subject", "first line", "second line", "a", "b", "c", "- one", "- two"}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, []string{}, FlattenBlocksToParagraphs(nil, FlattenOptions{}))
	})
}

func TestFlattenBlocksToParagraphs_WrapsListItems(t *testing.T) {
	blocks := []Block{{Kind: BlockList, Items: []string{"the quick brown fox jumps over the lazy dog"}}}

	got := FlattenBlocksToParagraphs(blocks, FlattenOptions{WrapAt: 15})

	assert.Equal(t, []string{"• the quick brown", "\tfox jumps over", "\tthe lazy dog"}, got)
}

func TestWrap_LongWordStaysWhole(t *testing.T) {
	assert.Equal(t, []string{"a", "incomprehensibilities", "b"}, wrap("a incomprehensibilities b", 5))
	assert.Equal(t, []string{"short"}, wrap("short", 0))
}

func TestApplyClosingSpacing(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "inserts blanks around the closing",
			in:   []string{"Body.", "Mit freundlichen Grüßen", "Erika Mustermann"},
			want: []string{"Body.", "", "Mit freundlichen Grüßen", "Erika Mustermann", ""},
		},
		{
			name: "collapses existing blanks",
			in:   []string{"Body.", "", "", "Kind regards,", "", "Jane", "", "", "P.S."},
			want: []string{"Body.", "", "Kind regards,", "Jane", "", "P.S."},
		},
		{
			name: "greeting without signature",
			in:   []string{"Body.", "Kind regards"},
			want: []string{"Body.", "", "Kind regards", ""},
		},
		{
			name: "no greeting",
			in:   []string{"Body.", "", "More."},
			want: []string{"Body.", "", "More."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyClosingSpacing(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ApplyClosingSpacing(got), "idempotent")
		})
	}
}

func TestInlineLiability(t *testing.T) {
	base := []string{"Body.", "", "Kind regards", "Jane", ""}

	t.Run("appends heading and paragraphs", func(t *testing.T) {
		s := LetterSection{
			LiabilityHeading:    "Liability declaration",
			LiabilityParagraphs: []string{"First.", " ", "Second.\nThird."},
			LiabilityDateLine:   "Place, date: ____",
			LiabilitySignerName: "Jane",
		}
		got := InlineLiability(base, s)
		assert.Equal(t, []string{
			"Body.", "", "Kind regards", "Jane", "",
			"Liability declaration", "First.", "Second.", "Third.",
			"", "Place, date: ____", "Jane",
		}, got)
		assert.Len(t, base, 5, "input is not mutated")
	})

	t.Run("nothing without paragraphs", func(t *testing.T) {
		got := InlineLiability(base, LetterSection{LiabilityHeading: "Liability declaration", LiabilityParagraphs: []string{"", "  "}})
		assert.Equal(t, base, got)
	})

	t.Run("paragraphs without heading", func(t *testing.T) {
		got := InlineLiability([]string{"Body."}, LetterSection{LiabilityParagraphs: []string{"First."}})
		assert.Equal(t, []string{"Body.", "", "First."}, got)
	})
}

func TestIsClosingGreeting(t *testing.T) {
	assert.True(t, IsClosingGreeting("Mit freundlichen Grüßen"))
	assert.True(t, IsClosingGreeting("  kind regards, "))
	assert.False(t, IsClosingGreeting("Mit freundlichen Grüßen und Dank"))
	assert.False(t, IsClosingGreeting(""))
}
