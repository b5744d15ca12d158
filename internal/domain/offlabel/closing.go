package offlabel

import "strings"

var closingGreetings = []string{
	"mit freundlichen grüßen",
	"mit freundlichen grüssen",
	"freundliche grüße",
	"viele grüße",
	"kind regards",
	"best regards",
	"yours sincerely",
	"yours faithfully",
	"sincerely",
}

// IsClosingGreeting reports whether line is a formal closing such as
// "Mit freundlichen Grüßen" or "Kind regards".
func IsClosingGreeting(line string) bool {
	l := strings.ToLower(strings.TrimRight(strings.TrimSpace(line), ",."))
	for _, g := range closingGreetings {
		if l == g {
			return true
		}
	}
	return false
}

// ApplyClosingSpacing normalizes blank lines around the first closing
// greeting: one blank line before it, none between the greeting and the
// signature line, and exactly one after the signature. Applying it twice
// gives the same result.
func ApplyClosingSpacing(paragraphs []string) []string {
	at := -1
	for i, p := range paragraphs {
		if IsClosingGreeting(p) {
			at = i
			break
		}
	}
	if at < 0 {
		return append([]string{}, paragraphs...)
	}

	out := trimTrailingBlank(append([]string{}, paragraphs[:at]...))
	if len(out) > 0 {
		out = append(out, "")
	}
	out = append(out, paragraphs[at])

	rest := paragraphs[at+1:]
	for len(rest) > 0 && isBlank(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) > 0 {
		out = append(out, rest[0])
		rest = rest[1:]
	}
	for len(rest) > 0 && isBlank(rest[0]) {
		rest = rest[1:]
	}
	out = append(out, "")
	return append(out, rest...)
}

// InlineLiability appends the liability declaration of s to paragraphs as
// separate entries. Nothing is appended when s carries no liability text.
func InlineLiability(paragraphs []string, s LetterSection) []string {
	out := append([]string{}, paragraphs...)
	body := nonBlank(s.LiabilityParagraphs)
	if len(body) == 0 {
		return out
	}
	if len(out) > 0 && !isBlank(out[len(out)-1]) {
		out = append(out, "")
	}
	out = append(out, nonBlank([]string{s.LiabilityHeading})...)
	out = append(out, body...)
	if date := nonBlank([]string{s.LiabilityDateLine}); len(date) > 0 {
		out = append(out, "")
		out = append(out, date...)
	}
	return append(out, nonBlank([]string{s.LiabilitySignerName})...)
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// nonBlank splits entries on newlines and drops blank lines.
func nonBlank(in []string) []string {
	out := []string{}
	for _, s := range in {
		for _, l := range splitLines(s) {
			if !isBlank(l) {
				out = append(out, strings.TrimSpace(l))
			}
		}
	}
	return out
}
