package docx

import (
	"regexp"
	"strings"
)

const maxSegmentLen = 80

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dashRuns    = regexp.MustCompile(`-{2,}`)
)

func sanitizeSegment(s, fallback string) string {
	out := unsafeChars.ReplaceAllString(strings.TrimSpace(s), "-")
	out = strings.Trim(dashRuns.ReplaceAllString(out, "-"), "-")
	if len(out) > maxSegmentLen {
		out = strings.TrimRight(out[:maxSegmentLen], "-")
	}
	if out == "" {
		return fallback
	}
	return out
}
