package pdfmodel

import (
	"regexp"
	"strings"
	"time"
)

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	dashRuns    = regexp.MustCompile(`-{2,}`)
)

// BuildFilename returns "<formpackId>-<YYYYMMDD>.pdf".
func BuildFilename(formpackID string, at time.Time) string {
	id := unsafeChars.ReplaceAllString(strings.TrimSpace(formpackID), "-")
	id = strings.Trim(dashRuns.ReplaceAllString(id, "-"), "-")
	if id == "" {
		id = "document"
	}
	return id + "-" + at.Format("20060102") + ".pdf"
}
