package docmodel

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDate    = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	dottedDate = regexp.MustCompile(`^(\d{1,2})[.\-](\d{1,2})[.\-](\d{4})$`)
)

// NormalizeBirthDate rewrites YYYY-MM-DD, YYYY/MM/DD, DD.MM.YYYY and
// DD-MM-YYYY into DD-MM-YYYY. Anything else, including a month outside
// 1-12 or a day outside 1-31, is returned unchanged.
func NormalizeBirthDate(s string) string {
	trimmed := strings.TrimSpace(s)
	var day, month, year string
	if m := isoDate.FindStringSubmatch(trimmed); m != nil {
		year, month, day = m[1], m[2], m[3]
	} else if m := dottedDate.FindStringSubmatch(trimmed); m != nil {
		day, month, year = m[1], m[2], m[3]
	} else {
		return s
	}
	if !inRange(month, 1, 12) || !inRange(day, 1, 31) {
		return s
	}
	return pad(day) + "-" + pad(month) + "-" + year
}

func inRange(digits string, lo, hi int) bool {
	n, err := strconv.Atoi(digits)
	return err == nil && n >= lo && n <= hi
}

// NormalizeBirthDatePtr applies NormalizeBirthDate to an optional value.
func NormalizeBirthDatePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := NormalizeBirthDate(*p)
	return &v
}

func pad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// FormatDate renders a date line for letters: DD.MM.YYYY in German, the
// long English form otherwise.
func FormatDate(t time.Time, german bool) string {
	if german {
		return t.Format("02.01.2006")
	}
	return t.Format("January 2, 2006")
}
