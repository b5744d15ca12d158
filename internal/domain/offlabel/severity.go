package offlabel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/input"
)

var bellBands = map[int]Localized{
	0:   {"Bell-Score 0: durchgehend bettlägerig, keine Selbstversorgung möglich.", "Bell score 0: bedridden at all times, unable to care for oneself."},
	10:  {"Bell-Score 10: überwiegend bettlägerig, das Haus kann nicht verlassen werden.", "Bell score 10: in bed most of the day, unable to leave the house."},
	20:  {"Bell-Score 20: ans Haus gebunden und den größten Teil des Tages im Bett, wenige Stunden Aufsitzen möglich.", "Bell score 20: housebound and in bed most of the day, able to sit up for a few hours."},
	30:  {"Bell-Score 30: überwiegend ans Haus gebunden, nur leichte Tätigkeiten von ein bis zwei Stunden täglich möglich.", "Bell score 30: mostly housebound, light activity of one to two hours a day at most."},
	40:  {"Bell-Score 40: leichte Tätigkeiten von drei bis vier Stunden täglich möglich, Aktivität etwa auf die Hälfte reduziert.", "Bell score 40: light activity of three to four hours a day, activity reduced to about half."},
	50:  {"Bell-Score 50: Alltagsaktivität auf etwa die Hälfte reduziert, keine Vollzeittätigkeit möglich.", "Bell score 50: daily activity reduced to about half, full-time work impossible."},
	60:  {"Bell-Score 60: Teilzeittätigkeit von vier bis fünf Stunden täglich unter Einschränkungen möglich.", "Bell score 60: part-time work of four to five hours a day possible with limitations."},
	70:  {"Bell-Score 70: Vollzeitnahe Tätigkeit nur mit erheblichen Schwierigkeiten möglich.", "Bell score 70: close to full-time work possible only with considerable difficulty."},
	80:  {"Bell-Score 80: leichte Symptome bei Belastung, Vollzeittätigkeit mit Schwierigkeiten möglich.", "Bell score 80: mild symptoms on exertion, full-time work possible with difficulty."},
	90:  {"Bell-Score 90: keine Symptome in Ruhe, leichte Symptome bei Belastung.", "Bell score 90: no symptoms at rest, mild symptoms on exertion."},
	100: {"Bell-Score 100: keine Einschränkungen.", "Bell score 100: no limitations."},
}

var merkzeichenOrder = []string{"G", "aG", "B", "H"}

var merkzeichenWhitelist = map[string]bool{
	"G": true, "aG": true, "H": true,
	"G+B": true, "aG+B": true, "G+H": true, "aG+H": true, "B+H": true,
	"G+B+H": true, "aG+B+H": true,
}

var workStatusLabels = map[string]Localized{
	"working":           {"Erwerbstätig", "Working"},
	"reducedHours":      {"In reduziertem Umfang erwerbstätig", "Working reduced hours"},
	"sickLeave":         {"Arbeitsunfähig", "On sick leave"},
	"unableToWork":      {"Erwerbsunfähig", "Unable to work"},
	"disabilityPension": {"Erwerbsminderungsrente", "Receiving a disability pension"},
}

// Severity is the validated severity input plus its narrative.
type Severity struct {
	BellScore   *int     `json:"bellScore"`
	GdB         *int     `json:"gdb"`
	Merkzeichen *string  `json:"merkzeichen"`
	Pflegegrad  *int     `json:"pflegegrad"`
	WorkStatus  *string  `json:"workStatus"`
	Lines       []string `json:"lines"`
}

// HasDisabilityCard reports whether a GdB or Merkzeichen was recognised.
func (s Severity) HasDisabilityCard() bool {
	return s.GdB != nil || s.Merkzeichen != nil
}

// ParseSeverity validates the severity object and builds the narrative in
// fixed order: Bell score, degree of disability, Merkzeichen, care level,
// work status. Values that do not validate are dropped silently.
func ParseSeverity(severity map[string]any, german bool, tr i18n.Translator) Severity {
	s := Severity{Lines: []string{}}
	if n, ok := wholeNumber(severity, "bellScore"); ok && n >= 0 && n <= 100 && n%10 == 0 {
		s.BellScore = &n
		s.Lines = append(s.Lines, bellBands[n].In(german))
	}
	if n, ok := wholeNumber(severity, "gdb"); ok && n >= 20 && n <= 100 && n%10 == 0 {
		s.GdB = &n
		s.Lines = append(s.Lines, pick(german,
			fmt.Sprintf("Es ist ein Grad der Behinderung (GdB) von %d anerkannt.", n),
			fmt.Sprintf("A degree of disability (GdB) of %d has been recognised.", n)))
	}
	if combo, ok := MerkzeichenCombination(severity["merkzeichen"]); ok {
		s.Merkzeichen = &combo
		if strings.Contains(combo, "+") {
			s.Lines = append(s.Lines, pick(german,
				"Im Schwerbehindertenausweis sind die Merkzeichen "+combo+" eingetragen.",
				"The disability card carries the markers "+combo+"."))
		} else {
			s.Lines = append(s.Lines, pick(german,
				"Im Schwerbehindertenausweis ist das Merkzeichen "+combo+" eingetragen.",
				"The disability card carries the marker "+combo+"."))
		}
	}
	if n, ok := wholeNumber(severity, "pflegegrad"); ok && n >= 1 && n <= 5 {
		s.Pflegegrad = &n
		s.Lines = append(s.Lines, pick(german,
			fmt.Sprintf("Es ist Pflegegrad %d anerkannt.", n),
			fmt.Sprintf("Care level %d has been granted.", n)))
	}
	key := input.Text(severity, "workStatus")
	if label, ok := WorkStatusLabel(key, german, tr); ok {
		s.WorkStatus = &key
		s.Lines = append(s.Lines, pick(german, "Berufliche Situation: "+label+".", "Employment: "+label+"."))
	}
	return s
}

// SeverityLines returns only the narrative of ParseSeverity.
func SeverityLines(severity map[string]any, german bool, tr i18n.Translator) []string {
	return ParseSeverity(severity, german, tr).Lines
}

// WorkStatusLabel translates a work status key. Unknown keys report false.
func WorkStatusLabel(key string, german bool, tr i18n.Translator) (string, bool) {
	def, ok := workStatusLabels[key]
	if !ok {
		return "", false
	}
	if tr == nil {
		return def.In(german), true
	}
	return tr.T("offlabel-antrag.severity.workStatus."+key, i18n.Default(def.In(german))), true
}

// MerkzeichenCombination canonicalizes a list (or a "G+B" / "G, B" string) of
// Merkzeichen and checks it against the list of valid combinations.
func MerkzeichenCombination(v any) (string, bool) {
	var tokens []string
	if s := input.StringValue(v); s != nil {
		tokens = strings.FieldsFunc(*s, func(r rune) bool { return r == '+' || r == ',' || r == ' ' || r == '/' })
	} else {
		tokens = input.StringsValue(v)
	}
	if len(tokens) == 0 {
		return "", false
	}
	seen := map[string]bool{}
	for _, t := range tokens {
		code, ok := canonicalMerkzeichen(t)
		if !ok {
			return "", false
		}
		seen[code] = true
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return rank(codes[i]) < rank(codes[j]) })
	combo := strings.Join(codes, "+")
	return combo, merkzeichenWhitelist[combo]
}

func canonicalMerkzeichen(s string) (string, bool) {
	for _, c := range merkzeichenOrder {
		if strings.EqualFold(strings.TrimSpace(s), c) {
			return c, true
		}
	}
	return "", false
}

func rank(code string) int {
	for i, c := range merkzeichenOrder {
		if c == code {
			return i
		}
	}
	return len(merkzeichenOrder)
}

func wholeNumber(m map[string]any, key string) (int, bool) {
	f, ok := input.Number(m, key)
	if !ok || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func pick(german bool, de, en string) string {
	if german {
		return de
	}
	return en
}
