package decision

import (
	"fmt"
	"strings"
)

// QuestionKeys are the answer slots of the doctor-letter questionnaire.
var QuestionKeys = []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8"}

// UnknownCaseID is returned when no branch of the table matches.
const UnknownCaseID = 0

// Answers holds raw questionnaire answers keyed by question.
type Answers map[string]any

// Result is the resolved case of the questionnaire.
type Result struct {
	CaseID  int    `json:"caseId"`
	CaseKey string `json:"caseKey"`
}

// CaseKey returns the translation key of a case paragraph.
func CaseKey(caseID int) string {
	return fmt.Sprintf("doctor-letter.case.%d.paragraph", caseID)
}

// AnswersFrom extracts the question slots from an untrusted decision object.
func AnswersFrom(v any) Answers {
	m, ok := v.(map[string]any)
	if !ok {
		return Answers{}
	}
	out := make(Answers, len(QuestionKeys))
	for _, k := range QuestionKeys {
		if val, ok := m[k]; ok {
			out[k] = val
		}
	}
	return out
}

// HasAnyAnswer reports whether v holds at least one answered question. A slot
// counts as answered when it is a non-blank string or any boolean.
func HasAnyAnswer(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	for _, k := range QuestionKeys {
		switch a := m[k].(type) {
		case bool:
			return true
		case string:
			if strings.TrimSpace(a) != "" {
				return true
			}
		}
	}
	return false
}

type normalized struct {
	q1, q2, q3, q6, q7 string
	q4, q5, q8         string
}

func normalize(a Answers) normalized {
	return normalized{
		q1: yesNo(a["q1"]),
		q2: yesNo(a["q2"]),
		q3: yesNo(a["q3"]),
		q4: choice(a["q4"]),
		q5: choice(a["q5"]),
		q6: yesNo(a["q6"]),
		q7: yesNo(a["q7"]),
		q8: choice(a["q8"]),
	}
}

func yesNo(v any) string {
	switch a := v.(type) {
	case bool:
		if a {
			return "yes"
		}
		return "no"
	case string:
		switch strings.ToLower(strings.TrimSpace(a)) {
		case "yes":
			return "yes"
		case "no":
			return "no"
		}
	}
	return ""
}

func choice(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

type branch struct {
	caseID int
	match  func(n normalized) bool
}

// table is evaluated top-down. Branches are mutually exclusive.
var table = []branch{
	{1, func(n normalized) bool { return infectionTrigger(n) && n.q4 == "ebv" }},
	{2, func(n normalized) bool { return infectionTrigger(n) && n.q4 == "influenza" }},
	{3, func(n normalized) bool { return infectionTrigger(n) && n.q4 == "covid-19" }},
	{4, func(n normalized) bool { return infectionTrigger(n) && n.q4 == "other" }},
	{5, func(n normalized) bool { return otherTrigger(n) && n.q5 == "vaccination" }},
	{6, func(n normalized) bool { return otherTrigger(n) && n.q5 == "infection" }},
	{7, func(n normalized) bool { return otherTrigger(n) && n.q5 == "other" }},
	{8, func(n normalized) bool { return n.q1 == "yes" && n.q2 == "no" }},
	{9, func(n normalized) bool { return orthostatic(n) && n.q8 == "pots" }},
	{10, func(n normalized) bool { return orthostatic(n) && n.q8 == "oi" }},
	{11, func(n normalized) bool { return orthostatic(n) && n.q8 == "none" }},
	{12, func(n normalized) bool { return n.q1 == "no" && n.q6 == "yes" && n.q7 == "no" }},
	{13, func(n normalized) bool { return n.q1 == "no" && n.q6 == "no" }},
}

func infectionTrigger(n normalized) bool {
	return n.q1 == "yes" && n.q2 == "yes" && n.q3 == "yes"
}

func otherTrigger(n normalized) bool {
	return n.q1 == "yes" && n.q2 == "yes" && n.q3 == "no"
}

func orthostatic(n normalized) bool {
	return n.q1 == "no" && n.q6 == "yes" && n.q7 == "yes"
}

// Resolve evaluates the decision table. It never fails: unmatched answer
// combinations resolve to UnknownCaseID.
func Resolve(a Answers) Result {
	n := normalize(a)
	for _, b := range table {
		if b.match(n) {
			return Result{CaseID: b.caseID, CaseKey: CaseKey(b.caseID)}
		}
	}
	return Result{CaseID: UnknownCaseID, CaseKey: CaseKey(UnknownCaseID)}
}

// Cases lists every case id of the table including the unknown case.
func Cases() []int {
	out := []int{UnknownCaseID}
	for _, b := range table {
		out = append(out, b.caseID)
	}
	return out
}
