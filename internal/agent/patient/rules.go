package patient

import (
	"regexp"
	"strings"
	"unicode"
)

// RuleSemantics describes how a captured run is assigned to patient fields.
type RuleSemantics int

const (
	// FullName runs hold "first last..." and may fill both name slots.
	FullName RuleSemantics = iota
	// GivenName runs only fill first_name.
	GivenName
	// FamilyName runs only fill last_name.
	FamilyName
	DateToken
	Identifier
	FreeText
)

// ExtractionRule 一条带标签的正则规则
// Pattern is matched against lower-cased text and must have exactly one capture group.
// The match is rejected when the word right before it is listed in NotAfter.
type ExtractionRule struct {
	Label     string
	Pattern   *regexp.Regexp
	Semantics RuleSemantics
	NotAfter  []string
}

// Rules holds one ordered rule list per field family. Order is significant.
type Rules struct {
	Name                []ExtractionRule
	DateOfBirth         []ExtractionRule
	MedicalRecordNumber []ExtractionRule
	Diagnosis           []ExtractionRule
}

const (
	nameRun   = `([\p{L}\s,]+)`
	dateToken = `(\d{4}[/-]\d{1,2}[/-]\d{1,2}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`
	idToken   = `(\w+)`
	textRun   = `([^.]+)`
)

// words that turn a bare "name" label into a different label
var nameQualifiers = []string{
	"patient", "first", "last", "middle", "given", "family",
	"user", "file", "doctor", "physician", "provider",
}

func labelRule(label, capture string, sem RuleSemantics, notAfter ...string) ExtractionRule {
	return ExtractionRule{
		Label:     label,
		Pattern:   regexp.MustCompile(`\b` + regexp.QuoteMeta(label) + `[:\s]+` + capture),
		Semantics: sem,
		NotAfter:  notAfter,
	}
}

// DefaultRules returns a fresh copy of the built-in rule lists.
func DefaultRules() Rules {
	return Rules{
		Name: []ExtractionRule{
			labelRule("patient name", nameRun, FullName),
			labelRule("name", nameRun, FullName, nameQualifiers...),
			labelRule("last name", nameRun, FamilyName),
			labelRule("first name", nameRun, GivenName),
		},
		DateOfBirth: []ExtractionRule{
			labelRule("date of birth", dateToken, DateToken),
			labelRule("dob", dateToken, DateToken),
			labelRule("birth date", dateToken, DateToken),
			labelRule("born", dateToken, DateToken),
		},
		MedicalRecordNumber: []ExtractionRule{
			labelRule("mrn", idToken, Identifier),
			labelRule("medical record number", idToken, Identifier),
			labelRule("patient id", idToken, Identifier),
			labelRule("id number", idToken, Identifier),
		},
		Diagnosis: []ExtractionRule{
			labelRule("diagnosis", textRun, FreeText),
			labelRule("primary diagnosis", textRun, FreeText),
			labelRule("condition", textRun, FreeText),
		},
	}
}

// Labels that end a captured run. Longer labels come first so that
// "last name" wins over "name" at the same position.
var stopLabels = regexp.MustCompile(`\b(?:` + strings.Join([]string{
	"medical record number", "primary diagnosis", "date of birth", "patient name",
	"first name", "last name", "middle name", "birth date", "patient id", "id number",
	"diagnosis", "condition", "physician", "insurance", "provider", "address",
	"doctor", "gender", "phone", "email", "name", "born", "dob", "mrn", "ssn",
	"age", "sex",
}, "|") + `)\b`)

// find returns the cleaned capture of the first acceptable match.
// The scan resumes right after a rejected label, so a run swallowed by a
// rejected match can still be matched on its own.
func (r ExtractionRule) find(lower string) (string, bool) {
	for start := 0; start < len(lower); {
		loc := r.Pattern.FindStringSubmatchIndex(lower[start:])
		if loc == nil || loc[2] < 0 {
			return "", false
		}
		matchStart := start + loc[0]
		capStart, capEnd := start+loc[2], start+loc[3]
		start = matchStart + len(r.Label)

		if r.rejectedBy(lower[:matchStart]) {
			continue
		}
		run := lower[capStart:capEnd]
		switch r.Semantics {
		case DateToken, Identifier:
			return run, true
		}
		if run = trimRun(run, lower[capEnd:]); run != "" {
			return run, true
		}
	}
	return "", false
}

func (r ExtractionRule) rejectedBy(before string) bool {
	if len(r.NotAfter) == 0 {
		return false
	}
	prev := lastWord(before)
	if prev == "" {
		return false
	}
	for _, w := range r.NotAfter {
		if prev == w {
			return true
		}
	}
	return false
}

func lastWord(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimFunc(fields[len(fields)-1], func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// trimRun cuts a captured run at the next field label. When no label was
// found but the run is directly followed by ':' (or contains one), its last
// word is an unknown label and is dropped.
func trimRun(run, rest string) string {
	if loc := stopLabels.FindStringIndex(run); loc != nil {
		return cleanRun(run[:loc[0]])
	}
	if i := strings.IndexByte(run, ':'); i >= 0 {
		return dropLastWord(run[:i])
	}
	if strings.HasPrefix(rest, ":") {
		return dropLastWord(run)
	}
	return cleanRun(run)
}

func dropLastWord(run string) string {
	fields := strings.Fields(run)
	if len(fields) <= 1 {
		return ""
	}
	return cleanRun(strings.Join(fields[:len(fields)-1], " "))
}

func cleanRun(run string) string {
	return strings.Trim(strings.TrimSpace(run), ", ")
}
