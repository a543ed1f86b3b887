package patient

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
)

// Extractor 基于有序规则从规范化文本中推断患者字段
// An Extractor is immutable after construction and safe for concurrent use.
type Extractor struct {
	rules    Rules
	extended bool
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtendedFields enables medical record number and diagnosis extraction.
func WithExtendedFields(enabled bool) ExtractorOption {
	return func(e *Extractor) {
		e.extended = enabled
	}
}

// WithRules replaces the built-in rule lists.
func WithRules(rules Rules) ExtractorOption {
	return func(e *Extractor) {
		e.rules = rules
	}
}

func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{rules: DefaultRules()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fields lists the fields this extractor resolves, in output order.
func (e *Extractor) Fields() []models.Field {
	fields := append([]models.Field{}, models.CoreFields...)
	if e.extended {
		fields = append(fields, models.ExtendedFields...)
	}
	return fields
}

// Extract never fails; unmatched families leave their fields empty.
// The date of birth is returned as captured, see NormalizeDate.
func (e *Extractor) Extract(text string) models.PatientFields {
	var out models.PatientFields
	if strings.TrimSpace(text) == "" {
		return out
	}
	lower := strings.ToLower(text)

	e.extractNames(lower, &out)
	out.DateOfBirth = firstMatch(e.rules.DateOfBirth, lower)

	if e.extended {
		out.Set(models.FieldMedicalRecordNumber, strings.ToUpper(firstMatch(e.rules.MedicalRecordNumber, lower)))
		out.Set(models.FieldDiagnosis, titleCase(firstMatch(e.rules.Diagnosis, lower)))
	}
	return out
}

func (e *Extractor) extractNames(lower string, out *models.PatientFields) {
	for _, rule := range e.rules.Name {
		run, ok := rule.find(lower)
		if !ok {
			continue
		}
		tokens := nameTokens(run)
		if len(tokens) == 0 {
			continue
		}

		switch rule.Semantics {
		case FullName:
			if len(tokens) >= 2 {
				fillEmpty(&out.FirstName, tokens[0])
				fillEmpty(&out.LastName, strings.Join(tokens[1:], " "))
				return
			}
			fillEmpty(&out.FirstName, tokens[0])
		case GivenName:
			fillEmpty(&out.FirstName, strings.Join(tokens, " "))
		case FamilyName:
			fillEmpty(&out.LastName, strings.Join(tokens, " "))
		}

		if out.FirstName != "" && out.LastName != "" {
			return
		}
	}
}

func firstMatch(rules []ExtractionRule, lower string) string {
	for _, rule := range rules {
		if v, ok := rule.find(lower); ok {
			return v
		}
	}
	return ""
}

func fillEmpty(slot *string, value string) {
	if *slot == "" {
		*slot = value
	}
}

func nameTokens(run string) []string {
	caser := cases.Title(language.Und)
	var tokens []string
	split := strings.FieldsFunc(run, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	for _, f := range split {
		tokens = append(tokens, caser.String(f))
	}
	return tokens
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(strings.Join(strings.Fields(s), " "))
}
