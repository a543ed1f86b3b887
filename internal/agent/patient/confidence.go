package patient

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
)

const (
	nameBaseScore  = 0.6
	dateBaseScore  = 0.7
	otherBaseScore = 0.7

	nameKeywordBoost = 0.1
	nameTitleBoost   = 0.1
	nameLengthBoost  = 0.1
	dateFormatBoost  = 0.2
	dateKeywordBoost = 0.05
)

var (
	nameKeywords = []string{"patient", "name", "client", "individual"}
	dateKeywords = []string{"birth", "born", "dob"}

	canonicalDate = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// Scorer 启发式置信度评分
// Every configured field gets a score; unresolved fields score 0.
type Scorer struct {
	fields []models.Field
}

func NewScorer(fields []models.Field) *Scorer {
	if len(fields) == 0 {
		fields = models.CoreFields
	}
	return &Scorer{fields: append([]models.Field{}, fields...)}
}

func (s *Scorer) Score(p models.PatientFields, text string) map[models.Field]float64 {
	lower := strings.ToLower(text)
	scores := make(map[models.Field]float64, len(s.fields))
	for _, f := range s.fields {
		if !p.Has(f) {
			scores[f] = 0
			continue
		}
		value := p.Get(f)
		switch f {
		case models.FieldFirstName, models.FieldLastName:
			scores[f] = nameScore(value, lower)
		case models.FieldDateOfBirth:
			scores[f] = dateScore(value, lower)
		default:
			scores[f] = clamp(otherBaseScore)
		}
	}
	return scores
}

func nameScore(value, lower string) float64 {
	score := nameBaseScore + nameKeywordBoost*float64(countKeywords(lower, nameKeywords))
	if isTitleCased(value) {
		score += nameTitleBoost
	}
	if n := utf8.RuneCountInString(value); n >= 2 && n <= 30 {
		score += nameLengthBoost
	}
	return clamp(score)
}

func dateScore(value, lower string) float64 {
	score := dateBaseScore
	if canonicalDate.MatchString(value) {
		score += dateFormatBoost
	}
	score += dateKeywordBoost * float64(countKeywords(lower, dateKeywords))
	return clamp(score)
}

func countKeywords(lower string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

// isTitleCased: every cased run starts with an upper-case letter followed
// only by lower-case letters, and at least one cased letter exists.
func isTitleCased(s string) bool {
	cased := false
	prevCased := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased = true
			cased = true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased = true
			cased = true
		default:
			prevCased = false
		}
	}
	return cased
}

func clamp(v float64) float64 {
	v = math.Round(v*1e4) / 1e4
	return math.Max(0, math.Min(1, v))
}
