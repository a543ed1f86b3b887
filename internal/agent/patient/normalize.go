package patient

import (
	"strings"
	"unicode"
)

// Clean 规范化 OCR 或解析得到的原始文本
// Runes outside letters, digits, marks, '_', whitespace and "-/.:,()&" become spaces,
// then whitespace runs collapse to one space and the result is trimmed.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	mapped := strings.Map(func(r rune) rune {
		if keepRune(r) {
			return r
		}
		return ' '
	}, raw)
	return strings.Join(strings.Fields(mapped), " ")
}

func keepRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r) || unicode.IsMark(r) || unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '_', '-', '/', '.', ':', ',', '(', ')', '&':
		return true
	}
	return false
}
