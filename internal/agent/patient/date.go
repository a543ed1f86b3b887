package patient

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// twoDigitYearPivot: two-digit years above it are 19xx, the rest 20xx.
const twoDigitYearPivot = 50

// ErrInvalidDate is returned by ValidateDate for anything that is not a real calendar date.
var ErrInvalidDate = errors.New("invalid date of birth")

// NormalizeDate 宽松的日期规范化, 用于提取路径
// Day-first tokens become MM/DD/YYYY, year-first tokens become YYYY/MM/DD.
// Anything that is not three all-digit parts is returned unchanged. No range checks.
func NormalizeDate(token string) string {
	if token == "" {
		return token
	}
	unified := strings.NewReplacer("-", "/", ".", "/").Replace(token)
	parts := strings.Split(unified, "/")
	if len(parts) != 3 {
		return token
	}
	for _, p := range parts {
		if !allDigits(p) {
			return token
		}
	}

	if len(parts[0]) == 4 {
		return fmt.Sprintf("%s/%s/%s", parts[0], pad2(parts[1]), pad2(parts[2]))
	}

	month, day, year := parts[0], parts[1], parts[2]
	if len(year) == 2 {
		year = expandYear(year)
	}
	return fmt.Sprintf("%s/%s/%s", pad2(month), pad2(day), year)
}

// 整串匹配, 避免 2005-06-15 被当作 05/06/(20)15
var strictDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`),
	regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2})$`),
	regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`),
}

// ValidateDate 严格的日期校验, 只用于用户提交的数据
// Accepts MM/DD/YYYY, MM/DD/YY and YYYY/MM/DD with '/' or '-' and returns MM/DD/YYYY.
func ValidateDate(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	for _, re := range strictDatePatterns {
		m := re.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		var month, day, year string
		switch {
		case len(m[1]) == 4:
			year, month, day = m[1], m[2], m[3]
		case len(m[3]) == 4:
			month, day, year = m[1], m[2], m[3]
		default:
			month, day, year = m[1], m[2], expandYear(m[3])
		}

		mi, _ := strconv.Atoi(month)
		di, _ := strconv.Atoi(day)
		yi, _ := strconv.Atoi(year)
		if mi < 1 || mi > 12 || di < 1 || di > 31 {
			continue
		}
		if !isCalendarDate(yi, mi, di) {
			return "", fmt.Errorf("%w: %s", ErrInvalidDate, token)
		}
		return fmt.Sprintf("%02d/%02d/%04d", mi, di, yi), nil
	}
	return "", fmt.Errorf("%w: %q is not a recognized date", ErrInvalidDate, token)
}

func isCalendarDate(year, month, day int) bool {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

func expandYear(yy string) string {
	n, err := strconv.Atoi(yy)
	if err != nil {
		return yy
	}
	if n > twoDigitYearPivot {
		return "19" + yy
	}
	return "20" + yy
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
