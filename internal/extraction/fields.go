package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	minDescriptionLen = 5
	maxDescriptionLen = 100
)

// day, month, four digit year
var reDate = regexp.MustCompile(`(\d{2})[/-](\d{2})[/-](\d{4})`)

// ExtractDate returns the first dd/mm/yyyy (or dd-mm-yyyy) date in text.
// Digits that do not form a real calendar date, such as 31/02/2024, are
// reported as absent.
func ExtractDate(text string) (time.Time, bool) {
	m := reDate.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// ExtractDescription returns the first line longer than five characters,
// trimmed and cut to at most 100 characters.
func ExtractDescription(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= minDescriptionLen {
			continue
		}
		return truncate(line, maxDescriptionLen), true
	}
	return "", false
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
