package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// R$, RS or R5 at a word start, not followed by a letter
	reCurrency = regexp.MustCompile(`(?i)\bR[$S5]([^\p{L}]|$)`)

	// digit, stray spaces, decimal mark, stray spaces, two digits
	reDecimalSpacing = regexp.MustCompile(`(\d)[ \t]*([,.])[ \t]*(\d{2})`)
)

// confusables maps letters that OCR commonly reads in place of digits.
var confusables = map[rune]rune{
	'O': '0', 'o': '0',
	'S': '5', 's': '5',
	'B': '8', 'b': '8',
	'I': '1', 'l': '1',
}

// Normalize repairs known OCR artifacts so the amount and date patterns
// match reliably. The substitutions run once, in order: currency marker,
// decimal spacing, digit confusion. It never fails; empty input yields
// empty output.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	s := reCurrency.ReplaceAllString(raw, "R$$${1}")
	s = reDecimalSpacing.ReplaceAllString(s, "${1}${2}${3}")
	return repairDigitConfusion(s)
}

// repairDigitConfusion replaces a single confusable letter sitting inside a
// number. Context is read from the input, never from already replaced
// characters, so runs of two or more letters stay untouched.
func repairDigitConfusion(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		if d, ok := confusables[r]; ok && numericBefore(runes, i) && numericAfter(runes, i) {
			b.WriteRune(d)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func numericBefore(runes []rune, i int) bool {
	if i < 1 {
		return false
	}
	if isDigit(runes[i-1]) {
		return true
	}
	return i >= 2 && isSeparator(runes[i-1]) && isDigit(runes[i-2])
}

func numericAfter(runes []rune, i int) bool {
	if i+1 >= len(runes) {
		return false
	}
	if isDigit(runes[i+1]) {
		return true
	}
	return i+2 < len(runes) && isSeparator(runes[i+1]) && isDigit(runes[i+2])
}

func isDigit(r rune) bool     { return r >= '0' && r <= '9' }
func isSeparator(r rune) bool { return r == ',' || r == '.' }

// runeOffset converts a byte offset in s to a character offset.
func runeOffset(s string, byteOff int) int {
	return utf8.RuneCountInString(s[:byteOff])
}

func prevRuneStart(s string, i int) int {
	_, size := utf8.DecodeLastRuneInString(s[:i])
	return i - size
}

func nextRuneStart(s string, i int) int {
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}
