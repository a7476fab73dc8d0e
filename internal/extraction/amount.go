package extraction

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	contextWindow  = 40
	markerDistance = 3
	currencyMarker = "R$"

	keywordScore = 3
	markerScore  = 2
	maxScore     = 1
)

// totalKeywords signal that a nearby number is the amount to pay.
var totalKeywords = []string{
	"total",
	"valor total",
	"total geral",
	"a pagar",
	"pagar",
	"pagamento",
	"subtotal",
}

// Groups: 1 marker, 2 integer part, 3 decimal separator, 4 cents.
// The leading class keeps a candidate from starting inside a digit run.
var reAmount = regexp.MustCompile(`(?:^|[^\d])(R\$[ \t]*)?(\d{1,3}(?:[. \t]\d{3})+|\d+)([.,])(\d{2})`)

// Candidate is one amount found in normalized text.
type Candidate struct {
	Value    decimal.Decimal
	Text     string // integer part and cents joined by "."
	Score    int
	Position int // character offset of the match
}

type match struct {
	value      decimal.Decimal
	text       string
	start, end int // byte offsets of the match, marker included
	marker     bool
}

// Candidates returns every amount candidate in text ranked best first.
// The text is expected to be normalized already.
func Candidates(text string) []Candidate {
	matches := findAmounts(text)
	if len(matches) == 0 {
		return nil
	}

	highest := matches[0].value
	for _, m := range matches[1:] {
		if m.value.GreaterThan(highest) {
			highest = m.value
		}
	}

	ranked := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, Candidate{
			Value:    m.value,
			Text:     m.text,
			Score:    score(text, m, highest),
			Position: runeOffset(text, m.start),
		})
	}
	slices.SortStableFunc(ranked, compareCandidates)
	return ranked
}

// ExtractAmount picks the most plausible total from normalized text.
func ExtractAmount(text string) (decimal.Decimal, bool) {
	ranked := Candidates(text)
	if len(ranked) == 0 {
		return decimal.Decimal{}, false
	}
	return ranked[0].Value, true
}

// compareCandidates orders by score, then by later position.
func compareCandidates(a, b Candidate) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(b.Position, a.Position)
}

func findAmounts(text string) []match {
	var out []match
	for _, idx := range reAmount.FindAllStringSubmatchIndex(text, -1) {
		end := idx[1]
		if followedByNumber(text, end) {
			continue
		}
		start := idx[4]
		if idx[2] >= 0 {
			start = idx[2]
		}

		intPart := stripGrouping(text[idx[4]:idx[5]])
		valueText := intPart + "." + text[idx[8]:idx[9]]
		value, err := decimal.NewFromString(valueText)
		if err != nil {
			continue
		}
		out = append(out, match{
			value:  value,
			text:   valueText,
			start:  start,
			end:    end,
			marker: idx[2] >= 0,
		})
	}
	return out
}

// followedByNumber reports whether the number continues past end, either
// with more digits or with another separator and digit.
func followedByNumber(text string, end int) bool {
	if end >= len(text) {
		return false
	}
	if isDigit(rune(text[end])) {
		return true
	}
	return isSeparator(rune(text[end])) && end+1 < len(text) && isDigit(rune(text[end+1]))
}

func stripGrouping(s string) string {
	return strings.Map(func(r rune) rune {
		if isDigit(r) {
			return r
		}
		return -1
	}, s)
}

func score(text string, m match, highest decimal.Decimal) int {
	total := 0
	window := strings.ToLower(surrounding(text, m.start, m.end, contextWindow))
	for _, kw := range totalKeywords {
		if strings.Contains(window, kw) {
			total += keywordScore
			break
		}
	}
	if m.marker || strings.Contains(surrounding(text, m.start, m.start, markerDistance), currencyMarker) {
		total += markerScore
	}
	if m.value.Equal(highest) {
		total += maxScore
	}
	return total
}

// surrounding returns text[start:end] widened by n characters on the left
// and, when end > start, n characters on the right.
func surrounding(text string, start, end, n int) string {
	lo := start
	for i := 0; i < n && lo > 0; i++ {
		lo = prevRuneStart(text, lo)
	}
	hi := end
	if end > start {
		for i := 0; i < n && hi < len(text); i++ {
			hi = nextRuneStart(text, hi)
		}
	}
	return text[lo:hi]
}
