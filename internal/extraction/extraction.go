// Package extraction infers an amount, a date and a short description from
// the text an OCR pass recovered from a photographed receipt.
//
// The result is a best-effort pre-fill meant for human review. Every field
// is optional and nothing here returns an error: a field that cannot be
// found is simply absent. All functions are pure and safe for concurrent use.
package extraction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result holds the fields inferred from one receipt. Nil means absent.
type Result struct {
	Amount      *decimal.Decimal
	Date        *time.Time
	Description *string
}

// Empty reports whether no field was found.
func (r Result) Empty() bool {
	return r.Amount == nil && r.Date == nil && r.Description == nil
}

// Extract normalizes raw OCR text and runs the three field extractors on it.
func Extract(raw string) Result {
	text := Normalize(raw)

	var res Result
	if amount, ok := ExtractAmount(text); ok {
		res.Amount = &amount
	}
	if date, ok := ExtractDate(text); ok {
		res.Date = &date
	}
	if desc, ok := ExtractDescription(text); ok {
		res.Description = &desc
	}
	return res
}
