package transaction

import (
	"time"

	"github.com/zombor/finance-tracker/internal/extraction"
)

// Prefill is an extraction result rendered as form values. Absent fields
// are empty and omitted from JSON.
type Prefill struct {
	Amount      string `json:"amount,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewPrefill renders the fields the engine found
func NewPrefill(r extraction.Result) Prefill {
	var p Prefill
	if r.Amount != nil {
		p.Amount = r.Amount.StringFixed(2)
	}
	if r.Date != nil {
		p.Date = r.Date.Format(dateLayout)
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	return p
}

// IsEmpty reports whether no field was found
func (p Prefill) IsEmpty() bool {
	return p.Amount == "" && p.Date == "" && p.Description == ""
}

// MergeInto overwrites the form fields that are present in p and keeps the
// rest. A form left without a date gets today's.
func (p Prefill) MergeInto(form Input, today time.Time) Input {
	if p.Amount != "" {
		form.Amount = p.Amount
	}
	if p.Date != "" {
		form.Date = p.Date
	}
	if p.Description != "" {
		form.Description = p.Description
	}
	if form.Date == "" {
		form.Date = today.Format(dateLayout)
	}
	return form
}
