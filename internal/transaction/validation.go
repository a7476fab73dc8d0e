package transaction

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxDescriptionLength = 500
	maxCategoryLength    = 50
)

var maxAmount = decimal.RequireFromString("999999999.99")

// validInput is an Input that passed validation, converted to ledger types
type validInput struct {
	Type        Type
	Amount      int64
	Date        time.Time
	Description string
	Category    string
	ReceiptFile string
}

// validate checks every field of in and collects all failures. today is the
// caller's current date; dates after it are rejected.
func validate(in Input, today time.Time) (validInput, error) {
	var (
		out  validInput
		errs ValidationErrors
	)
	fail := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	switch Type(strings.TrimSpace(in.Type)) {
	case TypeIncome:
		out.Type = TypeIncome
	case TypeExpense:
		out.Type = TypeExpense
	default:
		fail("type", "Tipo deve ser receita ou despesa")
	}

	if amount, msg := parseAmount(in.Amount); msg != "" {
		fail("amount", msg)
	} else {
		out.Amount = amount.Shift(2).IntPart()
	}

	if date, msg := parseDate(in.Date, today); msg != "" {
		fail("date", msg)
	} else {
		out.Date = date
	}

	out.Description = strings.TrimSpace(in.Description)
	switch {
	case out.Description == "":
		fail("description", "Descrição não pode estar vazia")
	case utf8.RuneCountInString(out.Description) > maxDescriptionLength:
		fail("description", "Descrição muito longa (máximo 500 caracteres)")
	}

	out.Category = strings.TrimSpace(in.Category)
	if utf8.RuneCountInString(out.Category) > maxCategoryLength {
		fail("category", "Categoria muito longa")
	}

	out.ReceiptFile = strings.TrimSpace(in.ReceiptFile)
	if out.ReceiptFile != "" && checkName(out.ReceiptFile) != nil {
		fail("receipt_file", "Arquivo de recibo inválido")
	}

	if len(errs) > 0 {
		return validInput{}, errs
	}
	return out, nil
}

// parseAmount accepts "45.90" as well as the Brazilian "45,90"
func parseAmount(s string) (decimal.Decimal, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, "Valor é obrigatório"
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, "Valor deve ser um número"
	}
	switch {
	case !amount.IsPositive():
		return decimal.Zero, "Valor deve ser positivo"
	case amount.GreaterThan(maxAmount):
		return decimal.Zero, "Valor muito alto"
	case !amount.Equal(amount.Truncate(2)):
		return decimal.Zero, "Valor deve ter no máximo 2 casas decimais"
	}
	return amount, ""
}

func parseDate(s string, today time.Time) (time.Time, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "Data é obrigatória"
	}
	date, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, "Data inválida"
	}
	if date.After(dateOnly(today)) {
		return time.Time{}, "Data não pode ser futura"
	}
	return date, ""
}

// dateOnly returns t's calendar date at midnight UTC
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
