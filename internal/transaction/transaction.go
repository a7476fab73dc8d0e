package transaction

import "time"

// Type is the direction of a transaction
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// dateLayout is the wire format of transaction dates
const dateLayout = "2006-01-02"

// Categories are the suggested categories offered by the form
var Categories = []string{
	"Alimentação",
	"Transporte",
	"Moradia",
	"Saúde",
	"Educação",
	"Lazer",
	"Compras",
	"Salário",
	"Investimentos",
	"Outros",
}

// Transaction represents an income or expense record
type Transaction struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Amount      int64     `json:"amount"` // Amount in cents
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	ReceiptFile string    `json:"receipt_file,omitempty"` // Stored receipt image, if any
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input is the editable form state of a transaction. Amount is a decimal
// string such as "45.90" and Date is YYYY-MM-DD.
type Input struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	ReceiptFile string `json:"receipt_file,omitempty"`
}

// ScanResult is returned after a receipt upload. Form is the submitted form
// state with the recognized fields merged in.
type ScanResult struct {
	ReceiptFile string  `json:"receipt_file"`
	Recognized  bool    `json:"recognized"`
	Text        string  `json:"text,omitempty"`
	Prefill     Prefill `json:"prefill"`
	Form        Input   `json:"form"`
	Notice      string  `json:"notice"`
}

// Summary aggregates all transactions. Values are in cents.
type Summary struct {
	Income   int64 `json:"income"`
	Expenses int64 `json:"expenses"`
	Balance  int64 `json:"balance"`
	Count    int   `json:"count"`
}
