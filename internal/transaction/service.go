package transaction

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/finance-tracker/internal/scanning"
)

const (
	// DefaultScanTimeout bounds a single receipt recognition
	DefaultScanTimeout = 60 * time.Second

	NoticeScanSucceeded = "Recibo processado! Revise os dados antes de salvar."
	NoticeScanFailed    = "Erro ao processar recibo. Preencha os dados manualmente."
)

// IDGenerator generates unique IDs for transactions
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles transaction and receipt operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	scanTimeout time.Duration
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage, scanTimeout time.Duration) *Service {
	return NewServiceWithDeps(db, scanner, storage, scanTimeout, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, scanTimeout time.Duration, idGen IDGenerator, timeSrc TimeSource) *Service {
	if scanTimeout <= 0 {
		scanTimeout = DefaultScanTimeout
	}
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		scanTimeout: scanTimeout,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	reUnsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	reSpaces      = regexp.MustCompile(`\s+`)
	reUnsafeExt   = regexp.MustCompile(`[^a-z0-9.]`)
)

// sanitizeFilename cleans up phone-generated names: special characters are
// removed and the base is truncated to 50 characters
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := reUnsafeExt.ReplaceAllString(strings.ToLower(filepath.Ext(filename)), "")
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = reUnsafeChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(reSpaces.ReplaceAllString(base, " "))
	base = strings.ReplaceAll(base, " ", "_")

	const maxLen = 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "receipt"
	}
	if ext == "." {
		ext = ""
	}
	return base + ext
}

// CreateTransaction validates the input and stores a new transaction
func (s *Service) CreateTransaction(in Input) (*Transaction, error) {
	now := s.timeSource.Now()
	v, err := s.validate(in, now)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		ID:        s.idGenerator.Generate(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	v.applyTo(t)

	if err := s.db.SaveTransaction(t); err != nil {
		return nil, fmt.Errorf("saving transaction: %w", err)
	}
	slog.Info("Transaction created", "id", t.ID, "type", t.Type, "amount", t.Amount)
	return t, nil
}

// UpdateTransaction replaces the editable fields of an existing transaction.
// A receipt that is no longer referenced is removed from storage.
func (s *Service) UpdateTransaction(id string, in Input) (*Transaction, error) {
	t, err := s.db.GetTransaction(id)
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	now := s.timeSource.Now()
	v, err := s.validate(in, now)
	if err != nil {
		return nil, err
	}

	oldReceipt := t.ReceiptFile
	v.applyTo(t)
	t.UpdatedAt = now

	if err := s.db.SaveTransaction(t); err != nil {
		return nil, fmt.Errorf("saving transaction: %w", err)
	}
	if oldReceipt != "" && oldReceipt != t.ReceiptFile {
		s.deleteReceipt(oldReceipt)
	}
	return t, nil
}

// validate runs the field rules and checks that a referenced receipt exists
func (s *Service) validate(in Input, now time.Time) (validInput, error) {
	v, err := validate(in, now)
	if err != nil {
		return v, err
	}
	if v.ReceiptFile == "" {
		return v, nil
	}
	ok, err := s.storage.Exists(v.ReceiptFile)
	if err != nil {
		return v, fmt.Errorf("checking receipt file: %w", err)
	}
	if !ok {
		return v, ValidationErrors{{Field: "receipt_file", Message: "Recibo não encontrado"}}
	}
	return v, nil
}

func (v validInput) applyTo(t *Transaction) {
	t.Type = v.Type
	t.Amount = v.Amount
	t.Date = v.Date
	t.Description = v.Description
	t.Category = v.Category
	t.ReceiptFile = v.ReceiptFile
}

// GetTransaction retrieves a transaction by ID
func (s *Service) GetTransaction(id string) (*Transaction, error) {
	t, err := s.db.GetTransaction(id)
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns all transactions, newest date first. Ties are
// broken by creation time, newest first.
func (s *Service) ListTransactions() ([]*Transaction, error) {
	transactions, err := s.db.ListTransactions()
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	slices.SortFunc(transactions, func(a, b *Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return transactions, nil
}

// DeleteTransaction removes a transaction and its receipt file
func (s *Service) DeleteTransaction(id string) error {
	t, err := s.db.GetTransaction(id)
	if err != nil {
		return fmt.Errorf("getting transaction for deletion: %w", err)
	}

	if err := s.db.DeleteTransaction(id); err != nil {
		return fmt.Errorf("deleting transaction from database: %w", err)
	}
	if t.ReceiptFile != "" {
		s.deleteReceipt(t.ReceiptFile)
	}
	return nil
}

// deleteReceipt removes a stored file; failures only warn
func (s *Service) deleteReceipt(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to delete receipt file", "filename", name, "error", err)
	}
}

// Summary totals income and expenses over all transactions
func (s *Service) Summary() (*Summary, error) {
	transactions, err := s.db.ListTransactions()
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return summarize(transactions), nil
}

func summarize(transactions []*Transaction) *Summary {
	sum := &Summary{Count: len(transactions)}
	for _, t := range transactions {
		switch t.Type {
		case TypeIncome:
			sum.Income += t.Amount
		case TypeExpense:
			sum.Expenses += t.Amount
		}
	}
	sum.Balance = sum.Income - sum.Expenses
	return sum
}

// ScanReceipt stores an uploaded receipt, recognizes it and merges the
// extracted fields into the submitted form. Recognition failures are not
// errors: the caller gets the unchanged form and a notice to fill it in
// manually. Only a storage failure returns an error.
func (s *Service) ScanReceipt(ctx context.Context, filename string, data []byte, contentType string, form Input) (*ScanResult, error) {
	name, err := s.storage.Save(fmt.Sprintf("%s_%s", s.idGenerator.Generate(), sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	if form.Type == "" {
		form.Type = string(TypeExpense)
	}
	form.ReceiptFile = name
	result := &ScanResult{
		ReceiptFile: name,
		Notice:      NoticeScanFailed,
	}

	scanCtx, cancel := context.WithTimeout(ctx, s.scanTimeout)
	defer cancel()

	receiptData, err := s.scanner.ScanReceipt(scanCtx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"timed_out", errors.Is(err, context.DeadlineExceeded),
			"error", err,
		)
		result.Form = Prefill{}.MergeInto(form, s.timeSource.Now())
		return result, nil
	}

	result.Recognized = true
	result.Text = receiptData.Text
	result.Prefill = NewPrefill(receiptData.Fields)
	result.Form = result.Prefill.MergeInto(form, s.timeSource.Now())
	result.Notice = NoticeScanSucceeded

	slog.Info("Receipt scanned",
		"filename", name,
		"amount", result.Prefill.Amount != "",
		"date", result.Prefill.Date != "",
		"description", result.Prefill.Description != "",
	)
	return result, nil
}

// GetReceiptFile returns a stored receipt and its sniffed content type
func (s *Service) GetReceiptFile(name string) ([]byte, string, error) {
	data, err := s.storage.Get(name)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}
	return data, http.DetectContentType(data), nil
}
