package scanning

import (
	"context"

	"github.com/zombor/finance-tracker/internal/extraction"
)

// ReceiptData contains the text recognized on a receipt and the fields
// inferred from it
type ReceiptData struct {
	Text   string
	Fields extraction.Result
}

// Recognizer turns a PNG image into the text printed on it
type Recognizer interface {
	// Recognize returns the flattened transcript of the image
	Recognize(ctx context.Context, png []byte) (string, error)
	// Close releases the backend's resources
	Close() error
}

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt recognizes a receipt image/PDF and extracts its fields
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*ReceiptData, error)
	// Close closes the scanner and releases resources
	Close() error
}
