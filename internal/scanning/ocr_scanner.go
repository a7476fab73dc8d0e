package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zombor/finance-tracker/internal/extraction"
)

// OCRScanner implements Scanner by recognizing the receipt's text with a
// Recognizer and running the extraction engine on the transcript
type OCRScanner struct {
	recognizer Recognizer
}

// NewOCRScanner creates a new OCRScanner around a recognition backend
func NewOCRScanner(recognizer Recognizer) *OCRScanner {
	return &OCRScanner{recognizer: recognizer}
}

// ScanReceipt converts the upload to PNG, recognizes it and extracts fields.
// Recognition errors are returned as-is so the caller can fall back to an
// empty pre-fill; the extraction engine only runs on a successful transcript.
func (s *OCRScanner) ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*ReceiptData, error) {
	png, err := toPNG(imageData, contentType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := s.recognizer.Recognize(ctx, png)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	fields := extraction.Extract(text)
	slog.Debug("Receipt recognized",
		"duration_ms", time.Since(start).Milliseconds(),
		"text_bytes", len(text),
		"amount", fields.Amount != nil,
		"date", fields.Date != nil,
		"description", fields.Description != nil,
	)

	return &ReceiptData{Text: text, Fields: fields}, nil
}

// Close closes the underlying recognizer
func (s *OCRScanner) Close() error {
	return s.recognizer.Close()
}
