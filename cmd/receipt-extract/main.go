// Command receipt-extract runs the field extraction engine on OCR text, or on
// an image recognized with Tesseract, and prints what it found. It is meant
// for tuning the engine against real receipts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/finance-tracker/internal/extraction"
	"github.com/zombor/finance-tracker/internal/scanning"
	"github.com/zombor/finance-tracker/internal/scanning/tesseract"
	"github.com/zombor/finance-tracker/internal/transaction"
)

type candidateOutput struct {
	Value    string `json:"value"`
	Text     string `json:"text"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

type output struct {
	Text       string              `json:"text,omitempty"`
	Normalized string              `json:"normalized"`
	Prefill    transaction.Prefill `json:"prefill"`
	Candidates []candidateOutput   `json:"candidates"`
}

func main() {
	fs := ff.NewFlagSet("receipt-extract")
	var (
		file    = fs.StringLong("file", "", "File with raw OCR text (default: stdin)")
		image   = fs.StringLong("image", "", "Receipt image or PDF to recognize with Tesseract instead of reading text")
		lang    = fs.StringLong("lang", tesseract.DefaultLanguage, "Tesseract languages, '+' separated")
		timeout = fs.DurationLong("timeout", 60*time.Second, "Recognition timeout for --image")
		showRaw = fs.BoolLong("show-text", "Include the raw text in the output")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("RECEIPT_EXTRACT")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	raw, err := readText(*file, *image, *lang, *timeout)
	if err != nil {
		slog.Error("Failed to read receipt", "error", err)
		os.Exit(1)
	}

	normalized := extraction.Normalize(raw)
	out := output{
		Normalized: normalized,
		Prefill:    transaction.NewPrefill(extraction.Extract(raw)),
		Candidates: []candidateOutput{},
	}
	if *showRaw {
		out.Text = raw
	}
	for _, c := range extraction.Candidates(normalized) {
		out.Candidates = append(out.Candidates, candidateOutput{
			Value:    c.Value.StringFixed(2),
			Text:     c.Text,
			Score:    c.Score,
			Position: c.Position,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		slog.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
}

// readText returns the receipt text from an image, a text file or stdin
func readText(file, image, lang string, timeout time.Duration) (string, error) {
	if image != "" {
		data, err := os.ReadFile(image)
		if err != nil {
			return "", fmt.Errorf("reading image: %w", err)
		}

		scanner := scanning.NewOCRScanner(tesseract.New(strings.Split(lang, "+")...))
		defer scanner.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		receipt, err := scanner.ScanReceipt(ctx, data, contentTypeFor(image))
		if err != nil {
			return "", err
		}
		return receipt.Text, nil
	}

	var r io.Reader = os.Stdin
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("opening text file: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	return string(data), nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic", ".heif":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
