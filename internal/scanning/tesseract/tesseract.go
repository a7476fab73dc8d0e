// Package tesseract provides a scanning.Recognizer backed by the local
// Tesseract OCR engine through gosseract. It lives in its own package so the
// rest of the scanning code builds without libtesseract.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the traineddata used when none is configured
const DefaultLanguage = "por"

// Recognizer runs Tesseract on a PNG image
type Recognizer struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// New creates a Tesseract Recognizer for the given languages
func New(languages ...string) *Recognizer {
	var langs []string
	for _, l := range languages {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		langs = []string{DefaultLanguage}
	}
	return &Recognizer{languages: langs, clientFactory: gosseract.NewClient}
}

type recognition struct {
	text string
	err  error
}

// Recognize returns the text Tesseract reads from the image. gosseract has
// no cancellation, so a cancelled context abandons the running call.
func (r *Recognizer) Recognize(ctx context.Context, png []byte) (string, error) {
	done := make(chan recognition, 1)
	go func() {
		text, err := r.recognize(png)
		done <- recognition{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}

func (r *Recognizer) recognize(png []byte) (string, error) {
	c := r.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close is a no-op; clients are created per call
func (r *Recognizer) Close() error {
	return nil
}
