package scanning

import (
	"strings"
)

// transcribePrompt is the shared prompt used by the LLM recognizers. They
// stand in for an OCR engine, so the model must copy text, not interpret it.
const transcribePrompt = `You are an OCR engine. Transcribe every piece of text printed on this receipt image exactly as it appears.

Rules:
- Keep the original language (usually Portuguese) and the original spelling, accents, numbers and currency symbols.
- Keep one printed line per output line, top to bottom.
- Do not translate, summarize, correct, reorder or add anything.
- Do not use markdown, code blocks or commentary. Output only the transcribed text.
- If the image contains no readable text, output nothing.`

// cleanTranscript removes markdown code fences a model may wrap around its
// answer and trims surrounding whitespace. Line structure is preserved.
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence line, including any language tag
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimLeft(text, "`")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
