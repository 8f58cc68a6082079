// Package extract provides the text extraction capability used by the
// document processor.
//
// Extraction is modeled as an opaque capability: bytes plus a type hint
// in, extracted text out. Implementations never return an error; anything
// unextractable yields an empty string and the processor records the
// document as failed until its content changes.
package extract

import (
	"strings"
	"unicode/utf8"
)

// Extractor maps raw document bytes to searchable text.
type Extractor interface {
	// Extract returns the extracted text, or empty string when no text
	// can be extracted. It never panics and never fails.
	Extract(data []byte, typeHint string) string
}

// textExtensions are the type hints handled as plain text.
var textExtensions = map[string]struct{}{
	".txt":  {},
	".csv":  {},
	".md":   {},
	".log":  {},
	".json": {},
	".yaml": {},
	".yml":  {},
	".xml":  {},
	".html": {},
	".htm":  {},
}

// PlainText extracts text from plain-text document families. Binary
// formats (pdf, images, office documents) are outside its capability and
// yield empty strings.
type PlainText struct{}

// NewPlainText creates the plain-text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Extract implements Extractor.
func (e *PlainText) Extract(data []byte, typeHint string) string {
	if len(data) == 0 {
		return ""
	}

	hint := strings.ToLower(typeHint)
	if !strings.HasPrefix(hint, ".") {
		hint = "." + hint
	}
	if _, ok := textExtensions[hint]; !ok {
		return ""
	}

	if isBinaryContent(data) || !utf8.Valid(data) {
		return ""
	}

	return strings.TrimSpace(string(data))
}

var _ Extractor = (*PlainText)(nil)

// isBinaryContent checks the first 512 bytes for null bytes.
func isBinaryContent(data []byte) bool {
	checkLen := 512
	if len(data) < checkLen {
		checkLen = len(data)
	}
	for i := 0; i < checkLen; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}
