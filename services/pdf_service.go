package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractionResult contains the outcome of PDF text extraction.
type ExtractionResult struct {
	Text      string
	Pages     int
	WordCount int
}

// ExtractPDFText pulls plain text out of a PDF on disk. Extraction failure
// is non-fatal to the upload flow; the document simply has no text until a
// later retry.
func ExtractPDFText(path string) (*ExtractionResult, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return nil, fmt.Errorf("no extractable text in %d pages", pages)
	}

	return &ExtractionResult{
		Text:      text,
		Pages:     pages,
		WordCount: len(strings.Fields(text)),
	}, nil
}
