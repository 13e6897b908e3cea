package scanning

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
)

// PDFText implements the Scanner interface by reading the embedded text layer of
// digitally generated PDF statements. Scanned PDFs have no text layer and need a vision scanner.
type PDFText struct{}

// NewPDFText creates a new PDFText Scanner instance
func NewPDFText() *PDFText {
	return &PDFText{}
}

// ScanStatement extracts plain text page by page
func (p *PDFText) ScanStatement(data []byte, contentType string) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	if mimeType := normalizeMimeType(contentType); mimeType != "application/pdf" {
		return nil, fmt.Errorf("pdftext scanner only reads PDFs, got %s", mimeType)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	doc := &Document{Lines: make([]string, 0), Pages: r.NumPage()}
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			slog.Warn("Skipping empty PDF page", "page", n)
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", n, err)
		}
		doc.Lines = append(doc.Lines, normalizeLines(splitLines(text))...)
	}

	return doc, nil
}

// Close is a no-op
func (p *PDFText) Close() error {
	return nil
}
