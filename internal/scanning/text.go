package scanning

import "strings"

// Text implements the Scanner interface for statements that were already OCR'd
// to plain text. Form feeds separate pages.
type Text struct{}

// NewText creates a new Text Scanner instance
func NewText() *Text {
	return &Text{}
}

// ScanStatement splits the payload into lines; each form feed starts a new page
func (t *Text) ScanStatement(data []byte, contentType string) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	// pdftotext ends every page, including the last, with a form feed
	text := strings.TrimRight(string(data), "\f\r\n")

	doc := &Document{Lines: make([]string, 0), Pages: 1}
	for _, line := range splitLines(text) {
		for i, part := range strings.Split(line, "\f") {
			if i > 0 {
				doc.Pages++
			}
			doc.Lines = append(doc.Lines, normalizeLines([]string{part})...)
		}
	}
	return doc, nil
}

// Close is a no-op
func (t *Text) Close() error {
	return nil
}
