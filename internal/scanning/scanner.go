package scanning

import "errors"

// ErrEmptyDocument is returned when a scanner is handed no data
var ErrEmptyDocument = errors.New("no document data provided")

// Document is the OCR output of a statement: every detected line, page by page,
// top to bottom, with page boundaries dropped
type Document struct {
	Lines []string `json:"lines"`
	Pages int      `json:"pages"`
}

// Scanner defines the interface for turning a statement file into text lines
type Scanner interface {
	// ScanStatement reads a PDF, image or text payload and returns its lines in reading order
	ScanStatement(data []byte, contentType string) (*Document, error)
	// Close closes the scanner and releases resources
	Close() error
}
