package statement

import (
	"time"

	"github.com/zombor/statement-ocr/internal/extract"
)

// Run is the envelope for one processed statement: the extracted transactions,
// how many pages were scanned, and the error that stopped extraction, if any
type Run struct {
	ID             string                `json:"id"`
	Filename       string                `json:"filename"`
	ContentType    string                `json:"content_type"`
	DocumentPath   string                `json:"document_path,omitempty"` // path in Storage, empty when not persisted
	Transactions   []extract.Transaction `json:"transactions"`
	PagesProcessed int                   `json:"pages_processed"`
	Error          string                `json:"error,omitempty"`
	Stats          *extract.Stats        `json:"stats,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// Failed reports whether extraction stopped on an error
func (r *Run) Failed() bool {
	return r.Error != ""
}
