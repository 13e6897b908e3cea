package statement

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/statement-ocr/internal/extract"
	"github.com/zombor/statement-ocr/internal/scanning"
)

// IDGenerator generates unique IDs for runs
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service scans statements, extracts transactions and keeps a history of runs
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	pipeline    *extract.Pipeline
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage, pipeline *extract.Pipeline) *Service {
	return NewServiceWithDeps(db, scanner, storage, pipeline, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, pipeline *extract.Pipeline, idGen IDGenerator, timeSrc TimeSource) *Service {
	if pipeline == nil {
		pipeline = extract.NewPipeline(nil)
	}
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		pipeline:    pipeline,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	filenameJunk   = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaces = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filenameJunk.ReplaceAllString(filepath.Ext(filename), ""))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = filenameJunk.ReplaceAllString(base, "")
	base = filenameSpaces.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "statement"
	}
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// Extract scans a statement and runs the extraction pipeline over its lines.
// It never fails: scanning problems are reported in Run.Error with no transactions.
func (s *Service) Extract(filename string, data []byte, contentType string) *Run {
	run := &Run{
		ID:           s.idGenerator.Generate(),
		Filename:     filename,
		ContentType:  contentType,
		Transactions: make([]extract.Transaction, 0),
		CreatedAt:    s.timeSource.Now(),
	}

	if len(data) == 0 {
		run.Error = scanning.ErrEmptyDocument.Error()
		return run
	}

	doc, err := s.scanner.ScanStatement(data, contentType)
	if err != nil {
		slog.Error("Failed to scan statement",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		run.Error = err.Error()
		return run
	}

	result := s.pipeline.Run(extract.Input{Lines: doc.Lines, Pages: doc.Pages})
	run.Transactions = result.Transactions
	run.PagesProcessed = result.PagesProcessed
	run.Stats = &result.Stats

	slog.Info("Extracted transactions",
		"filename", filename,
		"pages", result.PagesProcessed,
		"lines", result.Stats.Lines,
		"transactions", len(result.Transactions),
		"duplicates", result.Stats.Duplicates,
	)
	slog.Debug("Rejected lines", "filename", filename, "reasons", result.Stats.Rejected)

	return run
}

// ProcessStatement extracts a statement, stores the document and saves the run.
// Extraction failures are recorded on the run; only storage and database errors are returned.
func (s *Service) ProcessStatement(filename string, data []byte, contentType string) (*Run, error) {
	run := s.Extract(filename, data, contentType)

	if len(data) > 0 {
		savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", run.ID, sanitizeFilename(filename)), data)
		if err != nil {
			return nil, fmt.Errorf("saving file: %w", err)
		}
		run.DocumentPath = savedPath
	}

	if err := s.db.SaveRun(run); err != nil {
		// Clean up file if database save fails
		if run.DocumentPath != "" {
			if delErr := s.storage.Delete(run.DocumentPath); delErr != nil {
				slog.Warn("Failed to delete file", "filename", run.DocumentPath, "error", delErr)
			}
		}
		return nil, fmt.Errorf("saving run to database: %w", err)
	}

	return run, nil
}

// GetRun retrieves a run by ID
func (s *Service) GetRun(id string) (*Run, error) {
	run, err := s.db.GetRun(id)
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return run, nil
}

// ListRuns returns all runs, oldest first
func (s *Service) ListRuns() ([]*Run, error) {
	runs, err := s.db.ListRuns()
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.Before(runs[j].CreatedAt)
	})
	return runs, nil
}

// DeleteRun removes a run and its stored document
func (s *Service) DeleteRun(id string) error {
	run, err := s.db.GetRun(id)
	if err != nil {
		return fmt.Errorf("getting run for deletion: %w", err)
	}

	if run.DocumentPath != "" {
		if err := s.storage.Delete(run.DocumentPath); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete file", "filename", run.DocumentPath, "error", err)
		}
	}

	if err := s.db.DeleteRun(id); err != nil {
		return fmt.Errorf("deleting run from database: %w", err)
	}
	return nil
}

// ErrNoDocument is returned when a run was stored without its source document
var ErrNoDocument = errors.New("run has no stored document")

// GetRunDocument retrieves the source document for a run
func (s *Service) GetRunDocument(id string) ([]byte, string, error) {
	run, err := s.db.GetRun(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting run: %w", err)
	}
	if run.DocumentPath == "" {
		return nil, "", ErrNoDocument
	}

	data, err := s.storage.Get(run.DocumentPath)
	if err != nil {
		return nil, "", fmt.Errorf("getting run document: %w", err)
	}

	return data, run.ContentType, nil
}
