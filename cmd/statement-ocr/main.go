package main

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/statement-ocr/internal/extract"
	"github.com/zombor/statement-ocr/internal/scanning"
	"github.com/zombor/statement-ocr/internal/statement"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("statement-ocr")
	var (
		scannerType    = fs.StringLong("scanner", "gemini", "Scanner type: 'text', 'pdftext', 'gemini' or 'ollama' (text files always use 'text')")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama vision model name (e.g., llava, qwen2-vl)")
		amountStrategy = fs.StringLong("amount-strategy", "last", "Which amount on a line is the transaction amount: 'last' or 'first'")
		dbPath         = fs.StringLong("db", "", "Database file path; when set, runs and documents are kept")
		storagePath    = fs.StringLong("storage", "./statements", "Storage directory path for kept documents")
		listRuns       = fs.BoolLong("list", "List stored runs")
		showRun        = fs.StringLong("show", "", "Print a stored run by ID")
		deleteRun      = fs.StringLong("delete", "", "Delete a stored run and its document by ID")
		logLevel       = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("STATEMENT_OCR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	selector, err := extract.AmountSelectorByName(*amountStrategy)
	if err != nil {
		slog.Error("Invalid amount strategy", "error", err)
		os.Exit(1)
	}
	pipeline := extract.NewPipeline(extract.NewExtractorWithSelector(selector))

	// Run management only needs the database and storage
	if *listRuns || *showRun != "" || *deleteRun != "" {
		if *dbPath == "" {
			slog.Error("--db is required to manage stored runs")
			os.Exit(1)
		}
		service, closeDB := openService(*dbPath, *storagePath, scanning.NewText(), pipeline)
		defer closeDB()
		if err := manageRuns(service, *listRuns, *showRun, *deleteRun); err != nil {
			slog.Error("Failed to manage runs", "error", err)
			closeDB()
			os.Exit(1)
		}
		return
	}

	args := fs.GetArgs()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: expected exactly one statement file, got %d\n", len(args))
		os.Exit(1)
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read statement", "path", path, "error", err)
		os.Exit(1)
	}
	contentType := detectContentType(path, data)

	// Text has already been through OCR; a vision model would only add noise
	if contentType == "text/plain" {
		*scannerType = "text"
	}

	scanner, err := newScanner(*scannerType, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel)
	if err != nil {
		slog.Error("Failed to initialize scanner", "type", *scannerType, "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	slog.Info("Scanning statement", "path", path, "content_type", contentType, "scanner", *scannerType)

	var run *statement.Run
	if *dbPath != "" {
		service, closeDB := openService(*dbPath, *storagePath, scanner, pipeline)
		defer closeDB()
		run, err = service.ProcessStatement(filepath.Base(path), data, contentType)
		if err != nil {
			slog.Error("Failed to save run", "error", err)
			os.Exit(1)
		}
	} else {
		run = statement.NewService(nil, scanner, nil, pipeline).Extract(filepath.Base(path), data, contentType)
	}

	if err := writeJSON(run); err != nil {
		slog.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
	if run.Failed() {
		os.Exit(2)
	}
}

// newScanner builds the OCR collaborator selected on the command line
func newScanner(scannerType, geminiKey, geminiModel, ollamaURL, ollamaModel string) (scanning.Scanner, error) {
	switch scannerType {
	case "text":
		return scanning.NewText(), nil
	case "pdftext":
		return scanning.NewPDFText(), nil
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
		}
		slog.Info("Initializing Gemini scanner...", "model", geminiModel)
		return scanning.NewGemini(apiKey, geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", ollamaURL, "model", ollamaModel)
		return scanning.NewOllama(ollamaURL, ollamaModel)
	default:
		return nil, fmt.Errorf("invalid scanner type %q (valid: text, pdftext, gemini, ollama)", scannerType)
	}
}

// openService wires the bbolt database and local storage into a Service
func openService(dbPath, storagePath string, scanner scanning.Scanner, pipeline *extract.Pipeline) (*statement.Service, func()) {
	slog.Debug("Initializing database...", "path", dbPath)
	db, err := statement.NewBoltDB(dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	store, err := statement.NewLocalStorage(storagePath)
	if err != nil {
		db.Close()
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	closed := false
	return statement.NewService(db, scanner, store, pipeline), func() {
		if !closed {
			closed = true
			db.Close()
		}
	}
}

// manageRuns handles --list, --show and --delete
func manageRuns(service *statement.Service, list bool, showID, deleteID string) error {
	switch {
	case list:
		runs, err := service.ListRuns()
		if err != nil {
			return err
		}
		for _, run := range runs {
			status := "ok"
			if run.Failed() {
				status = "error: " + run.Error
			}
			fmt.Printf("%s\t%s\t%s\t%d pages\t%d transactions\t%s\n",
				run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Filename,
				run.PagesProcessed, len(run.Transactions), status)
		}
		return nil
	case showID != "":
		run, err := service.GetRun(showID)
		if err != nil {
			return err
		}
		return writeJSON(run)
	default:
		if err := service.DeleteRun(deleteID); err != nil {
			return err
		}
		slog.Info("Deleted run", "id", deleteID)
		return nil
	}
}

// detectContentType maps a file extension to a MIME type, sniffing the data when the extension is unknown
func detectContentType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".txt":
		return "text/plain"
	}

	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i != -1 {
		contentType = contentType[:i]
	}
	return contentType
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
