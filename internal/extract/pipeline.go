package extract

// Input is the ordered OCR output of a whole document.
// Lines are concatenated across pages; page boundaries are not kept.
type Input struct {
	Lines []string
	Pages int
}

// Stats counts what happened to each input line
type Stats struct {
	Lines      int               `json:"lines"`
	Candidates int               `json:"candidates"`
	Duplicates int               `json:"duplicates"`
	Rejected   map[string]int `json:"rejected"` // keyed by Rejection.String()
}

// Result is the pipeline output for one document
type Result struct {
	Transactions   []Transaction `json:"transactions"`
	PagesProcessed int           `json:"pages_processed"`
	Stats          Stats         `json:"stats"`
}

// Pipeline runs every line through the Extractor and deduplicates the candidates.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	extractor *Extractor
}

// NewPipeline creates a Pipeline around the given Extractor
func NewPipeline(extractor *Extractor) *Pipeline {
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &Pipeline{extractor: extractor}
}

// Run extracts transactions in input order. It never reorders, sorts or groups.
func (p *Pipeline) Run(in Input) Result {
	stats := Stats{
		Lines:    len(in.Lines),
		Rejected: make(map[string]int),
	}

	candidates := make([]Transaction, 0)
	for _, line := range in.Lines {
		txn, reason := p.extractor.Classify(line)
		if reason != Accepted {
			stats.Rejected[reason.String()]++
			continue
		}
		candidates = append(candidates, txn)
	}

	unique := Dedupe(candidates)
	stats.Candidates = len(candidates)
	stats.Duplicates = len(candidates) - len(unique)

	return Result{
		Transactions:   unique,
		PagesProcessed: in.Pages,
		Stats:          stats,
	}
}
