package extract

import (
	"regexp"
	"strings"
	"time"
)

// datePattern pairs a regular shape with the layouts its first match is parsed under.
// Layouts are tried in order; the first that yields a valid calendar date wins.
type datePattern struct {
	name    string
	re      *regexp.Regexp
	clean   func(match string) string
	layouts []string
}

// defaultDatePatterns is the fixed priority order. First match wins, not longest.
// Day-first numeric shapes fall back to month-first only when day-first is not a real date.
var defaultDatePatterns = []datePattern{
	{
		name:    "iso",
		re:      regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`),
		layouts: []string{"2006-01-02"},
	},
	{
		name:    "dd/mm/yyyy",
		re:      regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`),
		layouts: []string{"02/01/2006", "01/02/2006"},
	},
	{
		name:    "dd-mm-yyyy",
		re:      regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})`),
		layouts: []string{"02-01-2006", "01-02-2006"},
	},
	{
		name:    "dd/mm/yy",
		re:      regexp.MustCompile(`(\d{2})/(\d{2})/(\d{2})`),
		layouts: []string{"02/01/06", "01/02/06"},
	},
	{
		name: "mon d, yyyy",
		re:   regexp.MustCompile(`(\w{3})\s+(\d{1,2}),?\s+(\d{4})`),
		clean: func(match string) string {
			return strings.Join(strings.Fields(strings.ReplaceAll(match, ",", "")), " ")
		},
		layouts: []string{"Jan 2 2006"},
	},
}

// DateRecognizer finds and normalizes the transaction date within an OCR line
type DateRecognizer struct {
	patterns []datePattern
}

// NewDateRecognizer creates a DateRecognizer using the default pattern order
func NewDateRecognizer() *DateRecognizer {
	return &DateRecognizer{patterns: defaultDatePatterns}
}

// Recognize returns the first date found by pattern priority.
// A pattern whose match fails calendar validation is skipped in favor of the next pattern.
func (d *DateRecognizer) Recognize(line string) (time.Time, bool) {
	for _, p := range d.patterns {
		match := p.re.FindString(line)
		if match == "" {
			continue
		}
		if p.clean != nil {
			match = p.clean(match)
		}
		for _, layout := range p.layouts {
			if t, err := time.Parse(layout, match); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// RecognizeISO is Recognize formatted as YYYY-MM-DD
func (d *DateRecognizer) RecognizeISO(line string) (string, bool) {
	t, ok := d.Recognize(line)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}
