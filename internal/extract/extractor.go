package extract

import (
	"unicode/utf8"
)

const (
	// minDescriptionLength is exclusive: a label must be longer than this to qualify
	minDescriptionLength = 3
	maxDescriptionLength = 100
)

// Rejection explains why a line did or did not produce a transaction
type Rejection int

const (
	Accepted Rejection = iota
	RejectNoDate
	RejectNoAmount
	RejectInvalidAmount
	RejectShortDescription
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectNoDate:
		return "no_date"
	case RejectNoAmount:
		return "no_amount"
	case RejectInvalidAmount:
		return "invalid_amount"
	case RejectShortDescription:
		return "short_description"
	default:
		return "unknown"
	}
}

// Extractor turns a single OCR line into a transaction candidate
type Extractor struct {
	dates    *DateRecognizer
	selector AmountSelector
}

// NewExtractor creates an Extractor that uses the rightmost amount on each line
func NewExtractor() *Extractor {
	return NewExtractorWithSelector(LastAmount{})
}

// NewExtractorWithSelector creates an Extractor with a custom amount heuristic
func NewExtractorWithSelector(selector AmountSelector) *Extractor {
	if selector == nil {
		selector = LastAmount{}
	}
	return &Extractor{
		dates:    NewDateRecognizer(),
		selector: selector,
	}
}

// Extract returns the transaction on the line, if there is one
func (e *Extractor) Extract(line string) (Transaction, bool) {
	txn, reason := e.Classify(line)
	return txn, reason == Accepted
}

// Classify runs the extraction steps in order and reports the first one that rejects the line
func (e *Extractor) Classify(line string) (Transaction, Rejection) {
	date, ok := e.dates.Recognize(line)
	if !ok {
		return Transaction{}, RejectNoDate
	}

	amounts := FindAmounts(line)
	if len(amounts) == 0 {
		return Transaction{}, RejectNoAmount
	}

	raw, ok := e.selector.Select(line, amounts)
	if !ok {
		return Transaction{}, RejectNoAmount
	}
	amount, ok := ParseAmount(raw)
	if !ok {
		return Transaction{}, RejectInvalidAmount
	}

	// The full amounts list is stripped, not just the selected one
	desc := IsolateDescription(line, amounts)
	if utf8.RuneCountInString(desc) <= minDescriptionLength {
		return Transaction{}, RejectShortDescription
	}

	return Transaction{
		Date:        date,
		Description: truncateRunes(desc, maxDescriptionLength),
		Amount:      amount,
	}, Accepted
}

// truncateRunes cuts s to at most n characters without splitting a UTF-8 sequence
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
