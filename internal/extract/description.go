package extract

import (
	"regexp"
	"strings"
)

var (
	isoDateShape     = regexp.MustCompile(`\d{4}[/-]\d{2}[/-]\d{2}`)
	numericDateShape = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
)

// IsolateDescription strips amount and date tokens from a line, leaving the label text.
// Any date-shaped token is removed, not only the recognized one, so posting and value
// dates printed side by side both disappear.
func IsolateDescription(line string, amounts []string) string {
	desc := line
	for _, amt := range amounts {
		desc = strings.ReplaceAll(desc, amt, "")
	}

	// ISO first: the looser numeric shape would otherwise eat "24-01-05" out of "2024-01-05"
	desc = isoDateShape.ReplaceAllString(desc, "")
	desc = numericDateShape.ReplaceAllString(desc, "")

	return strings.Join(strings.Fields(desc), " ")
}
