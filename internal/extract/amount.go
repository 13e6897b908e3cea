package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// amountPattern is the only accepted monetary shape: digits, optional comma grouping, two decimals
	amountPattern = regexp.MustCompile(`[\d,]+\.\d{2}`)

	amountJunk = regexp.MustCompile(`[^\d.,\-]`)
)

// FindAmounts returns every two-decimal amount in the line, left to right, duplicates included
func FindAmounts(line string) []string {
	return amountPattern.FindAllString(line, -1)
}

// ParseAmount normalizes a raw amount substring into a positive decimal.
// Signs are discarded. Empty, non-numeric and zero amounts are rejected.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := amountJunk.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}

	amount = amount.Abs()
	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

// AmountSelector picks which of a line's amounts is the transaction amount
type AmountSelector interface {
	Select(line string, amounts []string) (string, bool)
}

// LastAmount selects the rightmost amount. Statements usually print the
// running balance before the transaction total.
type LastAmount struct{}

func (LastAmount) Select(_ string, amounts []string) (string, bool) {
	if len(amounts) == 0 {
		return "", false
	}
	return amounts[len(amounts)-1], true
}

// FirstAmount selects the leftmost amount, for layouts that print the balance last
type FirstAmount struct{}

func (FirstAmount) Select(_ string, amounts []string) (string, bool) {
	if len(amounts) == 0 {
		return "", false
	}
	return amounts[0], true
}

// AmountSelectorByName resolves a selector from its configuration name
func AmountSelectorByName(name string) (AmountSelector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "last":
		return LastAmount{}, nil
	case "first":
		return FirstAmount{}, nil
	default:
		return nil, fmt.Errorf("unknown amount strategy %q (valid: last, first)", name)
	}
}
