package extract

import "strings"

const (
	dedupeKeyPrefixLength = 20
	// dedupeKeySeparator never appears in a date or amount, and the description prefix comes last
	dedupeKeySeparator = "\x1f"
)

// dedupeState is the accumulator threaded through the fold in Dedupe
type dedupeState struct {
	seen map[string]struct{}
	out  []Transaction
}

// step folds one candidate into the state, keeping it only if its key is new
func (s dedupeState) step(txn Transaction) dedupeState {
	key := DedupeKey(txn)
	if _, dup := s.seen[key]; dup {
		return s
	}
	s.seen[key] = struct{}{}
	s.out = append(s.out, txn)
	return s
}

// DedupeKey is the heuristic identity of a transaction: date, amount and description prefix
func DedupeKey(txn Transaction) string {
	return strings.Join([]string{
		txn.Date.Format(DateLayout),
		txn.Amount.StringFixed(2),
		truncateRunes(txn.Description, dedupeKeyPrefixLength),
	}, dedupeKeySeparator)
}

// Dedupe drops candidates whose key was already seen. Order is preserved and the
// first occurrence wins. Distinct transactions that share a date, amount and
// description prefix are collapsed too.
func Dedupe(candidates []Transaction) []Transaction {
	state := dedupeState{
		seen: make(map[string]struct{}, len(candidates)),
		out:  make([]Transaction, 0, len(candidates)),
	}
	for _, txn := range candidates {
		state = state.step(txn)
	}
	return state.out
}
