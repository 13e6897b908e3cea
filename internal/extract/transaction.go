package extract

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO layout every recognized date is normalized to
const DateLayout = "2006-01-02"

// Transaction is a single statement line recognized as a transaction.
// Before deduplication it is a candidate; the pipeline returns the survivors as records.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // always > 0, two decimal places
}

// transactionJSON is the wire shape: ISO date string and a bare numeric amount
type transactionJSON struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
}

// MarshalJSON renders the date as YYYY-MM-DD and the amount as a number with cent precision
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		Date:        t.Date.Format(DateLayout),
		Description: t.Description,
		Amount:      json.RawMessage(t.Amount.StringFixed(2)),
	})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	date, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return err
	}

	var amount decimal.Decimal
	if len(raw.Amount) > 0 {
		if err := amount.UnmarshalJSON(raw.Amount); err != nil {
			return err
		}
	}

	t.Date = date
	t.Description = raw.Description
	t.Amount = amount
	return nil
}
