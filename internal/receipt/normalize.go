package receipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLength caps a normalized description, in characters.
const MaxDescriptionLength = 255

// NormalizedRecord is a candidate that satisfies every constraint. It can
// only be built by Normalize and is immutable afterwards.
type NormalizedRecord struct {
	amount      decimal.Decimal
	date        time.Time
	description string
}

// Amount has exactly two fractional digits and is never negative.
func (n NormalizedRecord) Amount() decimal.Decimal { return n.amount }

// AmountString renders the amount as a fixed-point string, e.g. "12.50".
func (n NormalizedRecord) AmountString() string { return n.amount.StringFixed(2) }

// Date is a calendar date at UTC midnight.
func (n NormalizedRecord) Date() time.Time { return n.date }

// Description is trimmed, non-empty and at most MaxDescriptionLength runes.
func (n NormalizedRecord) Description() string { return n.description }

// Candidate converts n back to a CandidateRecord.
func (n NormalizedRecord) Candidate() CandidateRecord {
	return CandidateRecord{Amount: n.amount, Date: n.date, Description: n.description}
}

// Equal reports whether both records hold the same values.
func (n NormalizedRecord) Equal(o NormalizedRecord) bool {
	return n.amount.Equal(o.amount) && n.date.Equal(o.date) && n.description == o.description
}

// Normalize validates c and quantizes its amount to cents, rounding half away
// from zero. The first violated constraint is reported as a *ValidationError,
// checked in the order amount, date, description.
func Normalize(c CandidateRecord) (NormalizedRecord, error) {
	amount := c.Amount.Round(2)
	if amount.IsNegative() {
		return NormalizedRecord{}, &ValidationError{Field: "amount", Err: ErrNegativeAmount}
	}

	if c.Date.IsZero() {
		return NormalizedRecord{}, &ValidationError{Field: "date", Err: ErrMissingDate}
	}
	y, m, d := c.Date.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	desc := strings.TrimSpace(c.Description)
	if desc == "" {
		return NormalizedRecord{}, &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if r := []rune(desc); len(r) > MaxDescriptionLength {
		desc = strings.TrimSpace(string(r[:MaxDescriptionLength]))
	}

	return NormalizedRecord{amount: amount, date: date, description: desc}, nil
}

// Parse runs Extract with x and then Normalize.
func (x Extractor) Parse(raw string) (NormalizedRecord, error) {
	c, err := x.Extract(raw)
	if err != nil {
		return NormalizedRecord{}, err
	}
	return Normalize(c)
}
