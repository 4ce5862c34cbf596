// Package receipt turns raw OCR text into a validated record.
//
// Extract pulls a candidate amount, date and description out of noisy text;
// Normalize enforces the value constraints. Both are pure and safe for
// concurrent use.
package receipt

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// CandidateRecord is the unvalidated result of Extract.
type CandidateRecord struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

type datePattern struct {
	re     *regexp.Regexp
	layout string
}

var (
	amountPattern = regexp.MustCompile(`\d+\.\d{2}`)

	// CRLF, bare CR, LF and the other Unicode line boundaries.
	lineBreak = regexp.MustCompile(`\r\n|[\n\v\f\r\x1c-\x1e\x{85}\x{2028}\x{2029}]`)

	// Tried in order; the slash form with a leading 19/20 goes before
	// MM/DD/YYYY so that 2024/03/15 is not misread.
	datePatterns = []datePattern{
		{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), "2006-01-02"},
		{regexp.MustCompile(`(?:19|20)\d{2}/\d{2}/\d{2}`), "2006/01/02"},
		{regexp.MustCompile(`\d{2}/\d{2}/\d{4}`), "01/02/2006"},
	}
)

// Extractor extracts candidate records. The zero value uses time.Now for
// the missing-date fallback.
type Extractor struct {
	Now func() time.Time
}

// Extract runs the default Extractor.
func Extract(raw string) (CandidateRecord, error) {
	return Extractor{}.Extract(raw)
}

// Extract reads the largest two-decimal amount, the first parseable date
// (today when none parses) and the first non-blank line of raw.
func (x Extractor) Extract(raw string) (CandidateRecord, error) {
	amount, err := extractAmount(raw)
	if err != nil {
		return CandidateRecord{}, err
	}
	desc, err := extractDescription(raw)
	if err != nil {
		return CandidateRecord{}, err
	}
	date, ok := extractDate(raw)
	if !ok {
		date = x.today()
	}
	return CandidateRecord{Amount: amount, Date: date, Description: desc}, nil
}

func (x Extractor) today() time.Time {
	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func extractAmount(raw string) (decimal.Decimal, error) {
	var (
		best  decimal.Decimal
		found bool
	)
	for _, m := range amountPattern.FindAllString(raw, -1) {
		v, err := decimal.NewFromString(m)
		if err != nil {
			continue
		}
		if !found || v.GreaterThan(best) {
			best, found = v, true
		}
	}
	if !found {
		return decimal.Decimal{}, &ExtractionError{Field: "amount", Err: ErrNoAmount}
	}
	return best, nil
}

func extractDate(raw string) (time.Time, bool) {
	for _, p := range datePatterns {
		for _, m := range p.re.FindAllString(raw, -1) {
			if t, err := time.Parse(p.layout, m); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func extractDescription(raw string) (string, error) {
	for _, line := range lineBreak.Split(raw, -1) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' {
				return r
			}
			return -1
		}, line)
		return strings.TrimSpace(cleaned), nil
	}
	return "", &ExtractionError{Field: "description", Err: ErrNoDescription}
}
