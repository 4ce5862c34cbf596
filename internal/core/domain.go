package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// MaxServiceLength caps the service/product name of a record, in characters.
const MaxServiceLength = 255

const (
	Income  RecordType = "income"
	Expense RecordType = "expense"
)

const (
	SourceManual Source = "manual"
	SourceOCR    Source = "ocr"
)

type (
	// RecordType distinguishes money coming in from money going out.
	RecordType string

	// Source tells how a record was entered.
	Source string

	// Date is a calendar date at UTC midnight.
	Date struct {
		time.Time
	}

	// Record is a stored income or expense owned by a user.
	Record struct {
		ID        int64      `json:"id"`
		UserID    int64      `json:"-"`
		Type      RecordType `json:"type"`
		Amount    Money      `json:"price"`
		Service   string     `json:"service"`
		Date      Date       `json:"date"`
		Source    Source     `json:"source"`
		CreatedAt time.Time  `json:"created_at"`
		UpdatedAt time.Time  `json:"updated_at"`
	}

	// RecordInput carries the user-editable fields of a record.
	RecordInput struct {
		Type    RecordType
		Amount  Money
		Service string
		Date    Date
		Source  Source
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxServiceLength)
	ErrInvalidRecordType  = errors.New("invalid record type")
)

// ParseRecordType accepts "income" or "expense" in any case.
func ParseRecordType(s string) (RecordType, error) {
	switch t := RecordType(strings.ToLower(strings.TrimSpace(s))); t {
	case Income, Expense:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRecordType, s)
	}
}

func (t RecordType) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day, keeping t's wall-clock date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (in RecordInput) Validate() error {
	if !in.Type.Valid() {
		return ErrInvalidRecordType
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Service) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(in.Service) > MaxServiceLength {
		return ErrDescriptionTooLong
	}
	return in.Date.Validate()
}
