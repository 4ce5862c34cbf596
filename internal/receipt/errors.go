package receipt

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAmount means the text holds no monetary-looking substring.
	ErrNoAmount = errors.New("no monetary amount found")
	// ErrNoDescription means the text holds no non-blank line.
	ErrNoDescription = errors.New("no description line found")

	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrMissingDate      = errors.New("date is missing")
	ErrEmptyDescription = errors.New("description is empty")
)

// ExtractionError reports raw text that cannot yield a candidate record.
// Callers are expected to reject the upload and fall back to manual entry.
type ExtractionError struct {
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError reports a candidate field that violates its constraint.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsRejected reports whether err is an extraction or validation failure,
// i.e. one that re-running the same text cannot fix.
func IsRejected(err error) bool {
	var ee *ExtractionError
	var ve *ValidationError
	return errors.As(err, &ee) || errors.As(err, &ve)
}
