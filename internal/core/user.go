package core

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Currency is an ISO 4217 code used for display only.
type Currency string

const DefaultCurrency Currency = "USD"

var supportedCurrencies = map[Currency]struct{}{
	"USD": {}, "EUR": {}, "JPY": {}, "GBP": {}, "CHF": {},
	"CAD": {}, "AUD": {}, "NZD": {}, "SEK": {}, "NOK": {},
}

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidUsername     = errors.New("username must be at least 3 characters long")
	ErrInvalidEmail        = errors.New("invalid email address format")
	ErrWeakPassword        = errors.New("password must be at least 8 characters and contain letters and digits")
	ErrPasswordTooLong     = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is an account holder. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Currency     Currency  `json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
}

// ParseCurrency upper-cases s and checks it against the supported set.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := supportedCurrencies[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
	}
	return c, nil
}

// SupportedCurrencies returns the supported codes in alphabetical order.
func SupportedCurrencies() []Currency {
	out := make([]Currency, 0, len(supportedCurrencies))
	for c := range supportedCurrencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignUp checks the fields of a new account.
func ValidateSignUp(username, email, password string) error {
	if len([]rune(strings.TrimSpace(username))) < 3 {
		return ErrInvalidUsername
	}
	if !emailPattern.MatchString(NormalizeEmail(email)) {
		return ErrInvalidEmail
	}
	return ValidatePassword(password)
}

// ValidatePassword requires 8+ characters including a letter and a digit,
// and at most MaxPasswordBytes bytes.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}
