package receipt

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(amount string) CandidateRecord {
	return CandidateRecord{
		Amount:      decimal.RequireFromString(amount),
		Date:        day(2024, time.March, 15),
		Description: "Coffee Shop",
	}
}

func TestNormalize_QuantizesAmount(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"5", "5.00"},
		{"12.5", "12.50"},
		{"12.345", "12.35"}, // half-up
		{"12.344", "12.34"},
		{"0", "0.00"},
		{"0.004", "0.00"},
	}
	for _, tt := range tests {
		n, err := Normalize(candidate(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, n.AmountString(), tt.in)
		assert.True(t, n.Amount().Equal(decimal.RequireFromString(tt.want)))
	}
}

func TestNormalize_RejectsNegative(t *testing.T) {
	_, err := Normalize(candidate("-5.00"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)
	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.True(t, IsRejected(err))
}

func TestNormalize_Date(t *testing.T) {
	c := candidate("1.00")
	c.Date = time.Date(2024, time.March, 15, 23, 59, 0, 0, time.FixedZone("JST", 9*3600))
	n, err := Normalize(c)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.March, 15), n.Date())

	c.Date = time.Time{}
	_, err = Normalize(c)
	assert.ErrorIs(t, err, ErrMissingDate)
}

func TestNormalize_Description(t *testing.T) {
	c := candidate("1.00")
	c.Description = "   Corner Deli  "
	n, err := Normalize(c)
	require.NoError(t, err)
	assert.Equal(t, "Corner Deli", n.Description())

	c.Description = " \t "
	_, err = Normalize(c)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "description", ve.Field)

	c.Description = strings.Repeat("é", 300)
	n, err = Normalize(c)
	require.NoError(t, err)
	assert.Equal(t, MaxDescriptionLength, utf8.RuneCountInString(n.Description()))
}

func TestNormalize_FirstFailureReported(t *testing.T) {
	_, err := Normalize(CandidateRecord{Amount: decimal.NewFromInt(-1)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)
}

func TestNormalize_Idempotent(t *testing.T) {
	first, err := Normalize(candidate("19.999"))
	require.NoError(t, err)
	second, err := Normalize(first.Candidate())
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.Equal(t, first.AmountString(), second.AmountString())
}

func TestParse_Deterministic(t *testing.T) {
	text := "Grocery Mart\n2024-06-01\nApples 3.20\nTOTAL 14.75\n"
	x := fixedExtractor()

	first, err := x.Parse(text)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := x.Parse(text)
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}
	assert.Equal(t, "14.75", first.AmountString())
	assert.Equal(t, "Grocery Mart", first.Description())
	assert.Equal(t, day(2024, time.June, 1), first.Date())
}

func TestParse_SymbolOnlyFirstLineIsRejected(t *testing.T) {
	_, err := fixedExtractor().Parse("*****\nTotal 3.00")
	assert.ErrorIs(t, err, ErrEmptyDescription)
}
