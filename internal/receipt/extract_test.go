package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)

func fixedExtractor() Extractor {
	return Extractor{Now: func() time.Time { return fixedNow }}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtract_CoffeeShopReceipt(t *testing.T) {
	c, err := fixedExtractor().Extract("Coffee Shop\nTotal 12.50\nTax 1.00")
	require.NoError(t, err)

	assert.True(t, c.Amount.Equal(decimal.RequireFromString("12.50")), "amount = %s", c.Amount)
	assert.Equal(t, "Coffee Shop", c.Description)
	assert.Equal(t, day(2026, time.October, 19), c.Date)
}

func TestExtract_PicksMaximumAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"single", "Store\n3.99", "3.99"},
		{"total is largest", "Store\nMilk 2.49\nBread 3.10\nTOTAL 5.59", "5.59"},
		{"large discount wins", "Store\nDiscount 50.00\nTotal 20.00", "50.00"},
		{"multi digit integer part", "Store\n1234.56 and 999.99", "1234.56"},
		{"ties", "Store\n7.00 7.00", "7.00"},
		{"embedded in words", "Store\nabc12.34xyz", "12.34"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := fixedExtractor().Extract(tt.text)
			require.NoError(t, err)
			assert.True(t, c.Amount.Equal(decimal.RequireFromString(tt.want)), "amount = %s", c.Amount)
		})
	}
}

func TestExtract_NoAmount(t *testing.T) {
	for _, text := range []string{"no numbers here", "", "Total 12", "Total 12.5", "   \n  "} {
		_, err := fixedExtractor().Extract(text)
		var ee *ExtractionError
		require.ErrorAs(t, err, &ee, "text %q", text)
		assert.Equal(t, "amount", ee.Field)
		assert.ErrorIs(t, err, ErrNoAmount)
		assert.True(t, IsRejected(err))
	}
}

func TestExtract_Dates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"iso", "Shop\n2024-03-15\n1.00", day(2024, time.March, 15)},
		{"us", "Shop\n03/15/2024\n1.00", day(2024, time.March, 15)},
		{"year first slash", "Shop\n2024/03/15\n1.00", day(2024, time.March, 15)},
		{"iso beats us", "Shop\n03/15/2024 2023-01-02\n1.00", day(2023, time.January, 2)},
		{"year slash beats us", "Shop\n01/02/2020 1999/12/31\n1.00", day(1999, time.December, 31)},
		{"unparseable iso skipped", "Shop\n2024-13-45 2024-02-01\n1.00", day(2024, time.February, 1)},
		{"unparseable class falls through", "Shop\n2024-99-99\n12/25/2023\n1.00", day(2023, time.December, 25)},
		{"no date falls back to today", "Shop\n1.00", day(2026, time.October, 19)},
		{"only garbage dates", "Shop\n2024-00-00 99/99/9999\n1.00", day(2026, time.October, 19)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := fixedExtractor().Extract(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Date)
		})
	}
}

func TestExtract_Description(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first non blank", "\n\n  \nACME Market\nTotal 3.00", "ACME Market"},
		{"symbols stripped", "*** Joe's Café & Bar! ***\n3.00", "Joes Café  Bar"},
		{"hyphen kept", "7-Eleven #123\n3.00", "7-Eleven 123"},
		{"crlf", "Bakery\r\nTotal 3.00", "Bakery"},
		{"bare cr", "Shop\rTotal 3.00", "Shop"},
		{"line separator", "Kiosk\u2028Total 3.00", "Kiosk"},
		{"unicode letters", "ローソン 新宿店\n500.00", "ローソン 新宿店"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := fixedExtractor().Extract(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Description)
		})
	}
}

func TestExtract_DescriptionNotTruncated(t *testing.T) {
	long := strings.Repeat("a", 400)
	c, err := fixedExtractor().Extract(long + "\n1.00")
	require.NoError(t, err)
	assert.Len(t, c.Description, 400)
}

func TestExtract_DefaultClock(t *testing.T) {
	before := time.Now()
	c, err := Extract("Shop\n1.00")
	require.NoError(t, err)
	y, m, d := c.Date.Date()
	by, bm, bd := before.Date()
	// Allow for a midnight rollover between the two clock reads.
	if y != by || m != bm || d != bd {
		ay, am, ad := time.Now().Date()
		assert.Equal(t, []int{ay, int(am), ad}, []int{y, int(m), d})
	}
}
