package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"0", "0.00", true},
		{"1.005", "1.01", true}, // half-up rounding
		{"1.004", "1.00", true},
		{" 2.50 ", "2.50", true},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"92233720368547758.07", "92233720368547758.07", true},
		{"92233720368547758.08", "", false},
		{"100000000000000000000.00", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyCents(t *testing.T) {
	m, err := ParseMoney("12.50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Cents() != 1250 {
		t.Fatalf("expected 1250 cents, got %d", m.Cents())
	}
	if !MoneyFromCents(1250).Equal(m) {
		t.Fatalf("MoneyFromCents mismatch")
	}
	if got := MoneyFromCents(500).Sub(MoneyFromCents(750)).String(); got != "-2.50" {
		t.Fatalf("expected -2.50, got %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(MoneyFromCents(500))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"5.00"` {
		t.Fatalf("expected fixed-point string, got %s", b)
	}

	var fromString, fromNumber Money
	if err := json.Unmarshal([]byte(`"3.456"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if err := json.Unmarshal([]byte(`3.456`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if fromString.String() != "3.46" || fromNumber.String() != "3.46" {
		t.Fatalf("got %s and %s", fromString, fromNumber)
	}
	var neg Money
	if err := json.Unmarshal([]byte(`"-1"`), &neg); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestZeroMoneyFormats(t *testing.T) {
	var m Money
	if m.String() != "0.00" || m.Cents() != 0 {
		t.Fatalf("zero value should render as 0.00, got %s", m)
	}
}
