package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(NewDate(2024, 3, 15).Time) {
		t.Fatalf("got %v", d)
	}
	for _, bad := range []string{"", "2024-13-01", "15/03/2024", "2024-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 3, 5))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-03-05"` {
		t.Fatalf("got %s", b)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2025-01-01"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.String() != "2025-01-01" {
		t.Fatalf("got %s", d)
	}
}

func TestParseRecordType(t *testing.T) {
	for in, want := range map[string]RecordType{"income": Income, " Expense ": Expense} {
		got, err := ParseRecordType(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %q, got %q (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseRecordType("transfer"); !errors.Is(err, ErrInvalidRecordType) {
		t.Fatalf("expected ErrInvalidRecordType, got %v", err)
	}
}

func TestRecordInputValidate(t *testing.T) {
	good := RecordInput{
		Type:    Expense,
		Amount:  MoneyFromCents(1250),
		Service: "Coffee",
		Date:    NewDate(2025, 1, 1),
		Source:  SourceManual,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	bads := []struct {
		mutate func(*RecordInput)
		want   error
	}{
		{func(r *RecordInput) { r.Type = "gift" }, ErrInvalidRecordType},
		{func(r *RecordInput) { r.Amount = MoneyFromCents(-1) }, ErrInvalidAmount},
		{func(r *RecordInput) { r.Amount = NewMoney(decimal.New(1, 20)) }, ErrInvalidAmount},
		{func(r *RecordInput) { r.Service = "  " }, ErrEmptyDescription},
		{func(r *RecordInput) { r.Service = strings.Repeat("x", 256) }, ErrDescriptionTooLong},
		{func(r *RecordInput) { r.Date = Date{} }, ErrInvalidDate},
	}
	for i, tc := range bads {
		in := good
		tc.mutate(&in)
		if err := in.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}
