package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"walletnote/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     url.Values
		wantYear  int
		wantMonth int
	}{
		{"both values provided", url.Values{"year": {"2024"}, "month": {"12"}}, 2024, 12},
		{"only year", url.Values{"year": {"2023"}}, 2023, 10},
		{"only month", url.Values{"month": {"5"}}, 2026, 5},
		{"invalid values are ignored", url.Values{"year": {"abc"}, "month": {"x"}}, 2026, 10},
		{"out of range kept for the service to reject", url.Values{"month": {"13"}}, 2026, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseMonthParams(tt.query, now)
			if result.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", result.Year, tt.wantYear)
			}
			if result.Month != tt.wantMonth {
				t.Errorf("Month = %d, want %d", result.Month, tt.wantMonth)
			}
		})
	}
}

func TestParseRecordFilter(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantType  core.RecordType
		wantLimit int
		wantErr   bool
	}{
		{"empty", url.Values{}, "", 0, false},
		{"type and limit", url.Values{"type": {"Income"}, "limit": {"5"}}, core.Income, 5, false},
		{"bad limit ignored", url.Values{"limit": {"-3"}}, "", 0, false},
		{"unknown type", url.Values{"type": {"transfer"}}, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseRecordFilter(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRecordFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if f.Type != tt.wantType || f.Limit != tt.wantLimit {
				t.Errorf("got %+v", f)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"service": " Coffee ", "price": 42.5, "paid": true}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if got := parser.Get("service"); got != "Coffee" {
		t.Errorf("Get('service') = %q, want 'Coffee'", got)
	}
	if got := parser.Get("price"); got != "42.5" {
		t.Errorf("Get('price') = %q, want '42.5'", got)
	}
	if got := parser.Get("paid"); got != "true" {
		t.Errorf("Get('paid') = %q, want 'true'", got)
	}
	if parser.Has("date") {
		t.Error("Has('date') should be false")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "service=form+test&price=100&note=a%01b"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if got := parser.Get("service"); got != "form test" {
		t.Errorf("Get('service') = %q, want 'form test'", got)
	}
	if got := parser.Get("note"); got != "ab" {
		t.Errorf("control characters should be stripped, got %q", got)
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"price":`))
		req.Header.Set("Content-Type", "application/json")
		err := NewRequestBodyParser(httptest.NewRecorder(), req).Parse()
		if !errors.Is(err, errBadRequest) {
			t.Errorf("expected errBadRequest, got %v", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		big := `{"service":"` + strings.Repeat("a", maxBodyBytes) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(big))
		err := NewRequestBodyParser(httptest.NewRecorder(), req).Parse()
		if !errors.Is(err, errBadRequest) {
			t.Errorf("expected errBadRequest, got %v", err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))
		parser := NewRequestBodyParser(httptest.NewRecorder(), req)
		if err := parser.Parse(); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if val := parser.Get("nonexistent"); val != "" {
			t.Errorf("Get('nonexistent') = %q, want empty string", val)
		}
	})
}

func TestRequestBodyParser_RecordInput(t *testing.T) {
	today := core.NewDate(2026, 10, 19)

	tests := []struct {
		name    string
		body    string
		wantErr error
		want    string
		date    string
	}{
		{"full", `{"price":"12.5","service":"Lunch","date":"2026-10-01"}`, nil, "12.50", "2026-10-01"},
		{"date defaults to today", `{"price":3,"service":"Bus"}`, nil, "3.00", "2026-10-19"},
		{"negative price", `{"price":"-1","service":"Bus"}`, core.ErrInvalidAmount, "", ""},
		{"missing price", `{"service":"Bus"}`, core.ErrInvalidAmount, "", ""},
		{"bad date", `{"price":"1","service":"Bus","date":"19/10/2026"}`, core.ErrInvalidDate, "", ""},
		{"blank service", `{"price":"1","service":"  "}`, core.ErrEmptyDescription, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			parser := NewRequestBodyParser(httptest.NewRecorder(), req)
			if err := parser.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			in, err := parser.RecordInput(core.Expense, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RecordInput() error = %v", err)
			}
			if in.Amount.String() != tt.want || in.Date.String() != tt.date || in.Type != core.Expense {
				t.Errorf("unexpected input %+v", in)
			}
		})
	}
}

func TestRequestBodyParser_ApplyTo(t *testing.T) {
	rec := core.Record{
		ID:      4,
		Type:    core.Income,
		Amount:  core.MoneyFromCents(1000),
		Service: "Salary",
		Date:    core.NewDate(2026, 10, 1),
		Source:  core.SourceManual,
	}

	req := httptest.NewRequest(http.MethodPut, "/test", strings.NewReader(`{"price":"20"}`))
	parser := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	in, err := parser.ApplyTo(rec)
	if err != nil {
		t.Fatalf("ApplyTo() error = %v", err)
	}
	if in.Amount.String() != "20.00" || in.Service != "Salary" || in.Date.String() != "2026-10-01" || in.Type != core.Income {
		t.Errorf("unexpected input %+v", in)
	}

	req = httptest.NewRequest(http.MethodPut, "/test", strings.NewReader(`{"service":""}`))
	parser = NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := parser.ApplyTo(rec); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("expected ErrEmptyDescription, got %v", err)
	}
}
