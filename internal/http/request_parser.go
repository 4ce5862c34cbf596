package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"walletnote/internal/core"
	"walletnote/internal/storage"
)

// maxBodyBytes caps JSON and form bodies; receipt uploads have their own limit.
const maxBodyBytes = 64 << 10

var errBadRequest = errors.New("malformed request")

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using the
// month of now as defaults. Unparseable values fall back to the defaults;
// range checks are left to the report service.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}

	return params
}

// ParseRecordFilter reads ?type= and ?limit=. An unknown type is an error;
// a missing or bad limit falls back to the storage default.
func ParseRecordFilter(query url.Values) (storage.RecordFilter, error) {
	var f storage.RecordFilter
	if v := strings.TrimSpace(query.Get("type")); v != "" {
		t, err := core.ParseRecordType(v)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	return f, nil
}

// RequestBodyParser reads a JSON object or a form-encoded body, so the same
// handler serves fetch() calls and plain HTML forms.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadRequest, p.err)
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errBadRequest, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadRequest, p.err)
	}
	return p.err
}

// Get returns a trimmed, sanitized string value from the parsed body.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was present in the body at all.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// RecordInput builds a record from the price, service and date fields. typ
// is used as given; date defaults to today when absent.
func (p *RequestBodyParser) RecordInput(typ core.RecordType, today core.Date) (core.RecordInput, error) {
	in := core.RecordInput{
		Type:    typ,
		Service: p.Get("service"),
		Date:    today,
	}

	amount, err := core.ParseMoney(p.Get("price"))
	if err != nil {
		return in, err
	}
	in.Amount = amount

	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	return in, in.Validate()
}

// ApplyTo overlays the price, service and date fields present in the body
// onto an existing record.
func (p *RequestBodyParser) ApplyTo(rec core.Record) (core.RecordInput, error) {
	in := core.RecordInput{
		Type:    rec.Type,
		Amount:  rec.Amount,
		Service: rec.Service,
		Date:    rec.Date,
		Source:  rec.Source,
	}
	if p.Has("price") {
		amount, err := core.ParseMoney(p.Get("price"))
		if err != nil {
			return in, err
		}
		in.Amount = amount
	}
	if p.Has("service") {
		in.Service = p.Get("service")
	}
	if p.Has("date") {
		d, err := core.ParseDate(p.Get("date"))
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	return in, in.Validate()
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and drops control characters other than
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
