package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// PlaceholderDate is the fixed date reported by the placeholder engine.
const PlaceholderDate = "2025-01-01"

// Placeholder is an engine that does not look at the image. It reports a
// zero total on a fixed date, labelled with the upload's file name, so the
// upload path can run end to end without an OCR backend. Digits, dots and
// slashes are dropped from the label so the name cannot read as an amount
// or a date.
type Placeholder struct{}

func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

func (p *Placeholder) Recognize(ctx context.Context, img Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("OCR Import %s\nTotal 0.00\n%s\n", placeholderLabel(img.Filename), PlaceholderDate), nil
}

func placeholderLabel(filename string) string {
	if filename == "" {
		return "receipt"
	}
	label := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == '/' {
			return -1
		}
		return r
	}, filepath.Base(filename))
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return "receipt"
	}
	return label
}

func (p *Placeholder) Close() error { return nil }
