// Package ocr converts receipt images into raw text.
//
// The text is handed to the receipt package unparsed; engines here never try
// to interpret it.
package ocr

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoText is returned when an engine produced only whitespace.
var ErrNoText = errors.New("ocr produced no text")

// Image is an uploaded receipt.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Recognizer turns an image into raw text.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (string, error)
	Close() error
}

// Options selects and configures an engine.
type Options struct {
	Engine      string
	GeminiKey   string
	GeminiModel string
}

// New builds the engine named by opts.Engine ("placeholder" or "gemini").
func New(ctx context.Context, opts Options) (Recognizer, error) {
	switch opts.Engine {
	case "", "placeholder":
		return NewPlaceholder(), nil
	case "gemini":
		g, err := NewGemini(ctx, opts.GeminiKey, opts.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", opts.Engine)
	}
}
