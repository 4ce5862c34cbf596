package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ErrUnsupportedFormat is returned for uploads that are not an image or PDF.
var ErrUnsupportedFormat = errors.New("unsupported receipt format (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF)")

// DetectContentType returns a normalized MIME type for data, trusting the
// declared type unless it is empty or generic.
func DetectContentType(data []byte, declared string) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if isHEIC(data) {
		return "image/heic"
	}
	if mt == "" || mt == "application/octet-stream" {
		mt = http.DetectContentType(data)
		if i := strings.Index(mt, ";"); i >= 0 {
			mt = mt[:i]
		}
	}
	return mt
}

// IsSupported reports whether a MIME type can be converted to PNG.
func IsSupported(mimeType string) bool {
	switch mimeType {
	case "image/png", "image/jpeg", "image/gif", "image/heic", "image/heif", "application/pdf":
		return true
	}
	return false
}

// ToPNG converts a receipt upload to PNG. PNG input is returned unchanged;
// PDFs are rendered from their first page.
func ToPNG(data []byte, contentType string) ([]byte, error) {
	mt := DetectContentType(data, contentType)
	switch {
	case mt == "image/png":
		return data, nil
	case mt == "application/pdf":
		return pdfToPNG(data)
	case mt == "image/heic" || mt == "image/heif":
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC image: %w", err)
		}
		return encodePNG(img)
	case IsSupported(mt):
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		return encodePNG(img)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt)
	}
}

func pdfToPNG(data []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEIC looks for an ISO-BMFF ftyp box with a HEIF family brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}
