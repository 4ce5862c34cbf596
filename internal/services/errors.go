package services

import "errors"

var (
	// ErrInvalidPeriod is returned for chart requests outside the calendar.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrUnsupportedUpload is returned for receipt files that are neither an
	// image nor a PDF.
	ErrUnsupportedUpload = errors.New("unsupported receipt file")
)
