package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"walletnote/internal/amqp"
	"walletnote/internal/core"
	"walletnote/internal/log"
	"walletnote/internal/ocr"
	"walletnote/internal/receipt"
	"walletnote/internal/uploads"
)

// ReceiptUpload is a receipt file as received from the browser.
type ReceiptUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReceiptJob identifies a stored upload awaiting OCR.
type ReceiptJob struct {
	UploadID    string
	UserID      int64
	Filename    string
	ContentType string
}

// ReceiptResult says what happened to a submitted receipt. Record is set when
// the receipt was processed inline; UploadID is always set.
type ReceiptResult struct {
	UploadID string
	Queued   bool
	Record   *core.Record
}

// ReceiptService turns receipt uploads into expense records: store the file,
// recognize text, extract and normalize a record, persist it.
type ReceiptService struct {
	uploads    uploads.Storage
	recognizer ocr.Recognizer
	records    *RecordService
	publisher  ScanPublisher
	extractor  receipt.Extractor
	logger     *log.Logger
}

// NewReceiptService processes receipts inline when publisher is nil.
func NewReceiptService(store uploads.Storage, recognizer ocr.Recognizer, records *RecordService, publisher ScanPublisher) *ReceiptService {
	return &ReceiptService{
		uploads:    store,
		recognizer: recognizer,
		records:    records,
		publisher:  publisher,
		extractor:  receipt.Extractor{Now: time.Now},
		logger:     log.WithComponent(log.ComponentReceipt),
	}
}

// WithClock sets the clock used for the missing-date fallback.
func (s *ReceiptService) WithClock(now func() time.Time) *ReceiptService {
	s.extractor = receipt.Extractor{Now: now}
	return s
}

// Submit stores the upload and either queues it for the worker or processes
// it right away. A failed publish falls back to inline processing.
func (s *ReceiptService) Submit(ctx context.Context, userID int64, up ReceiptUpload) (ReceiptResult, error) {
	contentType := ocr.DetectContentType(up.Data, up.ContentType)
	if !ocr.IsSupported(contentType) {
		return ReceiptResult{}, fmt.Errorf("%w: %s", ErrUnsupportedUpload, contentType)
	}

	id, err := s.uploads.Save(up.Data)
	if err != nil {
		return ReceiptResult{}, fmt.Errorf("save upload: %w", err)
	}

	job := ReceiptJob{
		UploadID:    id,
		UserID:      userID,
		Filename:    filepath.Base(up.Filename),
		ContentType: contentType,
	}

	fields := log.NewFields().WithUpload(job.UploadID, job.Filename, job.ContentType)
	fields[log.FieldUserID] = userID
	s.logger.InfoContext(ctx, "Receipt uploaded", fields.ToSlice()...)

	if s.publisher != nil {
		msg := amqp.NewReceiptScanMessage(job.UploadID, job.UserID, job.Filename, job.ContentType)
		err := s.publisher.PublishReceiptScan(ctx, msg)
		if err == nil {
			return ReceiptResult{UploadID: id, Queued: true}, nil
		}
		s.logger.WarnContext(ctx, "Publishing receipt scan failed, processing inline",
			log.FieldUploadID, id, log.FieldError, err)
	}

	rec, err := s.Process(ctx, job)
	if err != nil {
		return ReceiptResult{UploadID: id}, err
	}
	return ReceiptResult{UploadID: id, Record: &rec}, nil
}

// Process runs OCR over a stored upload and saves the result as an expense.
// Extraction and validation failures come back as *receipt.ExtractionError or
// *receipt.ValidationError.
func (s *ReceiptService) Process(ctx context.Context, job ReceiptJob) (core.Record, error) {
	data, err := s.uploads.Get(job.UploadID)
	if err != nil {
		return core.Record{}, fmt.Errorf("load upload %s: %w", job.UploadID, err)
	}

	text, err := s.recognizer.Recognize(ctx, ocr.Image{
		Data:        data,
		ContentType: job.ContentType,
		Filename:    job.Filename,
	})
	if err != nil {
		return core.Record{}, fmt.Errorf("recognize receipt: %w", err)
	}

	normalized, err := s.extractor.Parse(text)
	if err != nil {
		s.logger.WarnContext(ctx, "Receipt rejected",
			log.FieldUploadID, job.UploadID,
			log.FieldErrorType, log.ErrorTypeExtraction,
			log.FieldError, err)
		return core.Record{}, err
	}

	rec, err := s.records.Create(ctx, job.UserID, core.RecordInput{
		Type:    core.Expense,
		Amount:  core.NewMoney(normalized.Amount()),
		Service: normalized.Description(),
		Date:    core.DateOf(normalized.Date()),
		Source:  core.SourceOCR,
	})
	if err != nil {
		return core.Record{}, fmt.Errorf("save receipt record: %w", err)
	}

	log.NewStructuredLogger(s.logger).LogReceiptProcessed(ctx, job.UploadID, rec.ID, job.UserID, rec.Amount.Cents())
	return rec, nil
}

// Retryable reports whether a Process error may succeed on another attempt.
func Retryable(err error) bool {
	if err == nil || receipt.IsRejected(err) {
		return false
	}
	switch {
	case errors.Is(err, uploads.ErrNotFound),
		errors.Is(err, uploads.ErrInvalidID),
		errors.Is(err, ocr.ErrUnsupportedFormat),
		errors.Is(err, ocr.ErrNoText),
		errors.Is(err, core.ErrInvalidAmount):
		return false
	}
	return true
}
