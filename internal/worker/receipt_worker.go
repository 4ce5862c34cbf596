// Package worker holds the background consumers of the walletnote worker
// process.
package worker

import (
	"context"
	"fmt"

	"walletnote/internal/amqp"
	"walletnote/internal/core"
	"walletnote/internal/log"
	"walletnote/internal/services"
)

// ReceiptProcessor runs OCR for one stored upload.
type ReceiptProcessor interface {
	Process(ctx context.Context, job services.ReceiptJob) (core.Record, error)
}

// ReceiptWorker handles receipt scan messages from AMQP.
type ReceiptWorker struct {
	processor ReceiptProcessor
	logger    *log.Logger
}

func NewReceiptWorker(processor ReceiptProcessor) *ReceiptWorker {
	return &ReceiptWorker{
		processor: processor,
		logger:    log.WithComponent(log.ComponentWorker),
	}
}

// HandleReceiptScan processes a single receipt scan message. Errors that
// cannot succeed on redelivery are wrapped with amqp.Permanent so the
// message is dropped instead of requeued.
func (w *ReceiptWorker) HandleReceiptScan(ctx context.Context, msg *amqp.ReceiptScanMessage) error {
	w.logger.InfoContext(ctx, "Processing receipt scan",
		log.FieldUploadID, msg.UploadID,
		log.FieldUserID, msg.UserID)

	rec, err := w.processor.Process(ctx, services.ReceiptJob{
		UploadID:    msg.UploadID,
		UserID:      msg.UserID,
		Filename:    msg.Filename,
		ContentType: msg.ContentType,
	})
	if err != nil {
		if !services.Retryable(err) {
			w.logger.WarnContext(ctx, "Receipt scan dropped",
				log.FieldUploadID, msg.UploadID,
				log.FieldError, err)
			return amqp.Permanent(fmt.Errorf("process receipt %s: %w", msg.UploadID, err))
		}
		return fmt.Errorf("process receipt %s: %w", msg.UploadID, err)
	}

	w.logger.InfoContext(ctx, "Receipt scan stored",
		log.FieldUploadID, msg.UploadID,
		log.FieldRecordID, rec.ID)
	return nil
}
