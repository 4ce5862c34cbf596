package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ReceiptScanMessage asks the worker to run OCR over a stored upload. The
// image itself stays in upload storage; only its ID travels on the queue.
type ReceiptScanMessage struct {
	UploadID    string    `json:"upload_id"`
	UserID      int64     `json:"user_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewReceiptScanMessage(uploadID string, userID int64, filename, contentType string) *ReceiptScanMessage {
	return &ReceiptScanMessage{
		UploadID:    uploadID,
		UserID:      userID,
		Filename:    filename,
		ContentType: contentType,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *ReceiptScanMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptScanMessageFromJSON decodes a message and checks the fields the
// worker cannot do without.
func ReceiptScanMessageFromJSON(data []byte) (*ReceiptScanMessage, error) {
	var msg ReceiptScanMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UploadID == "" {
		return nil, errors.New("missing upload_id")
	}
	if msg.UserID <= 0 {
		return nil, fmt.Errorf("invalid user_id %d", msg.UserID)
	}
	return &msg, nil
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks a handler error that redelivery cannot fix. The consumer
// acknowledges such messages instead of requeueing them.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
