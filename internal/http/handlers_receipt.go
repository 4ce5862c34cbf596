package http

import (
	"errors"
	"io"
	"net/http"

	"walletnote/internal/log"
	"walletnote/internal/services"
	"walletnote/internal/uploads"
)

// multipartOverhead leaves room for part headers around the image itself.
const multipartOverhead = 1 << 20

type queuedResponse struct {
	UploadID string `json:"upload_id"`
	Status   string `json:"status"`
}

// handleReceiptUpload accepts a multipart "image" field. Inline processing
// answers 201 with the stored expense; a queued scan answers 202.
func (s *Server) handleReceiptUpload(w http.ResponseWriter, r *http.Request) {
	if s.deps.Receipts == nil {
		writeMessage(w, http.StatusServiceUnavailable, "receipt scanning is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, log.OpUpload, uploads.ErrTooLarge)
			return
		}
		writeMessage(w, http.StatusBadRequest, "expected a multipart form with an image field")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.opts.MaxUploadBytes+1))
	if err != nil {
		writeError(w, r, log.OpUpload, err)
		return
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		writeError(w, r, log.OpUpload, uploads.ErrTooLarge)
		return
	}

	res, err := s.deps.Receipts.Submit(r.Context(), currentUser(r).ID, services.ReceiptUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeError(w, r, log.OpScan, err)
		return
	}

	if res.Queued {
		writeJSON(w, http.StatusAccepted, queuedResponse{UploadID: res.UploadID, Status: "queued"})
		return
	}
	writeJSON(w, http.StatusCreated, res.Record)
}
