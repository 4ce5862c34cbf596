package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"walletnote/internal/core"
	"walletnote/internal/log"
	"walletnote/internal/receipt"
	"walletnote/internal/services"
	"walletnote/internal/storage"
	"walletnote/internal/uploads"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// errorStatus maps domain errors onto HTTP statuses. The returned message is
// safe to show to the client; anything unrecognised becomes a generic 500.
func errorStatus(err error) (int, errorBody) {
	var (
		extraction *receipt.ExtractionError
		validation *receipt.ValidationError
	)
	switch {
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity, errorBody{Error: extraction.Err.Error(), Field: extraction.Field}
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, errorBody{Error: validation.Err.Error(), Field: validation.Field}

	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorBody{Error: "malformed request body"}

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: err.Error()}

	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}

	case errors.Is(err, storage.ErrDuplicateEmail):
		return http.StatusConflict, errorBody{Error: storage.ErrDuplicateEmail.Error()}

	case errors.Is(err, uploads.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, errorBody{Error: uploads.ErrTooLarge.Error()}

	case errors.Is(err, services.ErrUnsupportedUpload):
		return http.StatusUnsupportedMediaType, errorBody{Error: err.Error()}

	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrInvalidRecordType),
		errors.Is(err, core.ErrUnsupportedCurrency),
		errors.Is(err, core.ErrInvalidUsername),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrWeakPassword),
		errors.Is(err, core.ErrPasswordTooLong),
		errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, uploads.ErrEmpty):
		return http.StatusUnprocessableEntity, errorBody{Error: err.Error()}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal server error"}
}

// writeError maps err to a status and logs server-side failures with the
// request-scoped logger.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).LogError(r.Context(), "Request failed", err, op, log.ErrorTypeInternal)
	}
	writeJSON(w, status, body)
}
