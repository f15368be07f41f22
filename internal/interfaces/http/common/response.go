package common

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the uniform response body: {status, message, data?} on success
// and {status, message, errors?} on failure. A 429 additionally carries
// retry_after seconds.
type Envelope struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Errors     any    `json:"errors,omitempty"`
	RetryAfter *int64 `json:"retry_after,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *log.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// WriteSuccess writes a success envelope with optional data.
func WriteSuccess(logger *log.Logger, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(logger, w, status, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// WriteError writes an error envelope without field detail.
func WriteError(logger *log.Logger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, Envelope{Status: StatusError, Message: message})
}

// WriteFieldErrors writes a 422 envelope with field-level validation detail.
func WriteFieldErrors(logger *log.Logger, w http.ResponseWriter, message string, fields map[string][]string) {
	WriteJSON(logger, w, http.StatusUnprocessableEntity, Envelope{
		Status:  StatusError,
		Message: message,
		Errors:  fields,
	})
}
