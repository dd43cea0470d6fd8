// Package shared centralizes JSON envelopes and domain error translation so
// every handler returns the same shapes.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "medledger/pkg/domain-errors"
)

// ErrorResponse is the uniform error envelope. The code mirrors the domain
// error taxonomy so API callers can distinguish validation from range from
// missing-record failures regardless of HTTP status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation: http.StatusBadRequest,
	dErrors.CodeBadRequest: http.StatusBadRequest,
	dErrors.CodeOutOfRange: http.StatusBadRequest,
	dErrors.CodeNotFound:   http.StatusNotFound,
	dErrors.CodeInternal:   http.StatusInternalServerError,
}

// WriteError translates a domain error to an HTTP response.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := ""
	if status != http.StatusInternalServerError {
		// Internal details stay out of responses.
		message = err.Error()
	}
	WriteJSON(w, status, ErrorResponse{Error: string(code), Message: message})
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
