package helpers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the wire shape for failed requests. Errors carries
// per-field messages on validation failures; Error carries a short reason
// on server-side failures. Internal detail is never included.
// swagger:model ErrorResponse
type ErrorResponse struct {
	Message string   `json:"message"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// WriteJSON sets Content-Type to application/json, writes statusCode, and
// encodes v as the response body.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a {message} error body.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Message: message})
}

// WriteErrorDetail writes a {message, error} body for server-side failures.
func WriteErrorDetail(w http.ResponseWriter, statusCode int, message, detail string) {
	WriteJSON(w, statusCode, ErrorResponse{Message: message, Error: detail})
}

// WriteFieldErrors writes a {message, errors:[...]} body for validation
// failures.
func WriteFieldErrors(w http.ResponseWriter, statusCode int, message string, errs []string) {
	WriteJSON(w, statusCode, ErrorResponse{Message: message, Errors: errs})
}
