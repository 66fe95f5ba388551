package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrGeocoderUnreachable = errors.New("geocoder unreachable")
	ErrGeocoderBadResponse = errors.New("geocoder returned malformed response")
)

// ValidationError reports which required fields were missing or malformed.
// The creation is aborted before any side effect when this is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// Messages returns one user-facing message per offending field.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f+" is required")
	}
	return msgs
}

// GeocodingFailedError aborts event creation when the submitted address
// cannot be resolved to coordinates. Err is nil when the upstream simply
// returned zero candidates.
type GeocodingFailedError struct {
	Query string
	Err   error
}

func (e *GeocodingFailedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no geocoding results for %q", e.Query)
	}
	return fmt.Sprintf("geocoding %q: %v", e.Query, e.Err)
}

func (e *GeocodingFailedError) Unwrap() error { return e.Err }

// UploadRejectedError rejects a single uploaded file: wrong type, over the
// per-file size cap, or over the per-event count cap.
type UploadRejectedError struct {
	Filename string
	Reason   string
}

func (e *UploadRejectedError) Error() string {
	if e.Filename == "" {
		return "upload rejected: " + e.Reason
	}
	return fmt.Sprintf("upload %q rejected: %s", e.Filename, e.Reason)
}
