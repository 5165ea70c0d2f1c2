// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// RESPONSE SHAPES:
//
//	success (read):      the record or list, as-is
//	success (mutation):  { "message": "...", "record": {...} }
//	error:               { "detail": "..." }
//	validation error:    { "detail": "...", "violations": ["...", ...] }
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/admissions-api/internal/validation"
)

// Error is the envelope for every failed request. Detail is always
// set; Violations is populated only for validation failures so API
// consumers can machine-read the full constraint list.
type Error struct {
	Detail     string   `json:"detail"`
	Violations []string `json:"violations,omitempty"`
}

// Message wraps a successful mutation: a confirmation string plus the
// record as stored (derived fields populated).
type Message struct {
	Message string `json:"message"`
	Record  any    `json:"record,omitempty"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status
// code. data may be a struct, map, slice, or primitive.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes. Once
// WriteHeader is called the headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard error envelope.
func GeneralError(err error) Error {
	return Error{Detail: err.Error()}
}

// ValidationError converts a *validation.Error into the error envelope,
// carrying every violation both joined in detail and as a list.
func ValidationError(err *validation.Error) Error {
	return Error{
		Detail:     err.Error(),
		Violations: err.Violations,
	}
}
