// Package response provides helpers for writing consistent JSON HTTP
// responses. Every API handler sends JSON back to the client; rather
// than repeating the same header/status/encode lines everywhere, they
// are centralised here, and error responses always share one envelope
// shape so API consumers know what to expect.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list…).
// Error responses always look like:
//
//	{ "status": "error", "error": "field Name is required" }
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

// Status string constants — a typo in a raw literal would silently send
// the wrong status; these are caught by the compiler.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data JSON-encoded with the given HTTP status code.
//
// Order matters: Header() → WriteHeader() → body. Once WriteHeader (or
// the first body write) happens, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Encode streams straight into w, no intermediate buffer, and
	// appends a trailing newline — handy when curling the API.
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
// Use for unexpected failures (storage errors, decode errors, etc.).
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts validator field errors into a single
// human-readable Response, one plain-English clause per failing field,
// joined with ", ".
//
// Example:
//
//	{ "status": "error", "error": "field Name is required, field Email must be a valid email address" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}
