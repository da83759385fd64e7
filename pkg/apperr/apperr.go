// Package apperr defines the application error taxonomy and its mapping to
// HTTP status codes. Store-layer failures are wrapped into one of these
// kinds and resolved to a status at the API boundary; anything unclassified
// falls through as a server error.
package apperr

import (
	"errors"
	"net/http"
)

// Sentinel kinds. Wrap them with fmt.Errorf("...: %w", apperr.ErrNotFound)
// or attach a user-facing message with New.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrServer     = errors.New("server error")
)

// Error carries a user-facing message alongside its taxonomy kind.
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }

// Unwrap lets errors.Is match the taxonomy sentinel.
func (e *Error) Unwrap() error { return e.kind }

// New builds a taxonomy error with a message that is safe to surface
// verbatim to the client.
func New(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Validation(message string) *Error { return New(ErrValidation, message) }
func Auth(message string) *Error       { return New(ErrAuth, message) }
func NotFound(message string) *Error   { return New(ErrNotFound, message) }
func Conflict(message string) *Error   { return New(ErrConflict, message) }

// Status resolves err to its HTTP status code. Unclassified errors are 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe message for err. Unclassified errors get
// a generic message so internals never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.message
	}
	return "Server error"
}
