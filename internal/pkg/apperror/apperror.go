package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError independently of the transport.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindInvalidInput Kind = "invalid_input"
	KindInvalidState Kind = "invalid_state"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// AppError is a custom error type that includes an HTTP status code and a taxonomy kind.
type AppError struct {
	Kind    Kind   // Taxonomy kind (e.g., not_found, forbidden)
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Kind:    kindForCode(code),
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Kind:    kindForCode(code),
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message)
}

func InvalidInput(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// InvalidState reports an operation that is not allowed in the record's current state.
func InvalidState(message string) *AppError {
	return &AppError{Kind: KindInvalidState, Code: http.StatusConflict, Message: message}
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func kindForCode(code int) Kind {
	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return KindInvalidInput
	case http.StatusConflict:
		return KindConflict
	default:
		return KindInternal
	}
}
