// Package domainerrors provides coded errors for the reputation engine.
// Services attach a stable code to every failure so transports can map them
// to status codes and callers can branch without string matching.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure. Every failure is detected before any state
// mutation and aborts the whole operation; there is no recoverable/fatal
// distinction at this layer.
type Code string

const (
	// CodeInvalidDomain is returned when a domain ID is outside the
	// allocated range.
	CodeInvalidDomain Code = "invalid_domain"
	// CodeNotFound is returned when a referenced record is absent.
	CodeNotFound Code = "not_found"
	// CodeValidation covers malformed input: empty required strings,
	// out-of-range weights or levels, weight sums over 100.
	CodeValidation Code = "validation"
	// CodeSelfReference is returned when a caller targets themselves where
	// that is forbidden (self-endorsement).
	CodeSelfReference Code = "self_reference"
	// CodeUnauthorized is returned when the caller lacks the capability for
	// the attempted action or fails a privacy gate on a read.
	CodeUnauthorized Code = "unauthorized"
	// CodeConflict covers state conflicts such as re-verifying an already
	// verified activity.
	CodeConflict Code = "conflict"
	// CodeInternal covers infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It wraps an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to an HTTP status for the transport layer.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidDomain, CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeSelfReference:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
