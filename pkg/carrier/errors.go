package carrier

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of a pipeline error.
// The set is closed: every failure surfaced by the core is exactly one of these.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeAuth               ErrorCode = "AUTH_ERROR"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeUpstream           ErrorCode = "UPSTREAM_ERROR"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeNetwork            ErrorCode = "NETWORK_ERROR"
	CodeMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"
	CodeUnsupportedCarrier ErrorCode = "UNSUPPORTED_CARRIER"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error from the rating pipeline.
// Retryable is advisory metadata for the caller; the pipeline never retries.
type Error struct {
	Code      ErrorCode
	Message   string
	Status    int // HTTP status when the failure maps to one, else 0
	Retryable bool
	Details   any
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is: two pipeline errors match on code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new pipeline error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithStatus adds the HTTP status that produced the error.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// WithRetryable marks whether a fresh attempt is reasonable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithDetails attaches a structured details payload (field diagnostics,
// raw carrier error body).
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// WithCause adds the underlying cause for diagnostics.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// IsRetryable returns true if the error is a pipeline error marked retryable.
func IsRetryable(err error) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Retryable
	}
	return false
}

// CodeOf returns the error code of a pipeline error, or CodeInternal for
// anything else that leaked through.
func CodeOf(err error) ErrorCode {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return CodeInternal
}
