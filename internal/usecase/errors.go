package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrorNotFound      ErrorCode = "NOT_FOUND"
	ErrorNotPublished  ErrorCode = "NOT_PUBLISHED"
	ErrorNoCredentials ErrorCode = "NO_CREDENTIALS"
	ErrorRateLimited   ErrorCode = "RATE_LIMITED"
	ErrorUpstream      ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrorLookupFailed  ErrorCode = "LOOKUP_FAILED"
	ErrorInternal      ErrorCode = "INTERNAL_ERROR"
)

// Error is the typed failure crossing the usecase boundary. Code drives the
// HTTP mapping, Reason is an operator-facing tag that never reaches guests.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// NewInvalidInput is for boundary layers rejecting a request before any
// usecase runs (missing path parameter, unparseable body).
func NewInvalidInput(reason string) *Error {
	return newError(ErrorInvalidInput, reason, nil)
}
