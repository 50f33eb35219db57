package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents client error codes
type ErrorCode string

const (
	ErrCodeInvalidIdentifier    ErrorCode = "INVALID_IDENTIFIER"
	ErrCodePeerUnavailable      ErrorCode = "PEER_UNAVAILABLE"
	ErrCodeInitializationFailed ErrorCode = "INITIALIZATION_FAILED"
	ErrCodeRateLimited          ErrorCode = "RATE_LIMITED"
	ErrCodeUpdateFailed         ErrorCode = "UPDATE_FAILED"
	ErrCodeTickFailed           ErrorCode = "TICK_FAILED"
)

// PresenceError represents a client error with code and cause. RetryAfter is
// set only for ErrCodeRateLimited and carries the exact remaining cooldown.
type PresenceError struct {
	Code       ErrorCode
	Message    string
	RetryAfter time.Duration
	Cause      error
}

// Error implements error interface
func (e *PresenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PresenceError) Unwrap() error {
	return e.Cause
}

// New creates a new client error
func New(code ErrorCode, message string) *PresenceError {
	return &PresenceError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a client error
func Wrap(err error, code ErrorCode, message string) *PresenceError {
	return &PresenceError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewRateLimited reports a local policy rejection with the exact remaining
// wait. Callers should wait at least RetryAfter before trying again.
func NewRateLimited(retryAfter time.Duration) *PresenceError {
	return &PresenceError{
		Code:       ErrCodeRateLimited,
		Message:    fmt.Sprintf("rate limited, retry in %s", retryAfter),
		RetryAfter: retryAfter,
	}
}

// IsPresenceError checks if error is a PresenceError
func IsPresenceError(err error) bool {
	_, ok := err.(*PresenceError)
	return ok
}

// GetPresenceError extracts a PresenceError from the error chain
func GetPresenceError(err error) *PresenceError {
	if err == nil {
		return nil
	}

	if perr, ok := err.(*PresenceError); ok {
		return perr
	}

	// Try to unwrap
	type unwrapper interface {
		Unwrap() error
	}

	if u, ok := err.(unwrapper); ok {
		return GetPresenceError(u.Unwrap())
	}

	return nil
}

// CodeOf returns the code of err, or the empty string when err carries none
func CodeOf(err error) ErrorCode {
	if perr := GetPresenceError(err); perr != nil {
		return perr.Code
	}
	return ""
}

// IsCode checks whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// RetryAfterOf extracts the remaining cooldown from a rate-limit error
func RetryAfterOf(err error) (time.Duration, bool) {
	perr := GetPresenceError(err)
	if perr == nil || perr.Code != ErrCodeRateLimited {
		return 0, false
	}
	return perr.RetryAfter, true
}
