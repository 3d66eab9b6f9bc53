package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failure by the pipeline stage that produced it.
type ErrorCode string

const (
	ErrConfiguration   ErrorCode = "CONFIGURATION"
	ErrTranscription   ErrorCode = "TRANSCRIPTION"
	ErrModelCall       ErrorCode = "MODEL_CALL"
	ErrActionExecution ErrorCode = "ACTION_EXECUTION"
	ErrSynthesis       ErrorCode = "SYNTHESIS"
	ErrPersistence     ErrorCode = "PERSISTENCE"
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrNotFound        ErrorCode = "NOT_FOUND"
	ErrAuthentication  ErrorCode = "AUTHENTICATION"
	ErrRateLimit       ErrorCode = "RATE_LIMIT"
)

// Error is the structured error carried across package boundaries. Code
// selects the HTTP mapping, Provider names the upstream that failed, and
// Cause preserves the underlying error for errors.Is/As chains.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus overrides the HTTP status the error maps to.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider names the upstream provider that produced the error.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// IsRetryable checks if an error is retryable, unwrapping as needed.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error, unwrapping as needed.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HTTPStatusFor resolves the HTTP status an error should be reported with.
// An explicit HTTPStatus on the Error wins; otherwise the code decides.
func HTTPStatusFor(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	switch e.Code {
	case ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrAuthentication:
		return http.StatusUnauthorized
	case ErrRateLimit:
		return http.StatusTooManyRequests
	case ErrModelCall:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
