// Package utils provides logging, error classification and URL helpers
// shared by the extraction engine, the CLI and the server.
package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns string representation of error severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorCode represents predefined error codes for categorization
type ErrorCode string

const (
	// Input and policy errors
	ErrCodeInvalidURL ErrorCode = "INVALID_URL"
	ErrCodeURLBlocked ErrorCode = "URL_BLOCKED"

	// Network related errors
	ErrCodeNetworkTimeout ErrorCode = "NETWORK_TIMEOUT"
	ErrCodeNetworkFailure ErrorCode = "NETWORK_FAILURE"
	ErrCodeHTTPStatus     ErrorCode = "HTTP_STATUS"
	ErrCodeRateLimited    ErrorCode = "RATE_LIMITED"

	// Response handling errors
	ErrCodeContentType  ErrorCode = "CONTENT_TYPE"
	ErrCodeBodyTooLarge ErrorCode = "BODY_TOO_LARGE"
	ErrCodeParsingError ErrorCode = "PARSING_ERROR"

	// Infrastructure errors
	ErrCodeCacheError      ErrorCode = "CACHE_ERROR"
	ErrCodeInvalidConfig   ErrorCode = "INVALID_CONFIG"
	ErrCodeOutputFailed    ErrorCode = "OUTPUT_FAILED"
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"

	// Generic errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeUnknown  ErrorCode = "UNKNOWN_ERROR"
)

// StructuredError provides rich error information for callers at the API boundary
type StructuredError struct {
	Code        ErrorCode              `json:"code"`
	Message     string                 `json:"message"`
	Severity    ErrorSeverity          `json:"severity"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Cause       error                  `json:"-"`
	Timestamp   time.Time              `json:"timestamp"`
	Retryable   bool                   `json:"retryable"`
	UserMessage string                 `json:"user_message,omitempty"`
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error unwrapping
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target error code
func (e *StructuredError) Is(target error) bool {
	if se, ok := target.(*StructuredError); ok {
		return e.Code == se.Code
	}
	return false
}

// ErrorBuilder provides a fluent interface for creating structured errors
type ErrorBuilder struct {
	error *StructuredError
}

// NewError creates a new error builder
func NewError(code ErrorCode, message string) *ErrorBuilder {
	return &ErrorBuilder{
		error: &StructuredError{
			Code:      code,
			Message:   message,
			Severity:  SeverityError,
			Timestamp: time.Now(),
		},
	}
}

// WithSeverity sets the error severity
func (eb *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	eb.error.Severity = severity
	return eb
}

// WithCause sets the underlying cause
func (eb *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	eb.error.Cause = cause
	return eb
}

// WithContext adds contextual information
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	if eb.error.Context == nil {
		eb.error.Context = make(map[string]interface{})
	}
	eb.error.Context[key] = value
	return eb
}

// WithRetryable marks the error as retryable
func (eb *ErrorBuilder) WithRetryable(retryable bool) *ErrorBuilder {
	eb.error.Retryable = retryable
	return eb
}

// WithUserMessage sets a user-friendly message
func (eb *ErrorBuilder) WithUserMessage(message string) *ErrorBuilder {
	eb.error.UserMessage = message
	return eb
}

// Build returns the constructed error
func (eb *ErrorBuilder) Build() *StructuredError {
	return eb.error
}

// WrapError wraps an existing error in a structured error
func WrapError(err error, code ErrorCode, message string) *StructuredError {
	return NewError(code, message).WithCause(err).Build()
}

// CodeOf returns the code of the first StructuredError in err's chain.
// Context cancellation and timeouts are classified even when unwrapped.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	if errors.Is(err, context.Canceled) {
		return ErrCodeContextCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeNetworkTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrCodeNetworkTimeout
	}
	return ErrCodeUnknown
}

// IsRetryableError checks if an error should be retried
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Retryable
	}

	errorStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary failure",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errorStr, pattern) {
			return true
		}
	}
	return false
}

// GetUserFriendlyMessage extracts a user-friendly message from an error
func GetUserFriendlyMessage(err error) string {
	var se *StructuredError
	if !errors.As(err, &se) {
		return "An error occurred. Please try again."
	}
	if se.UserMessage != "" {
		return se.UserMessage
	}

	switch se.Code {
	case ErrCodeInvalidURL:
		return "The URL is not valid."
	case ErrCodeURLBlocked:
		return "The URL is not allowed by the security policy."
	case ErrCodeNetworkTimeout:
		return "The request timed out. Please check your internet connection and try again."
	case ErrCodeRateLimited:
		return "Too many requests. Please wait a moment before trying again."
	case ErrCodeHTTPStatus:
		return "The site answered with an error status."
	case ErrCodeContentType:
		return "The URL does not point to an HTML page."
	case ErrCodeBodyTooLarge:
		return "The page is too large to process."
	default:
		return "An unexpected error occurred. Please try again or contact support if the problem persists."
	}
}
