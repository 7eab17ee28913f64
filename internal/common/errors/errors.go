// Package errors provides standardized error handling for the command agent.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRequestValidationFailed ErrorCode = "REQUEST_VALIDATION_FAILED"
	ErrCodeBatchSizeExceeded       ErrorCode = "BATCH_SIZE_EXCEEDED"

	ErrCodeProviderCallFailed      ErrorCode = "PROVIDER_CALL_FAILED"
	ErrCodeProviderTimeout         ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderResponseInvalid ErrorCode = "PROVIDER_RESPONSE_INVALID"
	ErrCodeAllProvidersFailed      ErrorCode = "ALL_PROVIDERS_FAILED"
	ErrCodeNoProvidersConfigured   ErrorCode = "NO_PROVIDERS_CONFIGURED"

	ErrCodeCacheUnavailable   ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeHistoryWriteFailed ErrorCode = "HISTORY_WRITE_FAILED"
	ErrCodeHistoryQueryFailed ErrorCode = "HISTORY_QUERY_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewRequestValidationError creates a non-retryable request validation error.
func NewRequestValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestValidationFailed,
		Message:   "Command request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBatchSizeExceededError creates a non-retryable batch admission error.
func NewBatchSizeExceededError(size, max int) *StandardError {
	return &StandardError{
		Code:      ErrCodeBatchSizeExceeded,
		Message:   "Batch size exceeds the configured maximum",
		Details:   fmt.Sprintf("size: %d, max: %d", size, max),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderCallFailedError creates a retryable provider transport error.
func NewProviderCallFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderCallFailed,
		Message:   "AI provider call failed",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTimeoutError creates a retryable provider timeout error.
func NewProviderTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   "AI provider call timed out",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderResponseInvalidError creates a non-retryable response validation error.
func NewProviderResponseInvalidError(provider, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderResponseInvalid,
		Message:   "AI provider returned an invalid parsing result",
		Details:   fmt.Sprintf("provider: %s, %s", provider, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAllProvidersFailedError aggregates the final fallback failure.
func NewAllProvidersFailedError(lastErr string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAllProvidersFailed,
		Message:   "All AI providers failed",
		Details:   fmt.Sprintf("last error: %s", lastErr),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoProvidersConfiguredError is returned when the registry is empty.
func NewNoProvidersConfiguredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoProvidersConfigured,
		Message:   "No AI providers configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache backend error. It is
// logged at the cache boundary and never propagated to callers.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache backend unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryWriteFailedError creates a retryable history persistence error.
func NewHistoryWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryWriteFailed,
		Message:   "Failed to record command history",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryQueryFailedError creates a retryable history query error.
func NewHistoryQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryQueryFailed,
		Message:   "Failed to query command history",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// IsRetryable reports whether err is (or wraps) a retryable StandardError.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// CodeOf extracts the error code from a StandardError anywhere in the
// chain, or UNKNOWN_ERROR.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrorCode("UNKNOWN_ERROR")
}
