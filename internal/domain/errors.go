// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure cases.
var (
	// ErrEmptyContent indicates the content is empty or whitespace only.
	ErrEmptyContent = errors.New("content is empty")

	// ErrContentTooLong indicates the content exceeds the maximum length.
	ErrContentTooLong = errors.New("content exceeds maximum length")

	// ErrInvalidLanguage indicates an unsupported language value.
	ErrInvalidLanguage = errors.New("unsupported language")

	// ErrInvalidContentType indicates an unsupported content type.
	ErrInvalidContentType = errors.New("unsupported content type")

	// ErrModelTimeout indicates the model endpoint did not respond in time.
	ErrModelTimeout = errors.New("model service timeout")

	// ErrModelUnavailable indicates the model endpoint is not available.
	ErrModelUnavailable = errors.New("model service unavailable")

	// ErrInvalidModelResponse indicates the model response failed parsing
	// or schema validation.
	ErrInvalidModelResponse = errors.New("invalid model response format")

	// ErrRateLimited indicates too many model requests were made.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheUnavailable indicates the cache store could not be reached.
	ErrCacheUnavailable = errors.New("cache store unavailable")

	// ErrNotFixable indicates content whose violations are beyond the
	// auto-fix ceiling and must be rewritten manually.
	ErrNotFixable = errors.New("content is not auto-fixable")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// PipelineError wraps an error with the failing operation.
type PipelineError struct {
	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// WrapError creates a new PipelineError with context.
func WrapError(op string, err error, retryable bool) *PipelineError {
	return &PipelineError{
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// IsValidation reports whether an error is an input validation failure.
// Only validation errors propagate to callers as hard failures; every
// downstream dependency failure degrades instead.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrContentTooLong) ||
		errors.Is(err, ErrInvalidLanguage) ||
		errors.Is(err, ErrInvalidContentType)
}
