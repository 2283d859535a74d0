package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatParse      ErrorCategory = "parse"      // Malformed grader output
	ErrCatModel      ErrorCategory = "model"      // Embedding model unavailable
	ErrCatExternal   ErrorCategory = "external"   // Upstream API failure
	ErrCatStorage    ErrorCategory = "storage"    // Persistence failure
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatRateLimit  ErrorCategory = "rate_limit" // API rate limited
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatValidation,
		Code:     code,
		Message:  message,
	}
}

// ErrParse creates a parse error. Parse failures are fatal for the submission
// being graded: the mandatory Gemini signal is missing, so no partial or
// hybrid result can be produced.
func ErrParse(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatParse,
		Code:     code,
		Message:  message,
	}
}

// ErrModelUnavailable creates a model error. This is recoverable: the caller
// degrades to Gemini-only grading instead of failing the request.
func ErrModelUnavailable(message string) *DomainError {
	return &DomainError{
		Category: ErrCatModel,
		Code:     CodeModelUnavailable,
		Message:  message,
	}
}

// ErrExternal creates an upstream API error.
func ErrExternal(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatExternal,
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// ErrStorage creates a persistence error.
func ErrStorage(message string) *DomainError {
	return &DomainError{
		Category: ErrCatStorage,
		Code:     CodeStoreFailed,
		Message:  message,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     "NOT_FOUND",
		Message:  fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeMissingField     = "MISSING_FIELD"
	CodeInvalidGrade     = "INVALID_GRADE"
	CodeEmptyText        = "EMPTY_TEXT"
	CodeMalformedOutput  = "MALFORMED_GRADER_OUTPUT"
	CodeModelUnavailable = "MODEL_UNAVAILABLE"
	CodeEmbeddingFailed  = "EMBEDDING_FAILED"
	CodeGeminiFailed     = "GEMINI_REQUEST_FAILED"
	CodeStoreFailed      = "STORE_FAILED"
)
