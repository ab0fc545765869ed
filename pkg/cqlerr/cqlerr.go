// Package cqlerr provides structured error types for cqlkit. All errors
// include a category, code, message, and retryable flag so callers can
// distinguish build-time validation failures from transport failures
// without string matching.
package cqlerr

import (
	"errors"
	"fmt"
)

// Category classifies errors by the stage that produced them.
type Category string

const (
	// CategoryValidation covers structurally invalid constraint or selector
	// combinations; these are raised before any network call.
	CategoryValidation Category = "VALIDATION"

	// CategoryQuery covers read-path failures after validation passed.
	CategoryQuery Category = "QUERY"

	// CategoryTransport covers failures propagated from the transport
	// collaborator; never reinterpreted by cqlkit.
	CategoryTransport Category = "TRANSPORT"

	// CategoryMutation covers write-path failures.
	CategoryMutation Category = "MUTATION"

	// CategoryInternal covers bugs and unexpected states.
	CategoryInternal Category = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeDuplicateKeyConstraint = "DUPLICATE_KEY_CONSTRAINT"
	CodeKeyIndexConflict       = "KEY_INDEX_CONFLICT"
	CodeBareFilter             = "BARE_FILTER"
	CodeSelectorConflict       = "SELECTOR_CONFLICT"
	CodeEmptyValues            = "EMPTY_VALUES"
	CodeMeaninglessQuery       = "MEANINGLESS_QUERY"

	// Query codes
	CodeRecordNotFound      = "RECORD_NOT_FOUND"
	CodeSubqueryNotExpanded = "SUBQUERY_NOT_EXPANDED"
	CodeFanoutNotExpanded   = "FANOUT_NOT_EXPANDED"

	// Transport codes
	CodeSendFailed = "SEND_FAILED"

	// Mutation codes
	CodeMissingKey = "MISSING_KEY"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// Error is the structured error type used throughout cqlkit.
type Error struct {
	Category  Category
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new Error.
func New(category Category, code, message string) *Error {
	return &Error{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(category Category, code, message string, cause error) *Error {
	return &Error{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a cqlkit Error.
func GetCategory(err error) Category {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a cqlkit Error.
func GetCode(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// isRetryable determines if an error code is retryable. Only transport
// sends are; validation never reaches the network and retrying it cannot
// change the outcome.
func isRetryable(category Category, code string) bool {
	return category == CategoryTransport && code == CodeSendFailed
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *Error {
	return New(CategoryValidation, code, message)
}

func NewQueryError(code, message string) *Error {
	return New(CategoryQuery, code, message)
}

func NewTransportError(message string, cause error) *Error {
	return Wrap(CategoryTransport, CodeSendFailed, message, cause)
}

func NewMutationError(code, message string) *Error {
	return New(CategoryMutation, code, message)
}

func NewInternalError(message string, cause error) *Error {
	return Wrap(CategoryInternal, CodeUnexpected, message, cause)
}
