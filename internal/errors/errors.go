// Package errors provides a lightweight structured error type (RefError)
// for category-based classification across the build pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a refbuilder error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Catalog construction errors (malformed names, missing metadata)
	CategoryCatalog ErrorCategory = "catalog"

	// Manual conversion errors (external program invocation, entry resolution)
	CategoryManual ErrorCategory = "manual"

	// Build and processing errors
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// RefError is a structured error with category, severity, and context
type RefError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for RefError
type ContextFields map[string]any

// Error implements the error interface
func (e *RefError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *RefError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *RefError) WithContext(key string, value any) *RefError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new RefError
func New(category ErrorCategory, severity ErrorSeverity, message string) *RefError {
	return &RefError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Newf creates a new RefError with a formatted message
func Newf(category ErrorCategory, severity ErrorSeverity, format string, args ...any) *RefError {
	return New(category, severity, fmt.Sprintf(format, args...))
}

// Wrap creates a new RefError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *RefError {
	return &RefError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if re, ok := err.(*RefError); ok {
		return re.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a RefError
func GetCategory(err error) ErrorCategory {
	if re, ok := err.(*RefError); ok {
		return re.Category
	}
	return CategoryInternal
}

// IsFatal reports whether an error carries fatal severity. Non-RefError values
// are treated as fatal by default so unknown failures always abort the run.
func IsFatal(err error) bool {
	if re, ok := err.(*RefError); ok {
		return re.Severity == SeverityFatal
	}
	return err != nil
}
