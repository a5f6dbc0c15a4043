// Package errors defines the error taxonomy of the validation service.
//
// Three kinds of failure exist by design: input invalidity is absorbed into
// a per-ticket verdict and never propagates as an error, calendar invariant
// violations are fatal and abort the run, and gateway failures are tolerated
// per platform. Errors carried through this package are only the latter two
// plus configuration problems; there is no logged-and-ignored category.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Category represents the broad class of an error.
type Category string

const (
	// CategoryCalendar marks a violated business-calendar invariant, such as
	// the bounded draw-date scan running off its limit. Always fatal to the
	// current validation run.
	CategoryCalendar Category = "calendar"

	// CategoryGateway marks a failure fetching or decoding raw event data.
	// The orchestrator's host may proceed with the platforms that succeeded.
	CategoryGateway Category = "gateway"

	// CategoryConfiguration marks invalid service or matching configuration.
	CategoryConfiguration Category = "configuration"

	// CategoryValidation marks a malformed request to the service itself,
	// not a per-ticket verdict.
	CategoryValidation Category = "validation"

	// CategoryInternal marks unexpected programming errors.
	CategoryInternal Category = "internal"
)

// Code identifies a specific error condition within a category.
type Code string

const (
	// Calendar codes
	CodeDrawDateScanExceeded Code = "draw_date_scan_exceeded"
	CodeInvalidInstant       Code = "invalid_instant"

	// Gateway codes
	CodeFetchFailed   Code = "fetch_failed"
	CodeFileNotFound  Code = "file_not_found"
	CodeMalformedData Code = "malformed_data"

	// Configuration codes
	CodeInvalidConfig Code = "invalid_config"
	CodeMissingConfig Code = "missing_config"

	// Validation codes
	CodeMissingField Code = "missing_field"
	CodeInvalidValue Code = "invalid_value"

	// Internal codes
	CodeUnexpected Code = "unexpected_error"
)

// ServiceError is the base error type for all application errors.
type ServiceError struct {
	Category   Category          `json:"category"`
	Code       Code              `json:"code"`
	Message    string            `json:"message"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional key-value information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the error must abort the current validation run.
// Calendar invariant violations are never recoverable: continuing would
// produce silently-wrong eligibility windows.
func (e *ServiceError) IsFatal() bool {
	return e.Category == CategoryCalendar || e.Category == CategoryInternal
}

// ExitCode returns the process exit code for the error category.
func (e *ServiceError) ExitCode() int {
	switch e.Category {
	case CategoryGateway:
		return 2
	case CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryCalendar, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext attaches a key-value pair to the error.
func (e *ServiceError) WithContext(key string, value interface{}) *ServiceError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new ServiceError with a captured stack trace.
func New(category Category, code Code, message string) *ServiceError {
	return &ServiceError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with category and code context.
func Wrap(err error, category Category, code Code, message string) *ServiceError {
	if err == nil {
		return nil
	}

	return &ServiceError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// CalendarError creates a fatal calendar invariant error.
func CalendarError(code Code, detail string) *ServiceError {
	message := fmt.Sprintf("calendar invariant violated: %s", detail)
	return New(CategoryCalendar, code, message)
}

// GatewayError creates a data gateway error for the given source.
func GatewayError(code Code, source string, err error) *ServiceError {
	var message string
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("source not found: %s", source)
	case CodeMalformedData:
		message = fmt.Sprintf("malformed data in source: %s", source)
	default:
		message = fmt.Sprintf("failed to fetch from source: %s", source)
	}

	result := New(CategoryGateway, code, message)
	if err != nil {
		result = Wrap(err, CategoryGateway, code, message)
	}
	return result.WithContext("source", source)
}

// ConfigurationError creates a configuration error for the given setting.
func ConfigurationError(code Code, setting string, err error) *ServiceError {
	var message string
	switch code {
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
	default:
		message = fmt.Sprintf("invalid configuration for %s", setting)
	}

	result := New(CategoryConfiguration, code, message)
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	}
	return result.WithContext("setting", setting)
}

// RequestError creates a validation error for a malformed service request.
func RequestError(code Code, field string, err error) *ServiceError {
	var message string
	switch code {
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
	default:
		message = fmt.Sprintf("invalid value for field '%s'", field)
	}

	result := New(CategoryValidation, code, message)
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	}
	return result.WithContext("field", field)
}

// IsServiceError checks whether an error is a ServiceError.
func IsServiceError(err error) bool {
	_, ok := err.(*ServiceError)
	return ok
}

// AsServiceError extracts a ServiceError from an error chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}

// IsCalendarInvariant reports whether the error chain contains a fatal
// calendar invariant violation.
func IsCalendarInvariant(err error) bool {
	if serviceErr, ok := AsServiceError(err); ok {
		return serviceErr.Category == CategoryCalendar
	}
	return false
}

// Summary aggregates multiple errors for reporting.
type Summary struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
	Errors     []*ServiceError  `json:"errors"`
}

// NewSummary builds a summary over the given errors.
func NewSummary(errs []*ServiceError) *Summary {
	summary := &Summary{
		Total:      len(errs),
		ByCategory: make(map[Category]int),
		Errors:     errs,
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
	}

	return summary
}

// Error returns a formatted message for the summary.
func (s *Summary) Error() string {
	if s.Total == 0 {
		return "no errors"
	}
	if s.Total == 1 {
		return s.Errors[0].Error()
	}

	var parts []string
	for category, count := range s.ByCategory {
		parts = append(parts, fmt.Sprintf("%s: %d", category, count))
	}
	return fmt.Sprintf("%d errors occurred (%s)", s.Total, strings.Join(parts, ", "))
}

// ExitCode returns the highest priority exit code across all errors.
func (s *Summary) ExitCode() int {
	if s.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range s.Errors {
		if code := err.ExitCode(); code > maxCode {
			maxCode = code
		}
	}
	return maxCode
}
