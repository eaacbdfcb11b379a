// Package errors provides custom error types for the bidcompare system.
// These errors enable programmatic error checking and keep the distinction
// between fetch failures, structural record problems and configuration
// mistakes visible all the way up to the CLI.
package errors

import (
	"errors"
	"fmt"
)

// Aliases for the standard library helpers, so callers need one import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// Common sentinel errors for the bidcompare system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrStructural indicates a record is missing a field or holds a value
	// of an unexpected shape at comparison time
	ErrStructural = errors.New("structural record error")

	// ErrSourceUnavailable indicates that a data source could not be read
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents a failed response from a data source endpoint
type APIError struct {
	Endpoint   string // Endpoint ID
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support. Every API error means the source is
// unusable for this run.
func (e *APIError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// FieldError reports a structural problem with one record: a logical field
// that is not mapped for a system, an attribute missing from the record, or
// a value whose shape cannot be compared.
type FieldError struct {
	System string // "truth", "source2", "source3", "correlation"
	Field  string // logical field name
	Key    string // concrete attribute name, if mapped
	Lot    string // lot of the counterpart record, when known
	Reason string
}

// Error implements the error interface
func (e *FieldError) Error() string {
	where := e.System
	if e.Lot != "" {
		where = fmt.Sprintf("%s lot %s", e.System, e.Lot)
	}
	if e.Key != "" && e.Key != e.Field {
		return fmt.Sprintf("field %s (%s) in %s: %s", e.Field, e.Key, where, e.Reason)
	}
	return fmt.Sprintf("field %s in %s: %s", e.Field, where, e.Reason)
}

// Is implements errors.Is support
func (e *FieldError) Is(target error) bool {
	return target == ErrStructural
}

// NewFieldError creates a new FieldError
func NewFieldError(system, field, key, reason string) *FieldError {
	return &FieldError{
		System: system,
		Field:  field,
		Key:    key,
		Reason: reason,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support. A payload that cannot be decoded leaves
// the source as unusable as a failed request.
func (e *ParseError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "open", "request"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *IOError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "load", "fetch"
	Resource  string // "config", "request", "endpoint"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStructural checks if an error is a structural record error
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructural)
}

// IsSourceUnavailable checks if an error means a source could not be read
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
