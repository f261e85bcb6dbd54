// LOCATION: internal/errors/errors.go
//
// This file provides:
// - Process exit codes
// - Sentinel errors for all error conditions
// - Config error category check
// - ExitCode mapping
// - Error wrapping utilities

package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Process exit codes
// ============================================================================

const (
	ExitOK       = 0
	ExitInternal = 1
	ExitUsage    = 2
	ExitConfig   = 3
	ExitCorrupt  = 4
)

// ExitName returns a human-readable name for an exit code.
func ExitName(code int) string {
	switch code {
	case ExitOK:
		return "OK"
	case ExitInternal:
		return "Internal"
	case ExitUsage:
		return "Usage"
	case ExitConfig:
		return "Config"
	case ExitCorrupt:
		return "CorruptArchive"
	default:
		return fmt.Sprintf("Exit(%d)", code)
	}
}

// ============================================================================
// Sentinel errors for common conditions
// ============================================================================

var (
	// Input errors
	ErrMalformedLine  = errors.New("malformed line")
	ErrCorruptArchive = errors.New("corrupt archive")
	ErrNoInputFiles   = errors.New("no input files")
	ErrInputDir       = errors.New("input directory not accessible")

	// Validation errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingField  = errors.New("missing required field")
	ErrUsage         = errors.New("usage error")

	// Output errors
	ErrRender = errors.New("chart render failed")
	ErrExport = errors.New("export failed")
	ErrQuery  = errors.New("query failed")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// Join is a convenience wrapper for errors.Join
var Join = errors.Join

// IsConfigError returns true if err stops the run before any processing.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrNoInputFiles) ||
		errors.Is(err, ErrInputDir)
}

// ============================================================================
// Error to exit code mapping
// ============================================================================

// ExitCode maps an error returned by the pipeline to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case Is(err, ErrUsage):
		return ExitUsage
	case Is(err, ErrCorruptArchive):
		return ExitCorrupt
	case IsConfigError(err):
		return ExitConfig
	default:
		return ExitInternal
	}
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewMalformed creates a malformed-line error with the rejection reason.
func NewMalformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedLine, reason)
}

// NewCorrupt creates a corrupt-archive error for a file.
func NewCorrupt(path string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", path, ErrCorruptArchive)
	}
	return fmt.Errorf("%s: %w: %v", path, ErrCorruptArchive, cause)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrInvalidConfig)
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddInvalid adds an invalid value error.
func (v *ValidationErrors) AddInvalid(field string, value interface{}, reason string) {
	v.Errors = append(v.Errors, NewInvalidValue(field, value, reason))
}

// AddMissing adds a missing field error.
func (v *ValidationErrors) AddMissing(field string) {
	v.Errors = append(v.Errors, NewMissingField(field))
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the collected errors for errors.Is/As support.
func (v *ValidationErrors) Unwrap() []error {
	return v.Errors
}
