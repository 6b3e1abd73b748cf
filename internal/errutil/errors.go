// Package errutil provides a structured error wrapper used across the
// conversion pipeline.
package errutil

import "fmt"

// ConvertError represents a contextual conversion error.
type ConvertError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *ConvertError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// Unwrap provides compatibility with errors.Unwrap().
func (e *ConvertError) Unwrap() error {
	return e.Cause
}

// Wrap creates a contextual error.
func Wrap(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &ConvertError{
		Context: context,
		Cause:   cause,
	}
}
