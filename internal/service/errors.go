package service

import (
	"fmt"
)

// ValidationError reports input rejected before any store was called.
// Tag based failures wrap validator.ValidationErrors.
type ValidationError struct {
	Field   string
	Message string
	err     error
}

func newValidationError(err error) *ValidationError {
	return &ValidationError{err: err}
}

func (e *ValidationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("validation failed: %v", e.err)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.err
}
