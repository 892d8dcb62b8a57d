package descriptor

import (
	"fmt"
)

// ValidationError represents a locally detected contract violation in a
// job descriptor, raised before any network call.
type ValidationError struct {
	Field   string // Field that failed validation
	Message string // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if the error is a descriptor validation error.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}
