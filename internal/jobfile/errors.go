package jobfile

import (
	"fmt"
)

// ParseError represents a failure reading or decoding a job file.
type ParseError struct {
	Line    int
	Column  int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("job file line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("job file: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a parse error with source location, when known.
func NewParseError(line, column int, message string, cause error) *ParseError {
	return &ParseError{Line: line, Column: column, Message: message, Cause: cause}
}

// IsParseError checks if the error is a job file parse error.
func IsParseError(err error) bool {
	_, ok := err.(*ParseError)
	return ok
}
