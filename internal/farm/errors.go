package farm

import (
	"fmt"
)

// ErrorCode classifies a farm client error.
type ErrorCode string

const (
	// ErrCodeSubmission indicates a transport-level failure reaching the
	// farm web service. Timeouts are reported identically to connection
	// failures.
	ErrCodeSubmission ErrorCode = "SUBMISSION_ERROR"
	// ErrCodeProtocol indicates a 2xx response whose body could not be
	// parsed, which points at a service-side malfunction.
	ErrCodeProtocol ErrorCode = "PROTOCOL_ERROR"
	// ErrCodeRejection indicates a structured non-2xx rejection from the
	// farm.
	ErrCodeRejection ErrorCode = "FARM_REJECTION"
)

// FarmError represents an error talking to the farm web service.
type FarmError struct {
	Code       ErrorCode
	Message    string
	StatusCode int    // HTTP status for rejections, 0 otherwise
	Body       string // farm error body, surfaced verbatim for diagnostics
	Cause      error
}

// Error implements the error interface.
func (e *FarmError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *FarmError) Unwrap() error {
	return e.Cause
}

// NewSubmissionError creates an error for transport failures.
func NewSubmissionError(message string, cause error) *FarmError {
	return &FarmError{
		Code:    ErrCodeSubmission,
		Message: message,
		Cause:   cause,
	}
}

// NewProtocolError creates an error for unparseable success responses.
func NewProtocolError(message string, body string, cause error) *FarmError {
	return &FarmError{
		Code:    ErrCodeProtocol,
		Message: message + "; the farm web service may need a restart",
		Body:    body,
		Cause:   cause,
	}
}

// NewRejectionError creates an error for structured farm rejections.
func NewRejectionError(statusCode int, body string) *FarmError {
	return &FarmError{
		Code:       ErrCodeRejection,
		Message:    "farm rejected the request",
		StatusCode: statusCode,
		Body:       body,
	}
}

// IsSubmissionError checks if the error is a transport failure.
func IsSubmissionError(err error) bool {
	return hasCode(err, ErrCodeSubmission)
}

// IsProtocolError checks if the error is an unparseable success response.
func IsProtocolError(err error) bool {
	return hasCode(err, ErrCodeProtocol)
}

// IsRejectionError checks if the error is a farm rejection.
func IsRejectionError(err error) bool {
	return hasCode(err, ErrCodeRejection)
}

func hasCode(err error, code ErrorCode) bool {
	if farmErr, ok := err.(*FarmError); ok {
		return farmErr.Code == code
	}
	return false
}
