package submit

import (
	"fmt"
)

// ErrorCode classifies an orchestration error.
type ErrorCode string

const (
	// ErrCodeState indicates a submission was driven through an invalid
	// state transition.
	ErrCodeState ErrorCode = "STATE_ERROR"
	// ErrCodeChain indicates a dependency chain or batch was aborted
	// because one link failed.
	ErrCodeChain ErrorCode = "CHAIN_ABORTED"
	// ErrCodeHook indicates a pre-submit hook failed or misbehaved.
	ErrCodeHook ErrorCode = "HOOK_ERROR"
)

// SubmitError represents an orchestration failure.
type SubmitError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SubmitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *SubmitError) Unwrap() error {
	return e.Cause
}

// NewStateError creates an error for an invalid state transition.
func NewStateError(message string) *SubmitError {
	return &SubmitError{Code: ErrCodeState, Message: message}
}

// NewChainError creates an error for an aborted chain or batch. link
// names the submission that failed.
func NewChainError(link string, cause error) *SubmitError {
	return &SubmitError{
		Code:    ErrCodeChain,
		Message: fmt.Sprintf("chain aborted at %q", link),
		Cause:   cause,
	}
}

// NewHookError creates an error for a failing pre-submit hook.
func NewHookError(message string, cause error) *SubmitError {
	return &SubmitError{Code: ErrCodeHook, Message: message, Cause: cause}
}

// IsStateError checks if the error is an invalid state transition.
func IsStateError(err error) bool {
	return hasCode(err, ErrCodeState)
}

// IsChainError checks if the error is an aborted chain.
func IsChainError(err error) bool {
	return hasCode(err, ErrCodeChain)
}

// IsHookError checks if the error is a hook failure.
func IsHookError(err error) bool {
	return hasCode(err, ErrCodeHook)
}

func hasCode(err error, code ErrorCode) bool {
	if submitErr, ok := err.(*SubmitError); ok {
		return submitErr.Code == code
	}
	return false
}
