package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound     ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid      ErrorCode = "CONFIG_INVALID"
	ErrCodeMissingCredentials ErrorCode = "MISSING_CREDENTIALS"

	// Editor errors
	ErrCodeNoActiveDocument  ErrorCode = "NO_ACTIVE_DOCUMENT"
	ErrCodeEditorUnavailable ErrorCode = "EDITOR_UNAVAILABLE"

	// Command execution errors
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"

	// Reporting errors
	ErrCodeReportRejected ErrorCode = "REPORT_REJECTED"
	ErrCodeReportFailed   ErrorCode = "REPORT_FAILED"

	// Daemon errors
	ErrCodeDaemonRunning ErrorCode = "DAEMON_RUNNING"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// PulseError represents a structured error with context
type PulseError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *PulseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PulseError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *PulseError) WithDetail(key string, value interface{}) *PulseError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *PulseError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new PulseError
func New(code ErrorCode, message string) *PulseError {
	return &PulseError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a PulseError
func Wrap(err error, code ErrorCode, message string) *PulseError {
	return &PulseError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is reports whether the first PulseError in err's chain has the given code.
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from the first PulseError in the chain.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	pulseErr, ok := err.(*PulseError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return pulseErr.Code
}

// As returns the first PulseError in err's chain.
func As(err error) (*PulseError, bool) {
	for err != nil {
		if pulseErr, ok := err.(*PulseError); ok {
			return pulseErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}
