package errors

import (
	"errors"
	"fmt"
)

// AppError represents an application error with additional context
type AppError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeUnreachable          = "UNREACHABLE"
	ErrCodeInvalidConfiguration = "INVALID_CONFIGURATION"
	ErrCodeInvalidArgument      = "INVALID_ARGUMENT"
	ErrCodeDeliveryFailure      = "DELIVERY_FAILURE"
	ErrCodeCorruptState         = "CORRUPT_STATE"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Internal: err,
	}
}

// Code extracts the AppError code from an error chain, or "" if none
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Common error constructors

// NotFound reports a named resource absent from the inventory
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Unreachable reports a failed remote execution or API call
func Unreachable(target string, err error) *AppError {
	return Wrap(err, ErrCodeUnreachable, fmt.Sprintf("failed to reach %s", target))
}

// InvalidConfiguration reports a missing or invalid required setting
func InvalidConfiguration(message string) *AppError {
	return New(ErrCodeInvalidConfiguration, message)
}

// InvalidArgument reports a caller-supplied value outside the valid domain
func InvalidArgument(message string) *AppError {
	return New(ErrCodeInvalidArgument, message)
}

// DeliveryFailure reports a webhook that did not acknowledge the notification
func DeliveryFailure(message string, err error) *AppError {
	return Wrap(err, ErrCodeDeliveryFailure, message)
}

// CorruptState reports unreadable persisted state
func CorruptState(message string, err error) *AppError {
	return Wrap(err, ErrCodeCorruptState, message)
}

// IsNotFound reports whether err carries the NotFound code
func IsNotFound(err error) bool {
	return Code(err) == ErrCodeNotFound
}

// IsUnreachable reports whether err carries the Unreachable code
func IsUnreachable(err error) bool {
	return Code(err) == ErrCodeUnreachable
}

// IsInvalidArgument reports whether err carries the InvalidArgument code
func IsInvalidArgument(err error) bool {
	return Code(err) == ErrCodeInvalidArgument
}
