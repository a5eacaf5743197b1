package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeDecode       ErrorType = "decode_failure"
	ErrorTypePrecondition ErrorType = "precondition_violation"
	ErrorTypeNumeric      ErrorType = "numeric_fault"
)

// ErrEmptyBaselines is returned when a memo classification is requested
// without any baseline histogram.
var ErrEmptyBaselines = errors.New("baseline histogram collection is empty")

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewDecodeError reports input that could not be read or decoded into pixels.
func NewDecodeError(message string, cause error) *AppError {
	return newAppError(ErrorTypeDecode, http.StatusUnprocessableEntity, message, cause)
}

// NewPreconditionError reports a broken caller contract, such as an empty
// baseline collection. These are programming errors and are never swallowed.
func NewPreconditionError(message string, cause error) *AppError {
	return newAppError(ErrorTypePrecondition, http.StatusBadRequest, message, cause)
}

// NewNumericError reports an unexpected failure inside a pixel computation.
func NewNumericError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNumeric, http.StatusInternalServerError, message, cause)
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsSafeDefault reports whether err is a data condition that classification
// absorbs into a negative verdict, as opposed to a caller bug.
func IsSafeDefault(err error) bool {
	return err != nil && !IsType(err, ErrorTypePrecondition)
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetType returns the error category, or ErrorTypeInternal for foreign errors.
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}
