package errors

import (
	"fmt"
	"net/http"
)

// ErrorType classifies application errors for the HTTP boundary
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeStorage       ErrorType = "storage_unavailable"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError is a structured application error carrying an HTTP status
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Internal   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewConfigurationError reports missing or invalid required configuration.
// A recording request fails with this when the IP salt is unset.
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConfiguration,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewStorageError reports a storage backend that could not be reached.
// Not retried here; any retry policy belongs to the caller.
func NewStorageError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorage,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}
