// Package apperror defines the typed errors shared by the scheduling core,
// the services and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the kind of failure.
type ErrorType string

const (
	TypeValidation      ErrorType = "validation_error"
	TypeNotFound        ErrorType = "not_found"
	TypeSlotUnavailable ErrorType = "slot_unavailable"
	TypeQuotaExceeded   ErrorType = "quota_exceeded"
	TypeConflict        ErrorType = "conflict"
	TypeUnauthorized    ErrorType = "unauthorized"
	TypeInternal        ErrorType = "internal_error"
)

// AppError is an error with a type, a user facing message and the HTTP
// status it maps to.
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{Type: t, Message: message, Code: code, Details: detail}
}

// NewValidationError reports malformed input.
func NewValidationError(message string, details ...string) *AppError {
	return newError(TypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError reports an unknown entity.
func NewNotFoundError(message string, details ...string) *AppError {
	return newError(TypeNotFound, http.StatusNotFound, message, details)
}

// NewSlotUnavailableError reports a requested interval that is not bookable.
func NewSlotUnavailableError(message string, details ...string) *AppError {
	return newError(TypeSlotUnavailable, http.StatusConflict, message, details)
}

// NewQuotaExceededError reports a plan limit that has been reached.
func NewQuotaExceededError(message string, details ...string) *AppError {
	return newError(TypeQuotaExceeded, http.StatusForbidden, message, details)
}

func NewConflictError(message string, details ...string) *AppError {
	return newError(TypeConflict, http.StatusConflict, message, details)
}

func NewUnauthorizedError(message string, details ...string) *AppError {
	return newError(TypeUnauthorized, http.StatusUnauthorized, message, details)
}

func NewInternalError(message string, details ...string) *AppError {
	return newError(TypeInternal, http.StatusInternalServerError, message, details)
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

func IsValidation(err error) bool      { return IsType(err, TypeValidation) }
func IsNotFound(err error) bool        { return IsType(err, TypeNotFound) }
func IsSlotUnavailable(err error) bool { return IsType(err, TypeSlotUnavailable) }
func IsQuotaExceeded(err error) bool   { return IsType(err, TypeQuotaExceeded) }
