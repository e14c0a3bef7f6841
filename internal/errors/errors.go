// Package errors provides custom error types for the Bookkeeper API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"fmt"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
// Validation errors additionally carry the offending field, its value and
// a requirement string describing what would have been accepted.
type AppError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Field       string `json:"field,omitempty"`
	Value       any    `json:"value,omitempty"`
	Requirement string `json:"requirement,omitempty"`
	StatusCode  int    `json:"-"`
	Internal    error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, ErrInvalidInput) matches customised copies of a sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:        sentinel.Code,
		Message:     message,
		Field:       sentinel.Field,
		Value:       sentinel.Value,
		Requirement: sentinel.Requirement,
		StatusCode:  sentinel.StatusCode,
		Internal:    sentinel.Internal,
	}
}

// InvalidInput creates an INVALID_INPUT error naming the field, the value
// that was supplied and what the field requires.
func InvalidInput(field string, value any, requirement string) *AppError {
	return &AppError{
		Code:        ErrInvalidInput.Code,
		Message:     fmt.Sprintf("Invalid %s: %v (%s)", field, value, requirement),
		Field:       field,
		Value:       value,
		Requirement: requirement,
		StatusCode:  ErrInvalidInput.StatusCode,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount    = &AppError{Code: "INVALID_AMOUNT", Message: "Invalid amount", StatusCode: http.StatusBadRequest}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConcurrentUpdate = &AppError{Code: "CONCURRENT_UPDATE", Message: "The resource was modified concurrently", StatusCode: http.StatusConflict}
	ErrInternalServer   = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User and group errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrGroupNotFound  = &AppError{Code: "GROUP_NOT_FOUND", Message: "Group not found", StatusCode: http.StatusNotFound}
)

// Source errors.
var (
	ErrSourceNotFound = &AppError{Code: "SOURCE_NOT_FOUND", Message: "Source not found", StatusCode: http.StatusNotFound}
)

// Expense errors.
var (
	ErrExpenseNotFound    = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrInvalidExpense     = &AppError{Code: "INVALID_EXPENSE", Message: "Operation is not valid for this expense", StatusCode: http.StatusBadRequest}
	ErrRecurrenceNotFound = &AppError{Code: "RECURRENCE_NOT_FOUND", Message: "Recurring expense not found", StatusCode: http.StatusNotFound}
)
