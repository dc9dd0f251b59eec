package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error constructors

// Validation creates a 400 error for malformed or out-of-range input
func Validation(message string, err error) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// Unauthorized creates a 401 error
func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

// Forbidden creates a 403 error
func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

// NotFound creates a 404 error
func NotFound(message string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

// Conflict creates a 409 error
func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// Internal creates a 500 error
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Domain-specific errors

var (
	ErrDriverNotFound       = NotFound("Driver profile not found", nil)
	ErrPassengerNotFound    = NotFound("Passenger profile not found", nil)
	ErrRideNotFound         = NotFound("Ride not found", nil)
	ErrRequestNotFound      = NotFound("Ride request not found or not owned by this driver", nil)
	ErrConversationNotFound = NotFound("Conversation for this ride not found", nil)
	ErrUserNotFound         = NotFound("User not found", nil)

	ErrInvalidVehicle   = Validation("Invalid vehicle selection or vehicle not owned by this driver", nil)
	ErrDuplicateRequest = Conflict("You have already requested this ride", nil)
	ErrEmailTaken       = Conflict("Email already registered", nil)
	ErrPlateTaken       = Conflict("Number plate already registered", nil)

	ErrNotMember          = Forbidden("You are not a member of this conversation", nil)
	ErrInvalidCredentials = Unauthorized("Invalid email or password", nil)
	ErrOTPNotVerified     = Validation("Email has not been verified", nil)
	ErrInvalidOTP         = Validation("Invalid verification code", nil)
)

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError attempts to convert an error to AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	// Return generic internal error if not an AppError
	return Internal("An unexpected error occurred", err)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
