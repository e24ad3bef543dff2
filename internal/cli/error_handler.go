package cli

import (
	"fmt"

	"work-tracker/internal/errors"
	"work-tracker/internal/logging"
	"work-tracker/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other
// errors. System failures are logged before being returned.
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.ShouldLogError(err) {
		logging.Error("command failed", "operation", operation, "code", errors.GetErrorCode(err), "err", err)
	}

	// An AppError wrapping field errors reads better with its own message
	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("failed to %s: %s", operation, errors.GetUserMessage(err))
	}

	if validationErr, ok := err.(*validation.ValidationError); ok {
		return fmt.Errorf("failed to %s: %s", operation, validationErr.GetUserFriendlyMessage())
	}

	return fmt.Errorf("failed to %s: %w", operation, err)
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation)
}

// IsNotLoggedIn checks if the command failed for want of a session
func (eh *ErrorHandler) IsNotLoggedIn(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeAuthentication) &&
		errors.GetErrorCode(err) == errors.ErrNotLoggedIn.Code
}
