package errors

import (
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypePermission
	ErrorTypeConflict
	ErrorTypeAuthentication
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeValidation:     "validation",
	ErrorTypeNotFound:       "not_found",
	ErrorTypeDatabase:       "database",
	ErrorTypeInvalidInput:   "invalid_input",
	ErrorTypeTimeout:        "timeout",
	ErrorTypePermission:     "permission",
	ErrorTypeConflict:       "conflict",
	ErrorTypeAuthentication: "authentication",
}

// String returns the string representation of the error type
func (et ErrorType) String() string {
	if name, ok := errorTypeNames[et]; ok {
		return name
	}
	return "unknown"
}

// AppError is the structured error passed between the repository, service
// and CLI layers.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same type and code.
func (e *AppError) Is(target error) bool {
	appErr, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == appErr.Type && e.Code == appErr.Code
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetContext retrieves context information from the error
func (e *AppError) GetContext(key string) (interface{}, bool) {
	if e.Context == nil {
		return nil, false
	}
	value, exists := e.Context[key]
	return value, exists
}
