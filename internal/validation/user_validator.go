package validation

import (
	"work-tracker/internal/config"
)

// UserValidator validates registration and login input
type UserValidator struct {
	validator *Validator
}

// NewUserValidator creates a user validator using default limits
func NewUserValidator() *UserValidator {
	return &UserValidator{validator: NewValidator()}
}

// NewUserValidatorWithConfig creates a user validator using configured limits
func NewUserValidatorWithConfig(cfg *config.Config) *UserValidator {
	return &UserValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateUsername requires a non-empty username without whitespace
func (uv *UserValidator) ValidateUsername(username string) error {
	ve := NewValidationError()

	if username == "" {
		ve.AddRequiredError("username")
		return ve
	}
	if !uv.validator.IsValidStringLength(username, 1, uv.validator.usernameMaxLength()) {
		ve.AddInvalidLengthError("username", username, 0, uv.validator.usernameMaxLength())
	}
	if !uv.validator.IsValidUsername(username) {
		ve.AddInvalidCharacterError("username", username)
	}

	return ve.OrNil()
}

// ValidatePassword enforces the configured minimum length. The password
// itself is never stored in the error.
func (uv *UserValidator) ValidatePassword(password string) error {
	ve := NewValidationError()

	if password == "" {
		ve.AddRequiredError("password")
		return ve
	}
	if min := uv.validator.passwordMinLength(); len([]rune(password)) < min {
		ve.AddInvalidLengthError("password", nil, min, 0)
	}

	return ve.OrNil()
}

// ValidateCredentials validates both fields and reports all problems at once
func (uv *UserValidator) ValidateCredentials(username, password string) error {
	ve := NewValidationError()
	ve.Merge("username", uv.ValidateUsername(username))
	ve.Merge("password", uv.ValidatePassword(password))
	return ve.OrNil()
}
