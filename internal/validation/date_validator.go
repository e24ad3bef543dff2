package validation

import (
	"strings"
	"time"

	"work-tracker/internal/domain"
)

// DateValidator validates date input and listing filters
type DateValidator struct {
	validator *Validator
}

// NewDateValidator creates a new date validator
func NewDateValidator() *DateValidator {
	return &DateValidator{validator: NewValidator()}
}

// ParseDate validates s as YYYY-MM-DD and returns it in local time.
// Empty input returns the zero time and no error.
func (dv *DateValidator) ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if !dv.validator.IsValidDate(s) {
		ve := NewValidationError()
		ve.AddInvalidFormatError(field, s, "YYYY-MM-DD")
		return time.Time{}, ve
	}
	return domain.ParseDate(s), nil
}

// ValidateDateRange checks that from is not after to
func (dv *DateValidator) ValidateDateRange(from, to time.Time) error {
	if dv.validator.IsValidDateRange(from, to) {
		return nil
	}
	ve := NewValidationError()
	ve.AddInvalidRangeError("date_range", map[string]string{
		"from": domain.FormatDate(from),
		"to":   domain.FormatDate(to),
	}, "from must be on or before to")
	return ve
}

// ValidateFilter validates a task listing filter
func (dv *DateValidator) ValidateFilter(filter domain.TaskFilter) error {
	ve := NewValidationError()

	if filter.UserID <= 0 && filter.Username == "" {
		ve.AddRequiredError("user")
	}
	ve.Merge("date_range", dv.ValidateDateRange(filter.From, filter.To))

	return ve.OrNil()
}

// ValidateAgeShorthand validates cleanup ages like 30d, 2w, 6mo, 1y
func (dv *DateValidator) ValidateAgeShorthand(shorthand string) error {
	if !dv.validator.IsValidAgeShorthand(shorthand) {
		ve := NewValidationError()
		ve.AddInvalidFormatError("older_than", shorthand, "30d, 2w, 6mo, 1y")
		return ve
	}
	return nil
}
