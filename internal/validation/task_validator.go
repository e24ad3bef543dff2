package validation

import (
	"work-tracker/internal/config"
	"work-tracker/internal/domain"
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// NewTaskValidatorWithConfig creates a task validator using configured limits
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{
		validator: NewValidatorWithConfig(cfg),
	}
}

// ValidateTitle validates a task title for creation or update
func (tv *TaskValidator) ValidateTitle(title string) error {
	ve := NewValidationError()
	trimmed := tv.validator.TrimAndValidateString(title)

	if !tv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("title")
		return ve
	}
	if !tv.validator.IsValidTitleLength(trimmed) {
		ve.AddInvalidLengthError("title", trimmed, tv.validator.titleMinLength(), tv.validator.titleMaxLength())
	}
	if !tv.validator.HasNoControlCharacters(trimmed) {
		ve.AddInvalidCharacterError("title", trimmed)
	}

	return ve.OrNil()
}

// ValidateTaskForCreation validates a new task. The due date is mandatory
// and the start date must not be after it.
func (tv *TaskValidator) ValidateTaskForCreation(task domain.Task) error {
	ve := NewValidationError()

	ve.Merge("title", tv.ValidateTitle(task.Title))
	if !task.HasDueDate() {
		ve.AddRequiredError("due_date")
	}
	tv.validateCommon(ve, task)

	return ve.OrNil()
}

// ValidateTaskForUpdate validates an edited task. Legacy rows may lack a
// due date, so it is only range-checked when present.
func (tv *TaskValidator) ValidateTaskForUpdate(task domain.Task) error {
	ve := NewValidationError()

	if !tv.validator.IsValidID(task.ID) {
		ve.AddInvalidValueError("task_id", task.ID, "must be a positive integer")
	}
	ve.Merge("title", tv.ValidateTitle(task.Title))
	tv.validateCommon(ve, task)

	return ve.OrNil()
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id int64) error {
	if !tv.validator.IsValidID(id) {
		ve := NewValidationError()
		ve.AddInvalidValueError("task_id", id, "must be a positive integer")
		return ve
	}
	return nil
}

// GetValidTitle returns a cleaned title if valid
func (tv *TaskValidator) GetValidTitle(title string) (string, error) {
	if err := tv.ValidateTitle(title); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(title), nil
}

func (tv *TaskValidator) validateCommon(ve *ValidationError, task domain.Task) {
	if !tv.validator.IsValidDateRange(task.StartDate, task.DueDate) {
		ve.AddInvalidRangeError("dates", map[string]string{
			"start": domain.FormatDate(task.StartDate),
			"due":   domain.FormatDate(task.DueDate),
		}, "start date must be on or before the due date")
	}
	if task.Status != "" && !tv.validator.IsValidStatus(string(task.Status)) {
		ve.AddInvalidValueError("status", task.Status, "must be one of Pending, In Progress, Completed, Overdue")
	}
}
