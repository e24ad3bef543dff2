package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		errors   []FieldError
		expected string
	}{
		{"No errors", []FieldError{}, "validation error"},
		{"Single error", []FieldError{{Field: "title", Message: "is required"}}, "validation error for field 'title': is required"},
		{"Multiple errors", []FieldError{
			{Field: "title", Message: "is required"},
			{Field: "due_date", Message: "is required"},
		}, "multiple validation errors: validation error for field 'title': is required; validation error for field 'due_date': is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			assert.Equal(t, tt.expected, ve.Error())
		})
	}
}

func TestValidationError_AddHelpers(t *testing.T) {
	tests := []struct {
		name     string
		add      func(*ValidationError)
		errType  ValidationErrorType
		contains string
	}{
		{"required", func(ve *ValidationError) { ve.AddRequiredError("title") }, ErrorTypeRequired, "title is required"},
		{"format", func(ve *ValidationError) { ve.AddInvalidFormatError("due", "2023-13-01", "YYYY-MM-DD") }, ErrorTypeInvalidFormat, "YYYY-MM-DD"},
		{"length between", func(ve *ValidationError) { ve.AddInvalidLengthError("title", "a", 2, 50) }, ErrorTypeInvalidLength, "between 2 and 50"},
		{"length min", func(ve *ValidationError) { ve.AddInvalidLengthError("password", nil, 8, 0) }, ErrorTypeInvalidLength, "at least 8"},
		{"length max", func(ve *ValidationError) { ve.AddInvalidLengthError("username", "x", 0, 64) }, ErrorTypeInvalidLength, "at most 64"},
		{"value", func(ve *ValidationError) { ve.AddInvalidValueError("task_id", -1, "must be positive") }, ErrorTypeInvalidValue, "must be positive"},
		{"range", func(ve *ValidationError) { ve.AddInvalidRangeError("dates", nil, "start after due") }, ErrorTypeInvalidRange, "start after due"},
		{"character", func(ve *ValidationError) { ve.AddInvalidCharacterError("username", "a b") }, ErrorTypeInvalidCharacter, "invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := NewValidationError()
			tt.add(ve)

			require.Len(t, ve.Errors, 1)
			assert.Equal(t, tt.errType, ve.Errors[0].Type)
			assert.Contains(t, ve.Errors[0].Message, tt.contains)
		})
	}
}

func TestValidationError_GetFieldErrors(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("title")
	ve.AddInvalidLengthError("title", "a", 2, 50)
	ve.AddRequiredError("due_date")

	assert.Len(t, ve.GetFieldErrors("title"), 2)
	assert.Len(t, ve.GetFieldErrors("due_date"), 1)
	assert.Empty(t, ve.GetFieldErrors("missing"))
}

func TestValidationError_GetUserFriendlyMessage(t *testing.T) {
	assert.Equal(t, "Input validation failed", NewValidationError().GetUserFriendlyMessage())

	ve := NewValidationError()
	ve.AddRequiredError("title")
	assert.Equal(t, "title is required", ve.GetUserFriendlyMessage())

	ve.AddRequiredError("due_date")
	assert.Equal(t, "Multiple validation errors occurred:\n- title is required\n- due_date is required", ve.GetUserFriendlyMessage())
}

func TestValidationError_OrNil(t *testing.T) {
	ve := NewValidationError()
	assert.NoError(t, ve.OrNil())

	ve.AddRequiredError("title")
	assert.Same(t, ve, ve.OrNil())
}

func TestValidationError_Merge(t *testing.T) {
	inner := NewValidationError()
	inner.AddRequiredError("title")

	ve := NewValidationError()
	ve.Merge("title", nil)
	assert.False(t, ve.HasErrors())

	ve.Merge("title", inner)
	ve.Merge("dates", errors.New("boom"))

	require.Len(t, ve.Errors, 2)
	assert.Equal(t, ErrorTypeRequired, ve.Errors[0].Type)
	assert.Equal(t, "dates", ve.Errors[1].Field)
	assert.Contains(t, ve.Errors[1].Message, "boom")
}

func TestIsValidationError(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("title")

	assert.True(t, IsValidationError(ve))
	assert.True(t, IsValidationError(fmt.Errorf("create task: %w", ve)))
	assert.False(t, IsValidationError(&FieldError{Field: "x"}))
	assert.False(t, IsValidationError(nil))
}

func TestNewValidationError(t *testing.T) {
	ve := NewValidationError()
	require.NotNil(t, ve)
	assert.NotNil(t, ve.Errors)
	assert.Empty(t, ve.Errors)
}
