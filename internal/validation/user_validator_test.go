package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"work-tracker/internal/config"
)

func TestUserValidator_ValidateUsername(t *testing.T) {
	uv := NewUserValidator()

	assert.NoError(t, uv.ValidateUsername("alice"))
	assert.Error(t, uv.ValidateUsername(""))
	assert.Error(t, uv.ValidateUsername("alice smith"))
	assert.Error(t, uv.ValidateUsername(strings.Repeat("a", 65)))
}

func TestUserValidator_ValidatePassword(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Security.PasswordMinLength = 8
	uv := NewUserValidatorWithConfig(cfg)

	assert.NoError(t, uv.ValidatePassword("longenough"))

	err := uv.ValidatePassword("short")
	require.Error(t, err)
	ve := err.(*ValidationError)
	assert.Nil(t, ve.Errors[0].Value, "password must not be echoed back")

	assert.Error(t, uv.ValidatePassword(""))
}

func TestUserValidator_ValidateCredentials(t *testing.T) {
	uv := NewUserValidator()

	assert.NoError(t, uv.ValidateCredentials("bob", "x"))

	err := uv.ValidateCredentials("", "")
	require.Error(t, err)
	ve := err.(*ValidationError)
	assert.Len(t, ve.GetFieldErrors("username"), 1)
	assert.Len(t, ve.GetFieldErrors("password"), 1)
}
