package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"work-tracker/internal/auth"
	"work-tracker/internal/errors"
	"work-tracker/internal/repository/sqlite"
	"work-tracker/internal/validation"
)

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		password       string
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name:     "should register valid user",
			username: "alice",
			password: "secret",
		},
		{
			name:     "should reject empty username",
			username: "",
			password: "secret",
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, validation.IsValidationError(err))
				assert.Contains(t, err.Error(), "username")
			},
		},
		{
			name:     "should reject empty password",
			username: "alice",
			password: "",
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, validation.IsValidationError(err))
				assert.Contains(t, err.Error(), "password")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services, _ := setupServices(t)

			user, err := services.UserService.Register(context.Background(), tt.username, tt.password)

			if tt.errorAssertion != nil {
				require.Error(t, err)
				tt.errorAssertion(t, err)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Greater(t, user.ID, int64(0))
			assert.Equal(t, tt.username, user.Username)
			assert.True(t, strings.HasPrefix(user.PasswordHash, auth.Algorithm+"$"))
		})
	}
}

func TestUserService_RegisterTwiceIsConflict(t *testing.T) {
	services, _ := setupServices(t)
	registerUser(t, services, "alice")

	_, err := services.UserService.Register(context.Background(), "alice", "other")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict))
}

func TestUserService_RegisterCreatesReward(t *testing.T) {
	services, repo := setupServices(t)
	user := registerUser(t, services, "alice")

	reward, err := repo.GetReward(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reward.Exp)
	assert.Equal(t, 1, reward.Level)
	assert.Equal(t, "default.png", reward.Avatar)
}

func TestUserService_Authenticate(t *testing.T) {
	services, _ := setupServices(t)
	registered := registerUser(t, services, "alice")
	ctx := context.Background()

	user, err := services.UserService.Authenticate(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "alice", password: "wrong"},
		{name: "unknown user", username: "bob", password: "secret"},
		{name: "empty password", username: "alice", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.UserService.Authenticate(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
		})
	}
}

func TestUserService_AuthenticateUpgradesLegacyHashes(t *testing.T) {
	sum := sha256.Sum256([]byte("secret"))
	tests := []struct {
		name   string
		stored string
	}{
		{name: "unsalted sha256", stored: hex.EncodeToString(sum[:])},
		{name: "plaintext", stored: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			services, repo := setupServices(t)
			ctx := context.Background()
			require.NoError(t, repo.CreateUser(ctx, &sqlite.User{Username: "legacy", Password: tt.stored}))

			_, err := services.UserService.Authenticate(ctx, "legacy", "secret")
			require.NoError(t, err)

			stored, err := repo.GetUserByUsername(ctx, "legacy")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(stored.Password, auth.Algorithm+"$"))

			_, err = services.UserService.Authenticate(ctx, "legacy", "secret")
			assert.NoError(t, err)
		})
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	services, _ := setupServices(t)
	registerUser(t, services, "alice")
	ctx := context.Background()

	err := services.UserService.ChangePassword(ctx, "alice", "wrong", "new-secret")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

	require.NoError(t, services.UserService.ChangePassword(ctx, "alice", "secret", "new-secret"))

	_, err = services.UserService.Authenticate(ctx, "alice", "secret")
	assert.Error(t, err)
	_, err = services.UserService.Authenticate(ctx, "alice", "new-secret")
	assert.NoError(t, err)
}

func TestUserService_GetUser(t *testing.T) {
	services, _ := setupServices(t)
	registered := registerUser(t, services, "alice")
	ctx := context.Background()

	byID, err := services.UserService.GetUser(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := services.UserService.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byName.ID)

	_, err = services.UserService.GetUser(ctx, 0)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))

	_, err = services.UserService.GetUserByUsername(ctx, "nobody")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}
