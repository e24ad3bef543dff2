package services

import (
	"context"

	"work-tracker/internal/auth"
	"work-tracker/internal/config"
	"work-tracker/internal/domain"
	"work-tracker/internal/errors"
	"work-tracker/internal/logging"
	"work-tracker/internal/repository/sqlite"
	"work-tracker/internal/validation"
)

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	repo          sqlite.Repository
	hasher        *auth.Hasher
	userValidator *validation.UserValidator
	mapper        *domain.Mapper
}

// NewUserService creates a new UserService instance
func NewUserService(repo sqlite.Repository, cfg *config.Config) UserService {
	return &userServiceImpl{
		repo:          repo,
		hasher:        auth.NewHasher(cfg.Security.PBKDF2Iterations),
		userValidator: validation.NewUserValidatorWithConfig(cfg),
		mapper:        domain.NewMapper(),
	}
}

// Register creates an account and its level 1 reward row
func (u *userServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if err := u.userValidator.ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	_, err := u.repo.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, errors.NewConflictError("user", username)
	}
	if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return nil, err
	}

	hash, err := u.hasher.HashPassword(password)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeDatabase, "failed to hash password")
	}

	dbUser := u.mapper.User.ToDatabase(domain.User{Username: username, PasswordHash: hash})
	if err := u.repo.CreateUser(ctx, &dbUser); err != nil {
		return nil, err
	}

	dbReward := u.mapper.Reward.ToDatabase(domain.NewReward(dbUser.ID))
	if err := u.repo.UpsertReward(ctx, &dbReward); err != nil {
		return nil, err
	}

	logging.Info("user registered", "username", username)
	user := u.mapper.User.FromDatabase(dbUser)
	return &user, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both return an invalid credentials error. A correct password
// stored under a legacy scheme is re-hashed in place.
func (u *userServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, errors.NewInvalidCredentialsError()
	}

	dbUser, err := u.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, errors.NewInvalidCredentialsError()
		}
		return nil, err
	}

	ok, needsRehash, err := u.hasher.VerifyPassword(password, dbUser.Password)
	if err != nil {
		logging.Warn("stored password hash is malformed", "username", username, "err", err)
		return nil, errors.NewInvalidCredentialsError()
	}
	if !ok {
		return nil, errors.NewInvalidCredentialsError()
	}

	if needsRehash {
		if hash, err := u.hasher.HashPassword(password); err == nil {
			if err := u.repo.UpdatePassword(ctx, username, hash); err != nil {
				logging.Warn("failed to upgrade password hash", "username", username, "err", err)
			} else {
				dbUser.Password = hash
				logging.Info("upgraded password hash", "username", username)
			}
		}
	}

	user := u.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}

// ChangePassword replaces the password after verifying the current one
func (u *userServiceImpl) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if _, err := u.Authenticate(ctx, username, currentPassword); err != nil {
		return err
	}
	if err := u.userValidator.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := u.hasher.HashPassword(newPassword)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeDatabase, "failed to hash password")
	}
	return u.repo.UpdatePassword(ctx, username, hash)
}

// GetUser retrieves a user by ID
func (u *userServiceImpl) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, errors.NewValidationError("invalid user ID", nil)
	}
	dbUser, err := u.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user := u.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}

// GetUserByUsername retrieves a user by exact username
func (u *userServiceImpl) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, errors.NewValidationError("username is required", nil)
	}
	dbUser, err := u.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user := u.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}
