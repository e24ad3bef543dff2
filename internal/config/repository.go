package config

import (
	"fmt"
	"os"

	"work-tracker/internal/repository/sqlite"
)

// CreateRepository creates a repository instance using the configuration system
func CreateRepository(config *Config) (sqlite.Repository, error) {
	if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo, err := sqlite.NewWithOptions(config.GetDatabasePath(), sqlite.Options{
		QueryTimeout: config.Database.QueryTimeout,
		WriteTimeout: config.Database.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (sqlite.Repository, error) {
	repo, err := sqlite.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	return repo, nil
}

// CreateRepositoryForEnvironment picks the repository factory for env.
// The testing environment never touches the data directory.
func CreateRepositoryForEnvironment(env Environment, config *Config) (sqlite.Repository, error) {
	if env == Testing {
		return CreateTestRepository()
	}
	return CreateRepository(config)
}
