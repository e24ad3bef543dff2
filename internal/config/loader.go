package config

import (
	"os"
	"time"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment reads WT_ENV, defaulting to production
func GetEnvironment() Environment {
	switch Environment(os.Getenv("WT_ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with environment variables
// 3. Override with command line flags (LoadWithOverrides / cobra)
func (l *Loader) Load() (*Config, error) {
	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	if err := l.config.Validate(); err != nil {
		return nil, err
	}
	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		overrides.Apply(config)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ConfigOverrides holds command line flag overrides. Nil fields are left
// untouched.
type ConfigOverrides struct {
	DBDir          *string
	DBFilename     *string
	DBQueryTimeout *time.Duration
	DBWriteTimeout *time.Duration

	SessionFilename  *string
	SettingsFilename *string

	PBKDF2Iterations *int

	ExpPerTask        *int
	ExpPerFocusMinute *int

	CleanupAge *time.Duration
	CleanupAt  *string

	Timeout *time.Duration
	Verbose *bool
	Debug   *bool
}

// Apply copies every non-nil override into config
func (o *ConfigOverrides) Apply(config *Config) {
	if o.DBDir != nil {
		config.Database.Dir = *o.DBDir
	}
	if o.DBFilename != nil {
		config.Database.Filename = *o.DBFilename
	}
	if o.DBQueryTimeout != nil {
		config.Database.QueryTimeout = *o.DBQueryTimeout
	}
	if o.DBWriteTimeout != nil {
		config.Database.WriteTimeout = *o.DBWriteTimeout
	}
	if o.SessionFilename != nil {
		config.Files.SessionFilename = *o.SessionFilename
	}
	if o.SettingsFilename != nil {
		config.Files.SettingsFilename = *o.SettingsFilename
	}
	if o.PBKDF2Iterations != nil {
		config.Security.PBKDF2Iterations = *o.PBKDF2Iterations
	}
	if o.ExpPerTask != nil {
		config.Rewards.ExpPerTask = *o.ExpPerTask
	}
	if o.ExpPerFocusMinute != nil {
		config.Rewards.ExpPerFocusMinute = *o.ExpPerFocusMinute
	}
	if o.CleanupAge != nil {
		config.Maintenance.CleanupAge = *o.CleanupAge
	}
	if o.CleanupAt != nil {
		config.Maintenance.CleanupAt = *o.CleanupAt
	}
	if o.Timeout != nil {
		config.Application.Timeout = *o.Timeout
	}
	if o.Verbose != nil {
		config.Application.Verbose = *o.Verbose
	}
	if o.Debug != nil {
		config.Application.Debug = *o.Debug
	}
}
