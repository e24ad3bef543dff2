package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"work-tracker/internal/domain"
)

// Config holds all configuration options for the work tracker
type Config struct {
	Database    DatabaseConfig
	Files       FilesConfig
	Security    SecurityConfig
	Validation  ValidationConfig
	Rewards     RewardsConfig
	Maintenance MaintenanceConfig
	Application ApplicationConfig
}

// DatabaseConfig holds database-related configuration. Dir is also the
// data directory for the session, settings and log files.
type DatabaseConfig struct {
	Dir            string        `env:"WT_DB_DIR"`
	Filename       string        `env:"WT_DB_FILENAME"`
	QueryTimeout   time.Duration `env:"WT_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `env:"WT_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"WT_DB_DIR_PERMISSIONS"`
}

// FilesConfig names the JSON files kept next to the database
type FilesConfig struct {
	SessionFilename  string `env:"WT_SESSION_FILENAME"`
	SettingsFilename string `env:"WT_SETTINGS_FILENAME"`
}

// SecurityConfig holds password hashing parameters
type SecurityConfig struct {
	PBKDF2Iterations  int `env:"WT_PBKDF2_ITERATIONS"`
	PasswordMinLength int `env:"WT_PASSWORD_MIN_LENGTH"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMinLength    int `env:"WT_VALIDATION_TITLE_MIN"`
	TitleMaxLength    int `env:"WT_VALIDATION_TITLE_MAX"`
	UsernameMaxLength int `env:"WT_VALIDATION_USERNAME_MAX"`
}

// RewardsConfig holds EXP award amounts
type RewardsConfig struct {
	ExpPerTask        int `env:"WT_REWARD_EXP_PER_TASK"`
	ExpPerFocusMinute int `env:"WT_REWARD_EXP_PER_FOCUS_MINUTE"`
}

// MaintenanceConfig drives the cleanup and overdue jobs
type MaintenanceConfig struct {
	CleanupAge      time.Duration `env:"WT_CLEANUP_AGE"`
	CleanupAt       string        `env:"WT_CLEANUP_AT"`
	OverdueInterval time.Duration `env:"WT_OVERDUE_INTERVAL"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `env:"WT_APP_TIMEOUT"`
	Verbose bool          `env:"WT_APP_VERBOSE"`
	Debug   bool          `env:"WT_DEBUG"`
}

var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDir := filepath.Join(homeDir, ".worktracker")

	return &Config{
		Database: DatabaseConfig{
			Dir:            defaultDir,
			Filename:       "worktracker.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Files: FilesConfig{
			SessionFilename:  "login_state.json",
			SettingsFilename: "user_settings.json",
		},
		Security: SecurityConfig{
			PBKDF2Iterations:  200000,
			PasswordMinLength: 1,
		},
		Validation: ValidationConfig{
			TitleMinLength:    1,
			TitleMaxLength:    255,
			UsernameMaxLength: 64,
		},
		Rewards: RewardsConfig{
			ExpPerTask:        20,
			ExpPerFocusMinute: 1,
		},
		Maintenance: MaintenanceConfig{
			CleanupAge:      30 * 24 * time.Hour,
			CleanupAt:       "03:00",
			OverdueInterval: 15 * time.Minute,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetSessionPath returns the full path to the session file
func (c *Config) GetSessionPath() string {
	return filepath.Join(c.Database.Dir, c.Files.SessionFilename)
}

// GetSettingsPath returns the full path to the settings file
func (c *Config) GetSettingsPath() string {
	return filepath.Join(c.Database.Dir, c.Files.SettingsFilename)
}

// GetLogDir returns the directory for rotated log files
func (c *Config) GetLogDir() string {
	return filepath.Join(c.Database.Dir, "logs")
}

// LoadFromEnvironment loads configuration from environment variables.
// Unparseable values are ignored and the current value kept.
func (c *Config) LoadFromEnvironment() error {
	setString(&c.Database.Dir, "WT_DB_DIR")
	setString(&c.Database.Filename, "WT_DB_FILENAME")
	setDuration(&c.Database.QueryTimeout, "WT_DB_QUERY_TIMEOUT")
	setDuration(&c.Database.WriteTimeout, "WT_DB_WRITE_TIMEOUT")
	if perms := os.Getenv("WT_DB_DIR_PERMISSIONS"); perms != "" {
		if p, err := strconv.ParseUint(perms, 8, 32); err == nil {
			c.Database.DirPermissions = uint32(p)
		}
	}

	setString(&c.Files.SessionFilename, "WT_SESSION_FILENAME")
	setString(&c.Files.SettingsFilename, "WT_SETTINGS_FILENAME")

	setInt(&c.Security.PBKDF2Iterations, "WT_PBKDF2_ITERATIONS")
	setInt(&c.Security.PasswordMinLength, "WT_PASSWORD_MIN_LENGTH")

	setInt(&c.Validation.TitleMinLength, "WT_VALIDATION_TITLE_MIN")
	setInt(&c.Validation.TitleMaxLength, "WT_VALIDATION_TITLE_MAX")
	setInt(&c.Validation.UsernameMaxLength, "WT_VALIDATION_USERNAME_MAX")

	setInt(&c.Rewards.ExpPerTask, "WT_REWARD_EXP_PER_TASK")
	setInt(&c.Rewards.ExpPerFocusMinute, "WT_REWARD_EXP_PER_FOCUS_MINUTE")

	setDuration(&c.Maintenance.CleanupAge, "WT_CLEANUP_AGE")
	setString(&c.Maintenance.CleanupAt, "WT_CLEANUP_AT")
	setDuration(&c.Maintenance.OverdueInterval, "WT_OVERDUE_INTERVAL")

	setDuration(&c.Application.Timeout, "WT_APP_TIMEOUT")
	setBool(&c.Application.Verbose, "WT_APP_VERBOSE")
	if os.Getenv("WT_DEBUG") != "" {
		c.Application.Debug = true
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Files.SessionFilename == "" {
		return &ConfigError{Field: "files.session_filename", Message: "session filename cannot be empty"}
	}
	if c.Files.SettingsFilename == "" {
		return &ConfigError{Field: "files.settings_filename", Message: "settings filename cannot be empty"}
	}

	if c.Security.PBKDF2Iterations < 1 {
		return &ConfigError{Field: "security.pbkdf2_iterations", Message: "iterations must be at least 1"}
	}
	if c.Security.PasswordMinLength < 1 {
		return &ConfigError{Field: "security.password_min_length", Message: "password minimum length must be at least 1"}
	}

	if c.Validation.TitleMinLength < 1 {
		return &ConfigError{Field: "validation.title_min_length", Message: "title minimum length must be at least 1"}
	}
	if c.Validation.TitleMaxLength < c.Validation.TitleMinLength {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be greater than minimum length"}
	}
	if c.Validation.UsernameMaxLength < 1 {
		return &ConfigError{Field: "validation.username_max_length", Message: "username maximum length must be at least 1"}
	}

	if c.Rewards.ExpPerTask < 0 || c.Rewards.ExpPerFocusMinute < 0 {
		return &ConfigError{Field: "rewards", Message: "EXP awards cannot be negative"}
	}
	if c.Rewards.ExpPerTask > domain.MaxExp || c.Rewards.ExpPerFocusMinute > domain.MaxExp {
		return &ConfigError{Field: "rewards", Message: "EXP awards cannot exceed " + strconv.Itoa(domain.MaxExp)}
	}

	if c.Maintenance.CleanupAge <= 0 {
		return &ConfigError{Field: "maintenance.cleanup_age", Message: "cleanup age must be positive"}
	}
	if !clockRegex.MatchString(c.Maintenance.CleanupAt) {
		return &ConfigError{Field: "maintenance.cleanup_at", Message: "cleanup time must be HH:MM"}
	}
	if c.Maintenance.OverdueInterval < time.Second {
		return &ConfigError{Field: "maintenance.overdue_interval", Message: "overdue interval must be at least 1s"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
