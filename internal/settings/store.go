// Package settings reads and writes the per-installation preferences file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"work-tracker/internal/domain"
	apperrors "work-tracker/internal/errors"
	"work-tracker/internal/logging"
)

const themeKey = "theme"

// Store is a JSON settings file
type Store struct {
	path string
}

// NewStore returns a store backed by path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file location
func (s *Store) Path() string {
	return s.path
}

// Theme returns the saved theme. A missing file, or a value that is not a
// known theme, reads as light.
func (s *Store) Theme() (domain.Theme, error) {
	v, err := s.read()
	if err != nil {
		return domain.ThemeLight, err
	}

	theme, ok := domain.ParseTheme(v.GetString(themeKey))
	if !ok {
		logging.Warn("unknown theme in settings file, using light", "path", s.path, "theme", v.GetString(themeKey))
		return domain.ThemeLight, nil
	}
	return theme, nil
}

// SetTheme validates and saves the theme. Other keys in the file are kept.
func (s *Store) SetTheme(name string) (domain.Theme, error) {
	theme, ok := domain.ParseTheme(name)
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown theme %q, expected light or dark", name), nil)
	}

	v, err := s.read()
	if err != nil {
		return "", err
	}
	v.Set(themeKey, string(theme))

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("creating settings directory: %w", err)
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return "", fmt.Errorf("writing settings to %s: %w", s.path, err)
	}
	return theme, nil
}

func (s *Store) read() (*viper.Viper, error) {
	v := s.newViper()
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		// A corrupt file behaves like a missing one; the next write replaces it.
		logging.Warn("ignoring unreadable settings file", "path", s.path, "err", err)
		return s.newViper(), nil
	}
	return v, nil
}

func (s *Store) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	v.SetDefault(themeKey, string(domain.ThemeLight))
	return v
}
