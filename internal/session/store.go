// Package session persists the logged-in user between wt invocations.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"work-tracker/internal/domain"
	"work-tracker/internal/logging"
)

// Store reads and writes the session file
type Store struct {
	path string
	now  func() time.Time
}

// NewStore returns a store backed by path
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the session file location
func (s *Store) Path() string {
	return s.path
}

// Save records user as logged in, replacing any previous session
func (s *Store) Save(user domain.User) (*domain.Session, error) {
	sess := &domain.Session{
		ID:        uuid.New().String(),
		Username:  user.Username,
		UserID:    user.ID,
		CreatedAt: s.now().UTC(),
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write session file: %w", err)
	}

	logging.Info("session saved", "username", user.Username, "session_id", sess.ID)
	return sess, nil
}

// Load returns the saved session, or nil when nobody is logged in. A file
// that cannot be parsed or has no username also counts as logged out.
func (s *Store) Load() (*domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		logging.Warn("ignoring unreadable session file", "path", s.path, "err", err)
		return nil, nil
	}
	sess.Username = strings.TrimSpace(sess.Username)
	if sess.Username == "" {
		return nil, nil
	}
	return &sess, nil
}

// Clear removes the session file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
