package monitor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialStore holds the admin bearer token between runs. It is
// shared-read with a single writer on expiry: whichever caller first
// observes an authorization failure clears it.
type CredentialStore interface {
	Token() (string, error)
	Save(token string) error
	Clear() error
}

// FileCredentialStore keeps the token in a single file at a fixed path.
type FileCredentialStore struct {
	path string
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("credentials: failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileCredentialStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("credentials: failed to create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("credentials: failed to write token file: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credentials: failed to remove token file: %w", err)
	}
	return nil
}
