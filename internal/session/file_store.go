package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	configDirName      = "album-shop"
	credentialFileName = "credential.json"
)

// FileStore persists the credential as a single JSON file, so token and
// username are written and removed as one unit. Survives restarts
// within the same user profile; no cross-process invalidation.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// DefaultFileStore returns a FileStore at the default location:
// ~/.config/album-shop/credential.json
func DefaultFileStore() (*FileStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting user config dir: %w", err)
	}
	return NewFileStore(filepath.Join(configDir, configDirName, credentialFileName)), nil
}

// NewFileStore creates a FileStore with a custom path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file path where the credential is stored.
func (s *FileStore) Path() string {
	return s.path
}

// SetCredential writes both fields to disk, creating the parent
// directory if needed.
func (s *FileStore) SetCredential(token, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(Credential{Token: token, Username: username}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

// Credential reads the stored credential. ok=false when the file does
// not exist or holds no token.
func (s *FileStore) Credential() (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) read() (Credential, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Credential{}, false
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, false
	}
	if cred.Token == "" {
		return Credential{}, false
	}
	return cred, true
}

// Clear removes the credential file. Returns nil if it does not exist.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credential file: %w", err)
	}
	return nil
}

// IsPresent reports whether a token is stored on disk.
func (s *FileStore) IsPresent() bool {
	_, ok := s.Credential()
	return ok
}

var _ Store = (*FileStore)(nil)
