package authstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is the durable key-value collaborator that persists the auth
// token across runs. Implementations hold exactly one credential set.
type Store interface {
	// Get returns the stored credentials, or ok=false when none exist.
	Get() (creds Credentials, ok bool, err error)
	// Set persists the credentials, replacing any previous ones.
	Set(creds Credentials) error
	// Remove deletes the stored credentials. Removing when nothing is
	// stored is not an error.
	Remove() error
}

// Credentials is the persisted auth state
type Credentials struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
}

// FileStore persists credentials as a 0600 JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at dir/auth.json
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "auth.json")}
}

// Get implements Store
func (s *FileStore) Get() (Credentials, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, false, fmt.Errorf("parse credentials: %w", err)
	}
	if creds.AccessToken == "" {
		return Credentials{}, false, nil
	}

	return creds, true, nil
}

// Set implements Store
func (s *FileStore) Set(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Remove implements Store
func (s *FileStore) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
