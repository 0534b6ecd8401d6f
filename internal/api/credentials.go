// Package api implements the remote progress-sync client.
package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Credentials is the locally cached session identity.
type Credentials struct {
	SessionToken string `json:"session_token"`
	Email        string `json:"email"`
}

// CredentialStore persists the session token between runs.
type CredentialStore struct {
	path string
}

// NewCredentialStore uses the given file path for the cache.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Load reads cached credentials. A missing or malformed file yields empty
// credentials, never an error: anonymous mode is first-class.
func (s *CredentialStore) Load() Credentials {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Credentials{}
	}
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}
	}
	return creds
}

// Save writes the credentials with owner-only permissions.
func (s *CredentialStore) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create credentials dir: %w", err)
	}
	payload, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Clear removes the cached credentials. Missing file is not an error.
func (s *CredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
