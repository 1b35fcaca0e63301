package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotAuthenticated indicates no stored credentials exist
var ErrNotAuthenticated = errors.New("not authenticated, run 'tribe auth login'")

// Store persists OAuth tokens on disk. The token file is written with
// 0600 so other users on the machine cannot read credentials.
type Store struct {
	filePath string
}

// DefaultTokenPath returns the token file location under the user's home
// directory
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tribe", "tokens.json"), nil
}

// NewStore creates a store backed by the given file path
func NewStore(path string) *Store {
	return &Store{filePath: path}
}

// Load reads the stored token. A missing file means the user never logged
// in and returns ErrNotAuthenticated.
func (s *Store) Load() (*Token, error) {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// Save writes the token to disk, creating the directory when needed
func (s *Store) Save(token *Token) error {
	if token == nil {
		return nil
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0600)
}

// Delete removes the stored token. Deleting a token that does not exist
// is not an error.
func (s *Store) Delete() error {
	err := os.Remove(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Path returns the backing file location
func (s *Store) Path() string {
	return s.filePath
}
