package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokenStore persists the calendar OAuth token as a small JSON blob at a
// configurable path. This file is the only durable state in the system.
type TokenStore struct {
	path string
}

// NewTokenStore creates a token store rooted at path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load reads the persisted token. A missing file is reported as an error so
// callers can distinguish "never authorized" from a corrupt file.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("calendar: read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("calendar: parse token file: %w", err)
	}
	return &token, nil
}

// Save writes the token, creating the parent directory if needed.
func (s *TokenStore) Save(token *oauth2.Token) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("calendar: create token dir: %w", err)
		}
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("calendar: marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("calendar: write token file: %w", err)
	}
	return nil
}
