// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TokenFileEnv overrides the default session file location.
const TokenFileEnv = "TASKBOARD_TOKEN_FILE"

// ErrNoSession is returned by TokenStore.Load when no token is stored.
var ErrNoSession = errors.New("taskclient: not logged in")

// Session is the stored login: the access token and who it belongs to.
type Session struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Server      string `json:"server,omitempty"`
}

// TokenStore holds at most one Session.
type TokenStore interface {
	// Load returns ErrNoSession when the slot is empty.
	Load() (Session, error)
	Save(session Session) error
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear() error
}

// MemoryTokenStore keeps the session in process memory.
type MemoryTokenStore struct {
	mu      sync.Mutex
	session *Session
}

func (m *MemoryTokenStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, ErrNoSession
	}
	return *m.session, nil
}

func (m *MemoryTokenStore) Save(session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &session
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// DefaultTokenPath returns $TASKBOARD_TOKEN_FILE if set, otherwise
// $XDG_CONFIG_HOME/taskboard/session.json (with ~/.config standing in
// for an unset XDG_CONFIG_HOME).
func DefaultTokenPath() string {
	if path := os.Getenv(TokenFileEnv); path != "" {
		return path
	}
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "taskboard-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "taskboard", "session.json")
}

// FileTokenStore persists the session as JSON in a file readable only
// by its owner, so a login survives process restarts.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore stores the session at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the session file location.
func (f *FileTokenStore) Path() string { return f.path }

func (f *FileTokenStore) Load() (Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session file %s: %w", f.path, err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("parsing session file %s: %w", f.path, err)
	}
	if session.AccessToken == "" {
		return Session{}, ErrNoSession
	}
	return session, nil
}

// Save writes the session atomically: a temporary file in the same
// directory is renamed over the old one.
func (f *FileTokenStore) Save(session Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(f.path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}

	temporary, err := os.CreateTemp(directory, ".session-*.json")
	if err != nil {
		return fmt.Errorf("creating session file: %w", err)
	}
	defer os.Remove(temporary.Name())

	if err := temporary.Chmod(0o600); err != nil {
		temporary.Close()
		return fmt.Errorf("restricting session file: %w", err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(temporary.Name(), f.path); err != nil {
		return fmt.Errorf("installing session file %s: %w", f.path, err)
	}
	return nil
}

func (f *FileTokenStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file %s: %w", f.path, err)
	}
	return nil
}
