package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tasksync/internal/util"
)

// document is the single persisted unit. Token and user live together so
// they are written and cleared atomically.
type document struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// FileStore persists the session as one JSON document on disk. When an
// encryption key is configured the document is AES-256-GCM encrypted at
// rest. Missing or unreadable files behave as an empty session.
type FileStore struct {
	path       string
	encryptKey string
}

// NewFileStore returns a file-backed store, or a no-op store when path is
// empty (no persistent backend available).
func NewFileStore(path, encryptKey string) Store {
	if path == "" {
		return NoopStore{}
	}
	return &FileStore{path: path, encryptKey: encryptKey}
}

func (s *FileStore) load() document {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return document{}
	}
	if s.encryptKey != "" {
		raw, err = util.DecryptAES(s.encryptKey, raw)
		if err != nil {
			return document{}
		}
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document{}
	}
	return doc
}

func (s *FileStore) save(doc document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if s.encryptKey != "" {
		raw, err = util.EncryptAES(s.encryptKey, raw)
		if err != nil {
			return fmt.Errorf("encrypt session: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *FileStore) Token() string {
	return s.load().Token
}

func (s *FileStore) SetToken(token string) error {
	doc := s.load()
	doc.Token = token
	return s.save(doc)
}

func (s *FileStore) RemoveToken() error {
	return s.Clear()
}

func (s *FileStore) User() *User {
	return s.load().User
}

func (s *FileStore) SetUser(user *User) error {
	doc := s.load()
	doc.User = user
	return s.save(doc)
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *FileStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// NoopStore is the capability-gated absent backend: every write succeeds
// without effect and every read reports an empty session.
type NoopStore struct{}

func (NoopStore) Token() string         { return "" }
func (NoopStore) SetToken(string) error { return nil }
func (NoopStore) RemoveToken() error    { return nil }
func (NoopStore) User() *User           { return nil }
func (NoopStore) SetUser(*User) error   { return nil }
func (NoopStore) Clear() error          { return nil }
func (NoopStore) IsAuthenticated() bool { return false }
