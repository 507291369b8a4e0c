package session

import "sync"

// MemoryStore is an in-memory Store for tests and one-shot processes.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	user  *User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) RemoveToken() error {
	return s.Clear()
}

func (s *MemoryStore) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *MemoryStore) SetUser(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}

func (s *MemoryStore) IsAuthenticated() bool {
	return s.Token() != ""
}
