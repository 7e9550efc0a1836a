package memory

import (
	"context"
	"sync"

	"expo-admin/internal/domain"
)

// TokenStore is an in-memory implementation of auth.TokenStore. Sessions do
// not survive the process.
type TokenStore struct {
	mu      sync.RWMutex
	session *domain.Session
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Load(_ context.Context) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return domain.Session{}, domain.ErrNoSession
	}
	return *s.session, nil
}

func (s *TokenStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

func (s *TokenStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
