// Package disk persists the admin session in a local pudge database so a
// restarted console resumes without a new login.
package disk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"expo-admin/internal/domain"
	"github.com/recoilme/pudge"
)

// TokenStore keeps one session per profile under the key "session_<profile>".
type TokenStore struct {
	db      *pudge.Db
	profile string
}

// Open opens or creates the database file at path.
func Open(path, profile string) (*TokenStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("session dir: %w", err)
		}
	}
	db, err := pudge.Open(path, &pudge.Config{
		SyncInterval: 1, // fsync every second
		FileMode:     0o600,
		DirMode:      0o700,
	})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if profile == "" {
		profile = "default"
	}
	return &TokenStore{db: db, profile: profile}, nil
}

func (s *TokenStore) Load(_ context.Context) (domain.Session, error) {
	var raw []byte
	if err := s.db.Get(s.key(), &raw); err != nil {
		if errors.Is(err, pudge.ErrKeyNotFound) {
			return domain.Session{}, domain.ErrNoSession
		}
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *TokenStore) Save(_ context.Context, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.db.Set(s.key(), raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *TokenStore) Delete(_ context.Context) error {
	err := s.db.Delete(s.key())
	if err != nil && !errors.Is(err, pudge.ErrKeyNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *TokenStore) Close() error {
	return s.db.Close()
}

func (s *TokenStore) key() string {
	return "session_" + s.profile
}
