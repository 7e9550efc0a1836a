package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"expo-admin/internal/domain"
	"github.com/redis/go-redis/v9"
)

// TokenStore keeps the admin session in Redis so it survives restarts and is
// shared by every console process using the same profile.
// Stored as: SET expo-admin:session:{profile} <json> EX ttl
type TokenStore struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
}

func NewTokenStore(client *redis.Client, profile string, ttl time.Duration) *TokenStore {
	if profile == "" {
		profile = "default"
	}
	return &TokenStore{client: client, profile: profile, ttl: ttl}
}

func (s *TokenStore) Load(ctx context.Context) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

// Save stores the session. The key expires with the session when it carries
// a deadline, otherwise after the configured TTL.
func (s *TokenStore) Save(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := s.ttl
	if !session.ExpiresAt.IsZero() {
		if until := time.Until(session.ExpiresAt); until > 0 && (ttl <= 0 || until < ttl) {
			ttl = until
		}
	}
	if err := s.client.Set(ctx, s.key(), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *TokenStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *TokenStore) key() string {
	return "expo-admin:session:" + s.profile
}
