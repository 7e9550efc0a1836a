package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"expo-admin/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestTokenStoreSetsAndClearsKeys(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewTokenStore(client, "staging", time.Hour)
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	session := domain.Session{Token: "tok", Email: "admin@example.com"}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("expo-admin:session:staging") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("expo-admin:session:staging"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "tok" || got.Email != "admin@example.com" {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := store.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("expo-admin:session:staging") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestTokenStoreExpiresWithSession(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewTokenStore(client, "", time.Hour)
	ctx := context.Background()

	session := domain.Session{Token: "tok", ExpiresAt: time.Now().Add(10 * time.Minute)}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	ttl := mr.TTL("expo-admin:session:default")
	if ttl <= 0 || ttl > 10*time.Minute {
		t.Fatalf("expected ttl bounded by session deadline, got %v", ttl)
	}

	mr.FastForward(11 * time.Minute)
	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected session to expire, got %v", err)
	}
}
