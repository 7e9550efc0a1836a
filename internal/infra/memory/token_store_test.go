package memory

import (
	"context"
	"errors"
	"testing"

	"expo-admin/internal/domain"
)

func TestTokenStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore()

	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected no session, got %v", err)
	}
	if err := store.Save(ctx, domain.Session{Token: "t1", Email: "a@b.c"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil || got.Token != "t1" {
		t.Fatalf("expected stored token, got %+v err=%v", got, err)
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected session removed, got %v", err)
	}
}
