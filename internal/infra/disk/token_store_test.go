package disk

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"expo-admin/internal/domain"
)

func TestTokenStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.db")
	ctx := context.Background()

	store, err := Open(path, "prod")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	want := domain.Session{Token: "tok", Email: "admin@example.com", ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path, "prod")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != want.Token || got.Email != want.Email || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := reopened.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := reopened.Load(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after delete, got %v", err)
	}
	if err := reopened.Delete(ctx); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestTokenStoreProfilesAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	store, err := Open(path, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if err := store.Save(ctx, domain.Session{Token: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	other := &TokenStore{db: store.db, profile: "staging"}
	if _, err := other.Load(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected staging profile to be empty, got %v", err)
	}
}
