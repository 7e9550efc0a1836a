package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"expo-admin/internal/domain"
	"expo-admin/internal/listmanager"
)

func newTestStore() *ResourceStore {
	return NewResourceStore(Seed{
		Records: map[string][]listmanager.Record{
			domain.ResourceConsoles: {
				{"id": "1", "name": "Konsole 1", "active": false},
				{"id": "2", "name": "Konsole 2", "active": true},
			},
		},
		Accounts: map[string]string{"admin@example.com": "secret"},
	})
}

func TestResourceStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	created, err := store.Create(ctx, domain.ResourceConsoles, listmanager.Record{"name": "Konsole 3"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID() != "3" {
		t.Fatalf("expected id 3 after seeded ids, got %q", created.ID())
	}

	if _, err := store.Update(ctx, domain.ResourceConsoles, "3", listmanager.Record{"id": "99", "active": true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.Get(ctx, domain.ResourceConsoles, "3")
	if err != nil || got["active"] != true || got.ID() != "3" {
		t.Fatalf("unexpected record after update %+v err=%v", got, err)
	}

	if err := store.Delete(ctx, domain.ResourceConsoles, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ := store.List(ctx, domain.ResourceConsoles)
	if len(list) != 2 || list[0].ID() != "2" {
		t.Fatalf("unexpected list after delete %+v", list)
	}
	if err := store.Delete(ctx, domain.ResourceConsoles, "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.List(ctx, "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown resource, got %v", err)
	}
}

func TestResourceStoreListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	list, _ := store.List(ctx, domain.ResourceConsoles)
	list[0]["name"] = "mutated"
	again, _ := store.List(ctx, domain.ResourceConsoles)
	if again[0]["name"] != "Konsole 1" {
		t.Fatalf("expected store unaffected by caller mutation, got %v", again[0]["name"])
	}
}

func TestResourceStoreAuth(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if _, err := store.Authenticate(ctx, "admin@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	session, err := store.Authenticate(ctx, "Admin@Example.com", "secret")
	if err != nil || session.Token == "" {
		t.Fatalf("expected session, got %+v err=%v", session, err)
	}
	if err := store.VerifySession(ctx, session.Token); err != nil {
		t.Fatalf("verify: %v", err)
	}
	store.RevokeAll()
	if err := store.VerifySession(ctx, session.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after revoke, got %v", err)
	}
}

func TestResourceStoreStreamsResults(t *testing.T) {
	store := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan domain.QuizResult, 1)
	done := make(chan error, 1)
	go func() {
		done <- store.StreamResults(ctx, func(r domain.QuizResult) { got <- r })
	}()

	// Wait for subscription before publishing.
	deadline := time.Now().Add(time.Second)
	for {
		store.mu.RLock()
		n := len(store.subscribers)
		store.mu.RUnlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	store.AddResult(domain.QuizResult{QuizID: "1", Score: 3, FinishedAt: time.Now()})
	select {
	case r := <-got:
		if r.ID == "" || r.Score != 3 {
			t.Fatalf("unexpected result %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected streamed result")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("stream returned %v", err)
	}
	results, _ := store.Results(context.Background(), time.Time{})
	if len(results) != 1 {
		t.Fatalf("expected stored result, got %d", len(results))
	}
}

func TestResourceStoreResultIDsContinueAfterSeed(t *testing.T) {
	store := NewResourceStore(Seed{Results: []domain.QuizResult{{ID: "7", FinishedAt: time.Now()}}})
	store.AddResult(domain.QuizResult{QuizID: "1", FinishedAt: time.Now()})

	results, _ := store.Results(context.Background(), time.Time{})
	if len(results) != 2 || results[1].ID != "8" {
		t.Fatalf("expected new result id 8, got %+v", results)
	}
}
