package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"expo-admin/internal/domain"
)

func TestResultsSince(t *testing.T) {
	client, store, _ := newBackend(t)
	now := time.Now().UTC().Truncate(time.Second)
	store.AddResult(domain.QuizResult{QuizID: "1", Score: 5, FinishedAt: now.Add(-48 * time.Hour)})
	store.AddResult(domain.QuizResult{QuizID: "1", Score: 9, FinishedAt: now.Add(-time.Hour)})

	results, err := client.Results(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 1 || results[0].Score != 9 || !results[0].FinishedAt.Equal(now.Add(-time.Hour)) {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestStreamResults(t *testing.T) {
	client, store, _ := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan domain.QuizResult, 1)
	done := make(chan error, 1)
	go func() {
		done <- client.StreamResults(ctx, func(r domain.QuizResult) {
			select {
			case got <- r:
			default:
			}
		})
	}()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case r := <-got:
			if r.QuizID != "quiz-9" {
				t.Fatalf("unexpected result %+v", r)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("stream should end cleanly on cancel, got %v", err)
			}
			return
		case <-ticker.C:
			store.AddResult(domain.QuizResult{QuizID: "quiz-9", Score: 1, FinishedAt: time.Now()})
		case <-timeout:
			t.Fatalf("timed out waiting for streamed result")
		}
	}
}

func TestStreamResultsUnauthorized(t *testing.T) {
	client, store, tokens := newBackend(t)
	store.RevokeAll()

	err := client.StreamResults(context.Background(), func(domain.QuizResult) {})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if tokens.expired != 1 {
		t.Fatalf("expected token source expired")
	}
}
