package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"expo-admin/internal/domain"
	"expo-admin/internal/listmanager"
	"github.com/google/uuid"
)

// ResourceStore is an in-memory stand-in for the persistence API, used by the
// demo mode and by tests. It implements the same surface as api.Client.
type ResourceStore struct {
	mu       sync.RWMutex
	data     map[string][]listmanager.Record
	nextID   map[string]int
	results  []domain.QuizResult
	accounts map[string]string
	tokens   map[string]string
	actions  []string
	now      func() time.Time

	subscribers map[chan domain.QuizResult]struct{}
}

// Seed is the initial content of a ResourceStore.
type Seed struct {
	Records map[string][]listmanager.Record
	Results []domain.QuizResult
	// Accounts maps login email to password.
	Accounts map[string]string
}

func NewResourceStore(seed Seed) *ResourceStore {
	s := &ResourceStore{
		data:        make(map[string][]listmanager.Record),
		nextID:      make(map[string]int),
		accounts:    make(map[string]string),
		tokens:      make(map[string]string),
		now:         time.Now,
		subscribers: make(map[chan domain.QuizResult]struct{}),
	}
	for _, resource := range domain.Resources() {
		if resource != domain.ResourceResults {
			s.data[resource] = nil
		}
	}
	for resource, records := range seed.Records {
		for _, r := range records {
			s.data[resource] = append(s.data[resource], r.Clone())
			if n, err := strconv.Atoi(r.ID()); err == nil && n > s.nextID[resource] {
				s.nextID[resource] = n
			}
		}
	}
	for _, r := range seed.Results {
		s.results = append(s.results, r)
		if n, err := strconv.Atoi(r.ID); err == nil && n > s.nextID[domain.ResourceResults] {
			s.nextID[domain.ResourceResults] = n
		}
	}
	for email, password := range seed.Accounts {
		s.accounts[strings.ToLower(email)] = password
	}
	return s
}

func (s *ResourceStore) List(_ context.Context, resource string) ([]listmanager.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if resource == domain.ResourceResults {
		out := make([]listmanager.Record, len(s.results))
		for i, r := range s.results {
			out[i] = resultRecord(r)
		}
		return out, nil
	}
	records, ok := s.data[resource]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", resource, domain.ErrNotFound)
	}
	out := make([]listmanager.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *ResourceStore) Get(_ context.Context, resource, id string) (listmanager.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, err := s.indexLocked(resource, id)
	if err != nil {
		return nil, err
	}
	return s.data[resource][idx].Clone(), nil
}

func (s *ResourceStore) Create(_ context.Context, resource string, fields listmanager.Record) (listmanager.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[resource]; !ok {
		return nil, fmt.Errorf("create %s: %w", resource, domain.ErrNotFound)
	}
	s.nextID[resource]++
	rec := fields.Clone()
	rec[listmanager.IDKey] = strconv.Itoa(s.nextID[resource])
	s.data[resource] = append(s.data[resource], rec)
	return rec.Clone(), nil
}

func (s *ResourceStore) Update(_ context.Context, resource, id string, fields listmanager.Record) (listmanager.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.indexLocked(resource, id)
	if err != nil {
		return nil, err
	}
	rec := s.data[resource][idx].Clone()
	for k, v := range fields {
		if k != listmanager.IDKey {
			rec[k] = v
		}
	}
	s.data[resource][idx] = rec
	return rec.Clone(), nil
}

func (s *ResourceStore) Delete(_ context.Context, resource, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.indexLocked(resource, id)
	if err != nil {
		return err
	}
	records := s.data[resource]
	s.data[resource] = append(records[:idx:idx], records[idx+1:]...)
	return nil
}

// Perform records the action; only existing records accept actions.
func (s *ResourceStore) Perform(_ context.Context, resource, id, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.indexLocked(resource, id); err != nil {
		return err
	}
	s.actions = append(s.actions, resource+"/"+id+"/"+action)
	return nil
}

// Actions returns the performed actions as "resource/id/action".
func (s *ResourceStore) Actions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.actions...)
}

func (s *ResourceStore) Authenticate(_ context.Context, email, password string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want, ok := s.accounts[strings.ToLower(email)]
	if !ok || want != password {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	token := uuid.NewString()
	s.tokens[token] = email
	return domain.Session{Token: token, Email: email, ExpiresAt: s.now().Add(12 * time.Hour)}, nil
}

func (s *ResourceStore) VerifySession(_ context.Context, token string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tokens[token]; !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// RevokeAll invalidates every issued token.
func (s *ResourceStore) RevokeAll() {
	s.mu.Lock()
	s.tokens = make(map[string]string)
	s.mu.Unlock()
}

func (s *ResourceStore) Results(_ context.Context, since time.Time) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizResult, 0, len(s.results))
	for _, r := range s.results {
		if since.IsZero() || !r.FinishedAt.Before(since) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinishedAt.Before(out[j].FinishedAt) })
	return out, nil
}

// AddResult stores a finished run and pushes it to live subscribers.
func (s *ResourceStore) AddResult(r domain.QuizResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		s.nextID[domain.ResourceResults]++
		r.ID = strconv.Itoa(s.nextID[domain.ResourceResults])
	}
	s.results = append(s.results, r)
	for ch := range s.subscribers {
		select {
		case ch <- r:
		default:
		}
	}
}

// StreamResults delivers results added after the call until ctx ends.
func (s *ResourceStore) StreamResults(ctx context.Context, handle func(domain.QuizResult)) error {
	ch := make(chan domain.QuizResult, 16)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.subscribers, ch)
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-ch:
			handle(r)
		}
	}
}

func (s *ResourceStore) indexLocked(resource, id string) (int, error) {
	records, ok := s.data[resource]
	if !ok {
		return -1, fmt.Errorf("%s: %w", resource, domain.ErrNotFound)
	}
	for i, r := range records {
		if r.ID() == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
}

func resultRecord(r domain.QuizResult) listmanager.Record {
	return listmanager.Record{
		"id":         r.ID,
		"quizId":     r.QuizID,
		"playerId":   r.PlayerID,
		"score":      r.Score,
		"maxScore":   r.MaxScore,
		"finishedAt": r.FinishedAt.UTC().Format(time.RFC3339),
	}
}
