// Package charts buckets quiz results into time series for the dashboard.
package charts

import (
	"sort"
	"sync"
	"time"

	"expo-admin/internal/domain"
)

type Granularity int

const (
	Hour Granularity = iota
	Day
)

func (g Granularity) String() string {
	if g == Day {
		return "day"
	}
	return "hour"
}

// Truncate returns the start of the bucket containing t in loc. Hours are cut
// in absolute time so a repeated wall-clock hour keeps its own start.
func (g Granularity) Truncate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	if g == Day {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	into := time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	return t.Add(-into)
}

func (g Granularity) next(t time.Time) time.Time {
	if g == Day {
		return t.AddDate(0, 0, 1)
	}
	return t.Add(time.Hour)
}

type Bucket struct {
	Start      time.Time
	Count      int
	TotalScore int
	MaxScore   int
}

// Average is the mean score per run, zero for an empty bucket.
func (b Bucket) Average() float64 {
	if b.Count == 0 {
		return 0
	}
	return float64(b.TotalScore) / float64(b.Count)
}

// Aggregate returns contiguous buckets covering [from, to). Every bucket in
// the window is present even when it holds no results.
func Aggregate(results []domain.QuizResult, g Granularity, from, to time.Time, loc *time.Location) []Bucket {
	a := NewAggregator(g, from, to, loc)
	for _, r := range results {
		a.Add(r)
	}
	return a.Buckets()
}

// Aggregator accumulates results into a fixed window. It is safe for
// concurrent use.
type Aggregator struct {
	g    Granularity
	from time.Time
	to   time.Time
	loc  *time.Location

	mu      sync.Mutex
	buckets []Bucket
}

func NewAggregator(g Granularity, from, to time.Time, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	a := &Aggregator{g: g, from: from, to: to, loc: loc}
	for start := g.Truncate(from, loc); start.Before(to); start = g.next(start) {
		a.buckets = append(a.buckets, Bucket{Start: start})
	}
	return a
}

// Add folds r into its bucket and reports whether it fell inside the window.
func (a *Aggregator) Add(r domain.QuizResult) bool {
	if r.FinishedAt.Before(a.from) || !r.FinishedAt.Before(a.to) {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	// Buckets are contiguous, so the owner is the last one starting at or
	// before the result.
	i := sort.Search(len(a.buckets), func(i int) bool {
		return a.buckets[i].Start.After(r.FinishedAt)
	}) - 1
	if i < 0 {
		return false
	}
	b := &a.buckets[i]
	b.Count++
	b.TotalScore += r.Score
	if r.Score > b.MaxScore {
		b.MaxScore = r.Score
	}
	return true
}

// Buckets returns a snapshot of the series.
func (a *Aggregator) Buckets() []Bucket {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Bucket(nil), a.buckets...)
}

// Total is the number of results in the window.
func Total(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		n += b.Count
	}
	return n
}
