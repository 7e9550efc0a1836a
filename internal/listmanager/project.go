package listmanager

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Direction is the order of the active sort.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortState is the single active sort. The zero value means no sort.
type SortState struct {
	Key       string
	Direction Direction
}

// Active reports whether a sort key has been selected.
func (s SortState) Active() bool {
	return s.Key != ""
}

// Next returns the state after a header click on key: a new key starts
// ascending, the active key flips between ascending and descending.
func (s SortState) Next(key string) SortState {
	if s.Key != key {
		return SortState{Key: key, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// Filter returns the records where at least one field value contains term,
// compared under Unicode case folding. An empty term keeps every record.
// The input slice is never modified.
func Filter(records []Record, term string) []Record {
	out := make([]Record, 0, len(records))
	if term == "" {
		return append(out, records...)
	}
	fold := cases.Fold()
	needle := fold.String(term)
	for _, r := range records {
		if matches(fold, r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func matches(fold cases.Caser, r Record, needle string) bool {
	for _, v := range r {
		if strings.Contains(fold.String(FormatValue(v)), needle) {
			return true
		}
	}
	return false
}

// SortRecords returns a stably sorted copy of records. Descending negates the
// comparator, so equal keys keep their input order in both directions.
func SortRecords(records []Record, state SortState) []Record {
	out := slices.Clone(records)
	if !state.Active() {
		return out
	}
	key := state.Key
	slices.SortStableFunc(out, func(a, b Record) int {
		c := Compare(a[key], b[key])
		if state.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}

// Project is sort(filter(records)).
func Project(records []Record, term string, state SortState) []Record {
	return SortRecords(Filter(records, term), state)
}
