package app

import (
	"context"

	"expo-admin/internal/listmanager"
)

// columns wraps the definition's lookup columns so they render the label of
// the referenced record instead of its id.
func (s *Screen) columns() []listmanager.Column {
	cols := append([]listmanager.Column(nil), s.def.Columns...)
	for i, c := range cols {
		for _, l := range s.def.Lookups {
			if l.Column != c.Key {
				continue
			}
			l := l
			inner := c.Render
			cols[i].Render = func(v listmanager.Value, r listmanager.Record) string {
				if label, ok := s.label(l.Resource, listmanager.FormatValue(v)); ok {
					return label
				}
				if inner != nil {
					return inner(v, r)
				}
				return listmanager.FormatValue(v)
			}
		}
	}
	return cols
}

// loadLookups fetches every referenced resource. A failed lookup leaves the
// raw ids visible and is only logged.
func (s *Screen) loadLookups(ctx context.Context) {
	for _, l := range s.def.Lookups {
		var (
			records []listmanager.Record
			err     error
		)
		if s.lookups != nil {
			records, err = s.lookups.List(ctx, l.Resource)
		} else {
			records, err = s.backend.List(ctx, l.Resource)
		}
		if err != nil {
			s.log.WithError(err).WithField("lookup", l.Resource).Warn("lookup unavailable")
			continue
		}
		labels := make(map[string]string, len(records))
		for _, r := range records {
			labels[r.ID()] = r.Text(l.LabelKey)
		}
		s.labelMu.Lock()
		s.labels[l.Resource] = labels
		s.labelMu.Unlock()
	}
}

func (s *Screen) label(resource, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	s.labelMu.RLock()
	defer s.labelMu.RUnlock()
	label, ok := s.labels[resource][id]
	return label, ok && label != ""
}
