package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"expo-admin/internal/charts"
	"expo-admin/internal/domain"
	"expo-admin/internal/logger"
	"github.com/sirupsen/logrus"
)

// ResultSource provides finished quiz runs.
type ResultSource interface {
	Results(ctx context.Context, since time.Time) ([]domain.QuizResult, error)
	StreamResults(ctx context.Context, handle func(domain.QuizResult)) error
}

// Charts is one snapshot of the dashboard series.
type Charts struct {
	Hourly      []charts.Bucket
	Daily       []charts.Bucket
	GeneratedAt time.Time
}

type DashboardOptions struct {
	Location *time.Location
	Now      func() time.Time
	Log      *logrus.Entry
}

// Dashboard aggregates results into an hourly series over the last 24 hours
// and a daily series over the last 7 days.
type Dashboard struct {
	src ResultSource
	loc *time.Location
	now func() time.Time
	log *logrus.Entry

	mu     sync.Mutex
	hourly *charts.Aggregator
	daily  *charts.Aggregator
	hourTo time.Time

	subMu       sync.Mutex
	subscribers map[chan Charts]struct{}
}

func NewDashboard(src ResultSource, opts DashboardOptions) *Dashboard {
	d := &Dashboard{
		src:         src,
		loc:         opts.Location,
		now:         opts.Now,
		log:         opts.Log,
		subscribers: make(map[chan Charts]struct{}),
	}
	if d.loc == nil {
		d.loc = time.Local
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.log == nil {
		d.log = logger.For("dashboard")
	}
	return d
}

// Charts fetches the results of the last 7 days and rebuilds both series.
func (d *Dashboard) Charts(ctx context.Context) (Charts, error) {
	now := d.now()
	hourTo := charts.Hour.Truncate(now, d.loc).Add(time.Hour)
	hourFrom := hourTo.Add(-24 * time.Hour)
	dayTo := charts.Day.Truncate(now, d.loc).AddDate(0, 0, 1)
	dayFrom := dayTo.AddDate(0, 0, -7)

	results, err := d.src.Results(ctx, dayFrom)
	if err != nil {
		return Charts{}, fmt.Errorf("dashboard: %w", err)
	}
	hourly := charts.NewAggregator(charts.Hour, hourFrom, hourTo, d.loc)
	daily := charts.NewAggregator(charts.Day, dayFrom, dayTo, d.loc)
	for _, r := range results {
		hourly.Add(r)
		daily.Add(r)
	}

	d.mu.Lock()
	d.hourly, d.daily, d.hourTo = hourly, daily, hourTo
	d.mu.Unlock()
	return d.snapshot(), nil
}

// Live keeps the series current from the result stream until ctx ends,
// publishing a snapshot to subscribers after every result.
func (d *Dashboard) Live(ctx context.Context) error {
	current, err := d.Charts(ctx)
	if err != nil {
		return err
	}
	d.publish(current)

	return d.src.StreamResults(ctx, func(r domain.QuizResult) {
		d.mu.Lock()
		rolled := !r.FinishedAt.Before(d.hourTo)
		hourly, daily := d.hourly, d.daily
		d.mu.Unlock()

		if rolled {
			// The window moved on; rebuild from the API.
			if _, err := d.Charts(ctx); err != nil {
				d.log.WithError(err).Warn("failed to roll dashboard window")
				return
			}
		} else {
			hourly.Add(r)
			daily.Add(r)
		}
		d.log.WithFields(logrus.Fields{"quiz": r.QuizID, "score": r.Score}).Debug("result received")
		d.publish(d.snapshot())
	})
}

// Subscribe returns a channel receiving every published snapshot. Slow
// subscribers only see the latest one.
func (d *Dashboard) Subscribe() (<-chan Charts, func()) {
	ch := make(chan Charts, 1)
	d.subMu.Lock()
	d.subscribers[ch] = struct{}{}
	d.subMu.Unlock()

	cancel := func() {
		d.subMu.Lock()
		if _, ok := d.subscribers[ch]; ok {
			delete(d.subscribers, ch)
			close(ch)
		}
		d.subMu.Unlock()
	}
	return ch, cancel
}

func (d *Dashboard) publish(c Charts) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	for ch := range d.subscribers {
		select {
		case ch <- c:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- c
		}
	}
}

func (d *Dashboard) snapshot() Charts {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := Charts{GeneratedAt: d.now()}
	if d.hourly != nil {
		c.Hourly = d.hourly.Buckets()
		c.Daily = d.daily.Buckets()
	}
	return c
}
