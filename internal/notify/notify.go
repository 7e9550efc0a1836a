// Package notify reports the outcome of host-screen operations to the user.
package notify

import (
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is a fire-and-forget toast.
type Notification struct {
	ID          string
	Title       string
	Description string
	Severity    Severity
	CreatedAt   time.Time
}

// Notifier accepts notifications without blocking the caller.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, target := range m {
		target.Notify(n)
	}
}

// Center keeps recent notifications until they auto-dismiss and broadcasts
// each new one to subscribers.
type Center struct {
	ttl  time.Duration
	now  func() time.Time
	log  *logrus.Entry
	mu   sync.RWMutex
	seq  int
	live []Notification

	subscribers map[chan Notification]struct{}
}

func NewCenter(ttl time.Duration, log *logrus.Entry) *Center {
	return NewCenterWithClock(ttl, log, time.Now)
}

// NewCenterWithClock allows deterministic expiry in tests.
func NewCenterWithClock(ttl time.Duration, log *logrus.Entry, now func() time.Time) *Center {
	return &Center{
		ttl:         ttl,
		now:         now,
		log:         log,
		subscribers: make(map[chan Notification]struct{}),
	}
}

func (c *Center) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	n.ID = strconv.Itoa(c.seq)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now()
	}
	c.pruneLocked()
	c.live = append(c.live, n)
	if c.log != nil {
		c.log.WithFields(logrus.Fields{
			"severity":    n.Severity.String(),
			"description": n.Description,
		}).Info(n.Title)
	}
	c.broadcastLocked(n)
}

// Active returns the notifications that have not yet auto-dismissed, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	return append([]Notification(nil), c.live...)
}

// Dismiss removes a notification before it expires.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.live {
		if n.ID == id {
			c.live = append(c.live[:i], c.live[i+1:]...)
			return
		}
	}
}

// Subscribe returns a channel receiving every new notification.
// The caller must invoke the returned cancel function to avoid leaks.
func (c *Center) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 8)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Center) pruneLocked() {
	if c.ttl <= 0 {
		return
	}
	now := c.now()
	kept := c.live[:0]
	for _, n := range c.live {
		if now.Sub(n.CreatedAt) < c.ttl {
			kept = append(kept, n)
		}
	}
	c.live = kept
}

func (c *Center) broadcastLocked(n Notification) {
	for ch := range c.subscribers {
		select {
		case ch <- n:
		default:
			// A slow subscriber loses its oldest toast rather than blocking Notify.
			select {
			case <-ch:
			default:
			}
			ch <- n
		}
	}
}
