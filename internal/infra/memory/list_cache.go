package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"expo-admin/internal/listmanager"
	"golang.org/x/sync/singleflight"
)

// Lister fetches every record of a resource from the backing API.
type Lister interface {
	List(ctx context.Context, resource string) ([]listmanager.Record, error)
}

// ListCache caches resource lists with TTL to avoid refetching lookup data
// (labels shown in other screens) on every mount.
type ListCache struct {
	lister Lister
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedList
	// gen counts invalidations per resource. A fill started under an older
	// generation is returned to its callers but never stored.
	gen map[string]uint64
}

type cachedList struct {
	records   []listmanager.Record
	expiresAt time.Time
}

func NewListCache(lister Lister, ttl time.Duration) *ListCache {
	return NewListCacheWithClock(lister, ttl, time.Now)
}

// NewListCacheWithClock is used by tests for deterministic expiry.
func NewListCacheWithClock(lister Lister, ttl time.Duration, clock func() time.Time) *ListCache {
	return &ListCache{
		lister: lister,
		ttl:    ttl,
		clock:  clock,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedList),
		gen:    make(map[string]uint64),
	}
}

func (c *ListCache) List(ctx context.Context, resource string) ([]listmanager.Record, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[resource]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.records, nil
	}
	gen := c.gen[resource]
	c.mu.RUnlock()

	// Callers after an Invalidate must not join a fill started before it.
	key := resource + "#" + strconv.FormatUint(gen, 10)
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[resource]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.records, nil
		}
		c.mu.RUnlock()

		records, err := c.lister.List(ctx, resource)
		if err != nil {
			return nil, err
		}

		expiresAt := now.Add(c.ttlWithJitter())
		c.mu.Lock()
		if c.gen[resource] == gen {
			c.cache[resource] = cachedList{
				records:   records,
				expiresAt: expiresAt,
			}
		}
		c.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]listmanager.Record), nil
}

// Invalidate drops the cached list of resource after a mutation.
func (c *ListCache) Invalidate(_ context.Context, resource string) error {
	c.mu.Lock()
	delete(c.cache, resource)
	c.gen[resource]++
	c.mu.Unlock()
	return nil
}

func (c *ListCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
