package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"expo-admin/internal/listmanager"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Lister fetches every record of a resource from the backing API.
type Lister interface {
	List(ctx context.Context, resource string) ([]listmanager.Record, error)
}

// ListCache caches resource lists in Redis and falls back to the lister on a
// miss. Lists are stored as: SET expo-admin:list:{resource} <json array> EX ttl
//
// Invalidate also bumps expo-admin:list-gen:{resource}. A fill only writes its
// list back while that counter is unchanged, so an Invalidate racing a fill
// wins.
type ListCache struct {
	client *redis.Client
	lister Lister
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewListCache(client *redis.Client, lister Lister, ttl time.Duration) *ListCache {
	return &ListCache{
		client: client,
		lister: lister,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ListCache) List(ctx context.Context, resource string) ([]listmanager.Record, error) {
	if records, ok := c.cached(ctx, resource); ok {
		return records, nil
	}

	gen := c.generation(ctx, c.client, resource)
	key := resource + "#" + strconv.FormatUint(gen, 10)
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if records, ok := c.cached(ctx, resource); ok {
			return records, nil
		}

		records, err := c.lister.List(ctx, resource)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(records); err == nil {
			// best-effort; a failed write only costs a refetch
			_ = c.store(ctx, resource, gen, raw)
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]listmanager.Record), nil
}

// Invalidate drops the cached list of resource after a mutation.
func (c *ListCache) Invalidate(ctx context.Context, resource string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(resource))
		pipe.Incr(ctx, c.genKey(resource))
		return nil
	})
	return err
}

// store sets the cached list unless resource was invalidated after gen was
// read.
func (c *ListCache) store(ctx context.Context, resource string, gen uint64, raw []byte) error {
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		if c.generation(ctx, tx, resource) != gen {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(resource), raw, c.ttlWithJitter())
			return nil
		})
		return err
	}, c.genKey(resource))
	if errors.Is(err, redis.TxFailedErr) {
		// invalidated between the check and EXEC
		return nil
	}
	return err
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *ListCache) generation(ctx context.Context, cmd getter, resource string) uint64 {
	gen, err := cmd.Get(ctx, c.genKey(resource)).Uint64()
	if err != nil {
		return 0
	}
	return gen
}

func (c *ListCache) cached(ctx context.Context, resource string) ([]listmanager.Record, bool) {
	raw, err := c.client.Get(ctx, c.key(resource)).Bytes()
	if err != nil {
		return nil, false
	}
	var records []listmanager.Record
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return nil, false
	}
	return records, true
}

func (c *ListCache) key(resource string) string {
	return "expo-admin:list:" + resource
}

func (c *ListCache) genKey(resource string) string {
	return "expo-admin:list-gen:" + resource
}

func (c *ListCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
