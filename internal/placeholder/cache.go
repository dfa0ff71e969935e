package placeholder

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// GenerateFunc produces a placeholder for a cache miss.
type GenerateFunc func(ctx context.Context) (string, error)

// CacheStats is a snapshot of SessionCache counters.
type CacheStats struct {
	Entries     int   `json:"entries"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Generations int64 `json:"generations"`
	Failures    int64 `json:"failures"`
}

// SessionCache memoises placeholders per key on top of a Store.
//
// Successful results are written once and returned verbatim afterwards.
// Failed generations are never written. Concurrent misses for one key are
// collapsed into a single generation whose result every waiter receives.
// A generation that was running when Evict or Clear was called still returns
// its result to its waiters but does not write it.
type SessionCache struct {
	store Store
	group singleflight.Group

	// mu orders writes against invalidation; epoch counts invalidations.
	mu    sync.Mutex
	epoch uint64

	hits        atomic.Int64
	misses      atomic.Int64
	generations atomic.Int64
	failures    atomic.Int64
}

// NewSessionCache wraps store. A nil store gets a fresh MemoryStore.
func NewSessionCache(store Store) *SessionCache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &SessionCache{store: store}
}

// Lookup returns the cached placeholder for key without generating.
func (c *SessionCache) Lookup(key string) (string, bool) {
	return c.store.Get(key)
}

// GetOrGenerate returns the placeholder cached under key, invoking gen on a
// miss and caching its result on success.
//
// The generation is shared with concurrent callers for the same key and is
// not cancelled when ctx ends; a caller whose ctx ends returns ctx.Err() while
// the shared result still lands in the cache.
func (c *SessionCache) GetOrGenerate(ctx context.Context, key string, gen GenerateFunc) (string, error) {
	v, _, err := c.getOrGenerate(ctx, key, gen)
	return v, err
}

func (c *SessionCache) getOrGenerate(ctx context.Context, key string, gen GenerateFunc) (string, bool, error) {
	if v, ok := c.store.Get(key); ok {
		c.hits.Add(1)
		return v, true, nil
	}
	c.misses.Add(1)

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// A generation for this key may have finished since the miss.
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}

		c.mu.Lock()
		epoch := c.epoch
		c.mu.Unlock()

		c.generations.Add(1)
		v, err := gen(detached)
		if err == nil && v == "" {
			err = ErrEmptyPlaceholder
		}
		if err != nil {
			c.failures.Add(1)
			return "", err
		}

		c.mu.Lock()
		if c.epoch == epoch {
			c.store.Set(key, v)
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", false, res.Err
		}
		return res.Val.(string), false, nil
	}
}

// Evict removes key when the store supports deletion. Later callers start a
// fresh generation instead of joining one already running.
func (c *SessionCache) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.group.Forget(key)
	if d, ok := c.store.(interface{ Delete(string) }); ok {
		d.Delete(key)
	}
}

// Clear empties the store when it supports clearing.
func (c *SessionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	if cl, ok := c.store.(interface{ Clear() }); ok {
		cl.Clear()
	}
}

// Stats returns a snapshot of the cache counters. Entries is -1 when the
// store cannot report its size.
func (c *SessionCache) Stats() CacheStats {
	entries := -1
	if l, ok := c.store.(interface{ Len() int }); ok {
		entries = l.Len()
	}
	return CacheStats{
		Entries:     entries,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Generations: c.generations.Load(),
		Failures:    c.failures.Load(),
	}
}
