// Package cache memoizes per-user query results for a short staleness
// window. Entries are keyed by entity, user and query parameters; mutations
// drop a user's entries for the entities they touch.
package cache

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entity names a family of cached queries.
type Entity string

const (
	Weeks     Entity = "weeks"
	Recipes   Entity = "recipes"
	Dashboard Entity = "dashboard"
)

// TTLs derives the per-entity staleness windows from a base duration.
// Recipe lists change least often and keep twice as long.
func TTLs(base time.Duration) map[Entity]time.Duration {
	return map[Entity]time.Duration{
		Weeks:     base,
		Recipes:   2 * base,
		Dashboard: base,
	}
}

type entry struct {
	value   any
	expires time.Time
}

// Cache is safe for concurrent use. A nil *Cache never caches.
type Cache struct {
	ttls  map[Entity]time.Duration
	group singleflight.Group
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	gens    map[string]uint64
}

// New creates a Cache. Entities with a TTL <= 0 are not cached.
func New(ttls map[Entity]time.Duration) *Cache {
	return &Cache{
		ttls:    ttls,
		now:     time.Now,
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
	}
}

func key(entity Entity, userID, params string) string {
	return string(entity) + "\x00" + userID + "\x00" + params
}

// Get returns the cached value for (entity, userID, params) or runs load.
// Concurrent identical loads share one call, so load runs on a context that
// keeps ctx's values but not its cancellation. Cached values are shared
// between callers and must not be mutated.
func Get[T any](ctx context.Context, c *Cache, entity Entity, userID, params string, load func(context.Context) (T, error)) (T, error) {
	if c == nil || c.ttls[entity] <= 0 {
		return load(ctx)
	}

	k := key(entity, userID, params)
	c.mu.Lock()
	if e, ok := c.entries[k]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		return e.value.(T), nil
	}
	gen := c.gens[userID]
	c.mu.Unlock()

	v, err, _ := c.group.Do(k+"\x00"+strconv.FormatUint(gen, 10), func() (any, error) {
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		// An invalidation during the load makes the result stale.
		if c.gens[userID] == gen {
			c.entries[k] = entry{value: v, expires: c.now().Add(c.ttls[entity])}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the user's entries for the given entities, or all of the
// user's entries when none are named.
func (c *Cache) Invalidate(userID string, entities ...Entity) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	for k := range c.entries {
		parts := strings.SplitN(k, "\x00", 3)
		if parts[1] != userID {
			continue
		}
		if len(entities) == 0 || slices.Contains(entities, Entity(parts[0])) {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
