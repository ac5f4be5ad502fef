// Package respcache is a bounded in-memory answer cache with TTL and
// LRU eviction.
package respcache

import (
	"container/list"
	"sync"
	"time"
)

type entry[V any] struct {
	key       string
	value     V
	createdAt time.Time
	lastHitAt time.Time
}

// Cache holds up to capacity entries for at most ttl each. Writes below
// minScore are rejected so misaligned answers never get replayed.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	minScore float64
	order    *list.List // front = most recently used
	items    map[string]*list.Element

	hits   int64
	misses int64

	// now is swappable for TTL tests.
	now func() time.Time
}

func New[V any](capacity int, ttl time.Duration, minScore float64) *Cache[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[V]{
		capacity: capacity,
		ttl:      ttl,
		minScore: minScore,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get returns the cached value for key if it is younger than the TTL,
// updating its recency.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	ent := el.Value.(*entry[V])
	if c.now().Sub(ent.createdAt) > c.ttl {
		c.removeLocked(el)
		c.misses++
		return zero, false
	}
	ent.lastHitAt = c.now()
	c.order.MoveToFront(el)
	c.hits++
	return ent.value, true
}

// Put stores value under key. Entries scoring below the gate are not
// cached and Put reports false.
func (c *Cache[V]) Put(key string, value V, score float64) bool {
	if score < c.minScore {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[V])
		ent.value = value
		ent.createdAt = c.now()
		ent.lastHitAt = c.now()
		c.order.MoveToFront(el)
		return true
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	ent := &entry[V]{
		key:       key,
		value:     value,
		createdAt: c.now(),
		lastHitAt: c.now(),
	}
	c.items[key] = c.order.PushFront(ent)
	return true
}

// Len reports the number of entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit and miss counters since startup.
func (c *Cache[V]) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Sweep drops all expired entries and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.now().Sub(el.Value.(*entry[V]).createdAt) > c.ttl {
			c.removeLocked(el)
			removed++
		}
		el = prev
	}
	return removed
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}
