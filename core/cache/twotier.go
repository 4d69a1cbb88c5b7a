package cache

import "sync"

// TwoTierCache is a thread-safe segmented LRU cache. New items enter the
// probation tier; a cache hit promotes an item to the protected tier.
// Items that overflow the protected tier are demoted back to probation
// rather than evicted, so a single scan of one-shot keys cannot flush
// frequently used entries.
//
// Both tiers are capacity-bounded and all operations are O(1).
type TwoTierCache[K comparable, V any] struct {
	mu           sync.Mutex
	probationCap int
	protectedCap int
	items        map[K]*entry[K, V]
	probation    lruList[K, V]
	protected    lruList[K, V]
	onEvict      func(K, V)
}

// TwoTierStats is a point-in-time snapshot of tier occupancy.
type TwoTierStats struct {
	Probation int
	Protected int
}

// NewTwoTierCache creates a segmented cache with the given tier capacities.
// Returns ErrInvalidCapacity when either capacity is non-positive.
func NewTwoTierCache[K comparable, V any](probationCap, protectedCap int) (*TwoTierCache[K, V], error) {
	if probationCap <= 0 || protectedCap <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &TwoTierCache[K, V]{
		probationCap: probationCap,
		protectedCap: protectedCap,
		items:        make(map[K]*entry[K, V], probationCap+protectedCap),
	}, nil
}

// SetEvictCallback registers fn to be called for each item removed by
// capacity eviction or Clear. The callback runs outside the cache lock.
func (c *TwoTierCache[K, V]) SetEvictCallback(fn func(key K, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get returns the value stored under key. A hit on a probation item
// promotes it to the protected tier; a hit on a protected item marks it
// most recently used.
func (c *TwoTierCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()

	e, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		var zero V
		return zero, false
	}

	if e.protected {
		c.protected.moveToFront(e)
		value := e.value
		c.mu.Unlock()
		return value, true
	}

	// Promote from probation. The tier swap can overflow protected, which
	// demotes its coldest entry, which in turn can overflow probation.
	c.probation.remove(e)
	e.protected = true
	c.protected.pushFront(e)

	if c.protected.size > c.protectedCap {
		demoted := c.protected.back()
		c.protected.remove(demoted)
		demoted.protected = false
		c.probation.pushFront(demoted)
	}

	evicted, evictFn := c.evictProbationOverflowLocked()
	value := e.value
	c.mu.Unlock()

	if evicted != nil && evictFn != nil {
		evictFn(evicted.key, evicted.value)
	}
	return value, true
}

// Put stores value under key. New keys enter the probation tier; existing
// keys are updated in place and marked most recently used within their tier.
func (c *TwoTierCache[K, V]) Put(key K, value V) {
	c.mu.Lock()

	if e, ok := c.items[key]; ok {
		e.value = value
		if e.protected {
			c.protected.moveToFront(e)
		} else {
			c.probation.moveToFront(e)
		}
		c.mu.Unlock()
		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.items[key] = e
	c.probation.pushFront(e)

	evicted, evictFn := c.evictProbationOverflowLocked()
	c.mu.Unlock()

	if evicted != nil && evictFn != nil {
		evictFn(evicted.key, evicted.value)
	}
}

// evictProbationOverflowLocked removes the coldest probation entry when the
// tier is over capacity. Callers run the returned callback after unlocking.
func (c *TwoTierCache[K, V]) evictProbationOverflowLocked() (*entry[K, V], func(K, V)) {
	if c.probation.size <= c.probationCap {
		return nil, nil
	}
	evicted := c.probation.back()
	c.probation.remove(evicted)
	delete(c.items, evicted.key)
	return evicted, c.onEvict
}

// Remove deletes key from the cache and returns its value. The eviction
// callback is not invoked; ownership passes to the caller.
func (c *TwoTierCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if e.protected {
		c.protected.remove(e)
	} else {
		c.probation.remove(e)
	}
	delete(c.items, key)
	return e.value, true
}

// Len returns the total number of cached items across both tiers.
func (c *TwoTierCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.probation.size + c.protected.size
}

// Stats returns current tier occupancy.
func (c *TwoTierCache[K, V]) Stats() TwoTierStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TwoTierStats{
		Probation: c.probation.size,
		Protected: c.protected.size,
	}
}

// Clear removes all items, invoking the eviction callback for each.
func (c *TwoTierCache[K, V]) Clear() {
	c.mu.Lock()
	evictFn := c.onEvict
	var dropped []*entry[K, V]
	if evictFn != nil {
		dropped = make([]*entry[K, V], 0, c.probation.size+c.protected.size)
		for e := c.probation.head; e != nil; e = e.next {
			dropped = append(dropped, e)
		}
		for e := c.protected.head; e != nil; e = e.next {
			dropped = append(dropped, e)
		}
	}
	c.items = make(map[K]*entry[K, V], c.probationCap+c.protectedCap)
	c.probation = lruList[K, V]{}
	c.protected = lruList[K, V]{}
	c.mu.Unlock()

	for _, e := range dropped {
		evictFn(e.key, e.value)
	}
}
