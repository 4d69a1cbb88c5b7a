package cache

import "sync"

// entry is a node in an intrusive doubly-linked list ordered by recency.
// The protected flag is only meaningful inside TwoTierCache.
type entry[K comparable, V any] struct {
	key       K
	value     V
	prev      *entry[K, V]
	next      *entry[K, V]
	protected bool
}

// lruList is a doubly-linked list with most-recently-used at the front.
// Not safe for concurrent use; callers hold the cache mutex.
type lruList[K comparable, V any] struct {
	head *entry[K, V]
	tail *entry[K, V]
	size int
}

func (l *lruList[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = l.head
	if l.head != nil {
		l.head.prev = e
	}
	l.head = e
	if l.tail == nil {
		l.tail = e
	}
	l.size++
}

func (l *lruList[K, V]) remove(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev, e.next = nil, nil
	l.size--
}

func (l *lruList[K, V]) moveToFront(e *entry[K, V]) {
	if l.head == e {
		return
	}
	l.remove(e)
	l.pushFront(e)
}

func (l *lruList[K, V]) back() *entry[K, V] {
	return l.tail
}

// LRUCache is a thread-safe cache with least-recently-used eviction.
// All operations are O(1). The zero value is not usable; construct with
// NewLRUCache.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*entry[K, V]
	order    lruList[K, V]
	onEvict  func(K, V)
}

// NewLRUCache creates a cache that holds at most capacity items.
// Returns ErrInvalidCapacity for non-positive capacities.
func NewLRUCache[K comparable, V any](capacity int) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*entry[K, V], capacity),
	}, nil
}

// SetEvictCallback registers fn to be called for each item removed by
// capacity eviction or Clear. The callback runs outside the cache lock,
// so it may safely call back into the cache.
func (c *LRUCache[K, V]) SetEvictCallback(fn func(key K, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get returns the value stored under key and marks it most recently used.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.moveToFront(e)
	return e.value, true
}

// Put stores value under key, evicting the least recently used item when
// the cache is full. Storing an existing key updates its value and marks
// it most recently used.
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()

	if e, ok := c.items[key]; ok {
		e.value = value
		c.order.moveToFront(e)
		c.mu.Unlock()
		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.items[key] = e
	c.order.pushFront(e)

	var (
		evicted *entry[K, V]
		evictFn func(K, V)
	)
	if c.order.size > c.capacity {
		evicted = c.order.back()
		c.order.remove(evicted)
		delete(c.items, evicted.key)
		evictFn = c.onEvict
	}
	c.mu.Unlock()

	if evicted != nil && evictFn != nil {
		evictFn(evicted.key, evicted.value)
	}
}

// Remove deletes key from the cache and returns its value. The eviction
// callback is not invoked; ownership passes to the caller.
func (c *LRUCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.remove(e)
	delete(c.items, key)
	return e.value, true
}

// Len returns the number of cached items.
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.size
}

// Clear removes all items, invoking the eviction callback for each.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	evictFn := c.onEvict
	var dropped []*entry[K, V]
	if evictFn != nil {
		dropped = make([]*entry[K, V], 0, c.order.size)
		for e := c.order.head; e != nil; e = e.next {
			dropped = append(dropped, e)
		}
	}
	c.items = make(map[K]*entry[K, V], c.capacity)
	c.order = lruList[K, V]{}
	c.mu.Unlock()

	for _, e := range dropped {
		evictFn(e.key, e.value)
	}
}
