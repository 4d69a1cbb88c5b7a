// Package cache provides thread-safe caching implementations with different
// eviction policies. It offers generic, capacity-bounded caches suitable for
// hot-path lookups in stream pipelines, fan-out hubs, and fetch layers.
//
// # Features
//
//   - Thread-safe operations behind a single mutex per cache
//   - Generic type parameters for compile-time type safety
//   - LRU (Least Recently Used) eviction policy
//   - Segmented two-tier policy resistant to one-shot scans
//   - Optional eviction callbacks for resource cleanup
//   - O(1) Get, Put, and Remove
//
// # Usage
//
// LRUCache evicts the least recently used item when capacity is reached:
//
//	import "github.com/dmitrymomot/streamkit/core/cache"
//
//	c, err := cache.NewLRUCache[string, *Record](100)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	c.Put("rec:123", &Record{ID: 123})
//
//	if rec, found := c.Get("rec:123"); found {
//		fmt.Println(rec.ID)
//	}
//
//	if rec, found := c.Remove("rec:123"); found {
//		fmt.Println("removed", rec.ID)
//	}
//
// # Two-Tier Cache
//
// TwoTierCache is a segmented LRU. New keys enter a probation tier; a hit
// promotes the key to the protected tier. When the protected tier overflows,
// its coldest entry is demoted back to probation instead of being evicted.
// A burst of one-shot keys therefore churns only the probation tier and
// cannot flush the working set:
//
//	c, err := cache.NewTwoTierCache[string, []byte](64, 256)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	c.Put("cursor:abc", payload) // lands in probation
//	c.Get("cursor:abc")          // hit promotes to protected
//
//	stats := c.Stats()
//	fmt.Printf("probation=%d protected=%d\n", stats.Probation, stats.Protected)
//
// This is the right shape for replay-buffer page caches and fetch-layer
// response caches, where a consumer catching up scans many keys once while
// live keys are read repeatedly.
//
// # Eviction Callbacks
//
// Set up callbacks to release resources when items fall out of the cache:
//
//	conns, _ := cache.NewLRUCache[string, net.Conn](50)
//	conns.SetEvictCallback(func(key string, conn net.Conn) {
//		conn.Close()
//	})
//
// Callbacks run for capacity evictions and Clear, never for Remove; Remove
// hands the value back to the caller, who owns its cleanup. Callbacks are
// invoked outside the cache lock, so they may call back into the cache.
//
// # Thread Safety
//
// All operations are safe for concurrent use from multiple goroutines
// without external synchronization:
//
//	c, _ := cache.NewLRUCache[int, string](100)
//
//	go func() {
//		for i := 0; i < 1000; i++ {
//			c.Put(i, fmt.Sprintf("value-%d", i))
//		}
//	}()
//
//	go func() {
//		for i := 0; i < 1000; i++ {
//			c.Get(i)
//		}
//	}()
//
// # Performance Characteristics
//
// Both caches combine a hash map with intrusive doubly-linked lists:
//
//   - Get: O(1)
//   - Put: O(1)
//   - Remove: O(1)
//   - Memory: O(capacity)
//
// # Best Practices
//
//   - Choose capacity from memory constraints and access patterns
//   - Use eviction callbacks for cleanup (closing files, connections, etc.)
//   - Implement TTL logic in the application layer if time-based expiry is needed
//   - Prefer TwoTierCache when scans and replays share the cache with hot keys
//   - Use pointers for large structs to reduce copying overhead
package cache
