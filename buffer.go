package streamkit

import "sync"

// ReplayBuffer keeps the most recent values of a stream, up to a fixed
// capacity, in emission order. Once full, appending evicts the oldest value
// first. A capacity of zero keeps nothing. Safe for concurrent use.
type ReplayBuffer[T any] struct {
	capacity int

	mu     sync.Mutex
	values []T
}

// NewReplayBuffer creates a buffer holding at most capacity values. Negative
// capacity is treated as zero.
func NewReplayBuffer[T any](capacity int) *ReplayBuffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &ReplayBuffer[T]{capacity: capacity}
}

// Append adds v at the end, evicting from the front once the capacity is
// exceeded.
func (b *ReplayBuffer[T]) Append(v T) {
	if b.capacity == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.values) < b.capacity {
		b.values = append(b.values, v)
		return
	}
	copy(b.values, b.values[1:])
	b.values[len(b.values)-1] = v
}

// Snapshot returns an immutable ordered copy of the current contents, safe
// to iterate while appends continue. Returns nil when empty.
func (b *ReplayBuffer[T]) Snapshot() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.values) == 0 {
		return nil
	}
	out := make([]T, len(b.values))
	copy(out, b.values)
	return out
}

// Len returns the number of buffered values.
func (b *ReplayBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.values)
}

// Cap returns the fixed capacity.
func (b *ReplayBuffer[T]) Cap() int { return b.capacity }
