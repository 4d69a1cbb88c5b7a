package streamkit

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
)

// pumpFlow drives a cold source from a dedicated goroutine. The goroutine
// starts on the first positive request, so subscribing alone performs no
// work, and emission is always asynchronous with respect to Request.
type pumpFlow[T any] struct {
	downstream Subscriber[T]
	run        func(f *pumpFlow[T])
	onCancel   func()

	mu      sync.Mutex
	demand  Demand
	started bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newPumpFlow[T any](downstream Subscriber[T], run func(f *pumpFlow[T])) *pumpFlow[T] {
	return &pumpFlow[T]{
		downstream: downstream,
		run:        run,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

func (f *pumpFlow[T]) Request(d Demand) {
	if !d.IsPositive() {
		return
	}
	f.mu.Lock()
	f.demand = f.demand.Add(d)
	start := !f.started
	f.started = true
	f.mu.Unlock()

	if start {
		go f.run(f)
		return
	}
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *pumpFlow[T]) Cancel() {
	f.once.Do(func() {
		close(f.done)
		if f.onCancel != nil {
			f.onCancel()
		}
	})
}

func (f *pumpFlow[T]) cancelled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// waitDemand blocks until demand is positive. Returns false once cancelled.
func (f *pumpFlow[T]) waitDemand() bool {
	for {
		if f.cancelled() {
			return false
		}
		f.mu.Lock()
		ok := f.demand.IsPositive()
		f.mu.Unlock()
		if ok {
			return true
		}
		select {
		case <-f.wake:
		case <-f.done:
			return false
		}
	}
}

// batchLimit returns how many values may be emitted right now, capped at
// ceil. Unbounded demand maps to the cap. Only the pump goroutine consumes
// demand, so the returned headroom cannot shrink before it is used.
func (f *pumpFlow[T]) batchLimit(ceil int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.demand.IsUnbounded() {
		return ceil
	}
	if n := f.demand.Count(); n < int64(ceil) {
		return int(n)
	}
	return ceil
}

// emit delivers one value, consuming one unit of demand and granting back
// whatever the subscriber returns.
func (f *pumpFlow[T]) emit(v T) {
	f.mu.Lock()
	f.demand = f.demand.Decrement()
	f.mu.Unlock()

	more := f.downstream.Receive(v)
	if more.IsPositive() {
		f.mu.Lock()
		f.demand = f.demand.Add(more)
		f.mu.Unlock()
	}
}

// SliceSource is a cold Publisher emitting a fixed set of values in order,
// strictly within requested demand, then finishing. Each Subscribe call gets
// its own independent pass over the values.
type SliceSource[T any] struct {
	items []T
}

// FromSlice creates a cold Publisher over a copy of items.
func FromSlice[T any](items []T) *SliceSource[T] {
	return &SliceSource[T]{items: slices.Clone(items)}
}

// Subscribe implements Publisher. No value is emitted until the subscriber
// requests positive demand.
func (s *SliceSource[T]) Subscribe(downstream Subscriber[T]) Flow {
	items := s.items
	f := newPumpFlow(downstream, func(f *pumpFlow[T]) {
		for _, v := range items {
			if !f.waitDemand() {
				return
			}
			f.emit(v)
		}
		if f.cancelled() {
			return
		}
		f.downstream.Complete(Finished())
	})
	downstream.Attached(f)
	return f
}

// ChannelSource adapts a receive channel into a cold Publisher: values are
// read from the channel only while the subscriber has positive demand, and
// channel close becomes normal completion.
//
// Multiple subscribers to the same ChannelSource compete for the channel's
// values; wrap it with Replay to fan a single channel out to many
// subscribers.
type ChannelSource[T any] struct {
	ch <-chan T
}

// FromChannel creates a cold Publisher reading from ch.
func FromChannel[T any](ch <-chan T) *ChannelSource[T] {
	return &ChannelSource[T]{ch: ch}
}

// Subscribe implements Publisher. The channel is not read until the
// subscriber requests positive demand.
func (s *ChannelSource[T]) Subscribe(downstream Subscriber[T]) Flow {
	ch := s.ch
	f := newPumpFlow(downstream, func(f *pumpFlow[T]) {
		for {
			if !f.waitDemand() {
				return
			}
			select {
			case v, ok := <-ch:
				if !ok {
					f.downstream.Complete(Finished())
					return
				}
				// A cancel racing the read wins: the value is dropped,
				// not delivered.
				if f.cancelled() {
					return
				}
				f.emit(v)
			case <-f.done:
				return
			}
		}
	})
	downstream.Attached(f)
	return f
}

// FuncSource is a cold Publisher that pulls values from a producer function,
// one call per delivered value, strictly within requested demand. It bridges
// pull-based upstreams such as paginated HTTP APIs or table pollers into the
// demand protocol.
type FuncSource[T any] struct {
	next func(ctx context.Context) (T, error)
}

// FromFunc creates a cold Publisher that obtains each value by calling next.
// next runs only while the subscriber has outstanding demand. Returning
// io.EOF finishes the stream; any other error fails it. The context passed
// to next is cancelled when the subscription is cancelled, aborting
// in-flight work. Panics if next is nil.
func FromFunc[T any](next func(ctx context.Context) (T, error)) *FuncSource[T] {
	if next == nil {
		panic("streamkit: from func with nil producer")
	}
	return &FuncSource[T]{next: next}
}

// Subscribe implements Publisher. Each subscriber gets its own pump and its
// own sequence of next calls.
func (s *FuncSource[T]) Subscribe(downstream Subscriber[T]) Flow {
	next := s.next
	ctx, cancel := context.WithCancel(context.Background())
	f := newPumpFlow(downstream, func(f *pumpFlow[T]) {
		defer cancel()
		for {
			if !f.waitDemand() {
				return
			}
			v, err := next(ctx)
			if err != nil {
				if f.cancelled() {
					return
				}
				if errors.Is(err, io.EOF) {
					f.downstream.Complete(Finished())
				} else {
					f.downstream.Complete(Failed(err))
				}
				return
			}
			if f.cancelled() {
				return
			}
			f.emit(v)
		}
	})
	f.onCancel = cancel
	downstream.Attached(f)
	return f
}

// BatchFuncSource is a cold Publisher that pulls values in batches sized by
// outstanding demand. It suits upstreams with per-call overhead, such as
// table pollers, where fetching limit values in one round trip beats
// fetching them one at a time.
type BatchFuncSource[T any] struct {
	next     func(ctx context.Context, limit int) ([]T, error)
	maxBatch int
}

// FromBatchFunc creates a cold Publisher that obtains values by calling next
// with the current outstanding demand as limit, capped at maxBatch.
// Non-positive maxBatch falls back to a cap of 64.
//
// next runs only while the subscriber has outstanding demand and never
// receives a limit above it, so every returned value can be delivered
// without queueing. Returning io.EOF finishes the stream after the final
// batch is delivered; any other error fails it and discards the batch. An
// empty batch with a nil error is retried immediately, so next is
// responsible for pacing its own polling. The context passed to next is
// cancelled when the subscription is cancelled, aborting in-flight work.
// Panics if next is nil.
func FromBatchFunc[T any](next func(ctx context.Context, limit int) ([]T, error), maxBatch int) *BatchFuncSource[T] {
	if next == nil {
		panic("streamkit: from batch func with nil producer")
	}
	if maxBatch < 1 {
		maxBatch = 64
	}
	return &BatchFuncSource[T]{next: next, maxBatch: maxBatch}
}

// Subscribe implements Publisher. Each subscriber gets its own pump and its
// own sequence of next calls.
func (s *BatchFuncSource[T]) Subscribe(downstream Subscriber[T]) Flow {
	next := s.next
	maxBatch := s.maxBatch
	ctx, cancel := context.WithCancel(context.Background())
	f := newPumpFlow(downstream, func(f *pumpFlow[T]) {
		defer cancel()
		for {
			if !f.waitDemand() {
				return
			}
			batch, err := next(ctx, f.batchLimit(maxBatch))
			if err != nil && !errors.Is(err, io.EOF) {
				if f.cancelled() {
					return
				}
				f.downstream.Complete(Failed(err))
				return
			}
			for _, v := range batch {
				if f.cancelled() {
					return
				}
				f.emit(v)
			}
			if err != nil {
				if f.cancelled() {
					return
				}
				f.downstream.Complete(Finished())
				return
			}
		}
	})
	f.onCancel = cancel
	downstream.Attached(f)
	return f
}
