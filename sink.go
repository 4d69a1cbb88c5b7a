package streamkit

import (
	"sync"
	"sync/atomic"
)

type sinkConfig struct {
	initial Demand
}

// SinkOption configures Sink and ChannelSink.
type SinkOption func(*sinkConfig)

// WithInitialDemand sets the demand requested automatically on attachment.
// Defaults to unbounded. Pass None to disable automatic requesting and drive
// demand manually through the subscription handle.
func WithInitialDemand(d Demand) SinkOption {
	return func(cfg *sinkConfig) {
		cfg.initial = d
	}
}

// Sink adapts plain callbacks to the Subscriber interface. By default it
// requests unbounded demand on attachment; use WithInitialDemand for paced
// consumption.
type Sink[T any] struct {
	onValue    func(T) Demand
	onComplete func(Completion)
	initial    Demand

	mu   sync.Mutex
	flow Flow
}

// NewSink creates a subscriber forwarding values to onValue and the terminal
// signal to onComplete. Either callback may be nil.
func NewSink[T any](onValue func(T) Demand, onComplete func(Completion), opts ...SinkOption) *Sink[T] {
	cfg := sinkConfig{initial: Unbounded()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if onValue == nil {
		onValue = func(T) Demand { return None() }
	}
	if onComplete == nil {
		onComplete = func(Completion) {}
	}
	return &Sink[T]{
		onValue:    onValue,
		onComplete: onComplete,
		initial:    cfg.initial,
	}
}

// Attached implements Subscriber; it stores the flow handle and requests the
// configured initial demand.
func (s *Sink[T]) Attached(f Flow) {
	s.mu.Lock()
	s.flow = f
	s.mu.Unlock()

	if s.initial.IsPositive() {
		f.Request(s.initial)
	}
}

// Receive implements Subscriber by invoking the value callback.
func (s *Sink[T]) Receive(v T) Demand { return s.onValue(v) }

// Complete implements Subscriber by invoking the completion callback.
func (s *Sink[T]) Complete(c Completion) { s.onComplete(c) }

// Flow returns the flow handle received on attachment, nil before then.
func (s *Sink[T]) Flow() Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}

// ChannelSink bridges a stream into a buffered Go channel. Sends never
// block: a value arriving while the buffer is full is dropped and counted.
// The channel is closed on the terminal signal, after which Err reports the
// failure cause, if any.
type ChannelSink[T any] struct {
	out     chan T
	initial Demand

	dropped atomic.Uint64
	once    sync.Once

	mu   sync.Mutex
	err  error
	flow Flow
}

// NewChannelSink creates a channel-backed subscriber with the given buffer
// size. Sizes below one are treated as one. By default it requests unbounded
// demand on attachment.
func NewChannelSink[T any](size int, opts ...SinkOption) *ChannelSink[T] {
	if size < 1 {
		size = 1
	}
	cfg := sinkConfig{initial: Unbounded()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ChannelSink[T]{
		out:     make(chan T, size),
		initial: cfg.initial,
	}
}

// Attached implements Subscriber; it stores the flow handle and requests the
// configured initial demand.
func (s *ChannelSink[T]) Attached(f Flow) {
	s.mu.Lock()
	s.flow = f
	s.mu.Unlock()

	if s.initial.IsPositive() {
		f.Request(s.initial)
	}
}

// Receive implements Subscriber with a non-blocking send into the channel.
func (s *ChannelSink[T]) Receive(v T) Demand {
	select {
	case s.out <- v:
	default:
		s.dropped.Add(1)
	}
	return None()
}

// Complete implements Subscriber; it records the failure cause and closes
// the channel.
func (s *ChannelSink[T]) Complete(c Completion) {
	s.mu.Lock()
	s.err = c.Err()
	s.mu.Unlock()
	s.once.Do(func() { close(s.out) })
}

// Out returns the receive side of the bridge. It is closed once the stream
// terminates.
func (s *ChannelSink[T]) Out() <-chan T { return s.out }

// Dropped returns the number of values lost to a full buffer.
func (s *ChannelSink[T]) Dropped() uint64 { return s.dropped.Load() }

// Err returns the terminal failure cause. It is meaningful once Out is
// closed; nil means the stream finished normally.
func (s *ChannelSink[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Flow returns the flow handle received on attachment, nil before then.
func (s *ChannelSink[T]) Flow() Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}
