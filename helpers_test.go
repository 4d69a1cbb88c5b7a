package streamkit_test

import (
	"sync"

	"github.com/dmitrymomot/streamkit"
)

// recorder is a Subscriber that records every callback. It requests
// attachDemand inside Attached, and on each delivery grants the next queued
// demand, falling back to grantDefault once the queue is drained.
type recorder[T any] struct {
	attachDemand streamkit.Demand
	grantDefault streamkit.Demand

	mu          sync.Mutex
	grantQueue  []streamkit.Demand
	flow        streamkit.Flow
	values      []T
	completions []streamkit.Completion
}

func newRecorder[T any](attachDemand, grantDefault streamkit.Demand) *recorder[T] {
	return &recorder[T]{
		attachDemand: attachDemand,
		grantDefault: grantDefault,
	}
}

func (r *recorder[T]) queueGrants(grants ...streamkit.Demand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grantQueue = append(r.grantQueue, grants...)
}

func (r *recorder[T]) Attached(f streamkit.Flow) {
	r.mu.Lock()
	r.flow = f
	d := r.attachDemand
	r.mu.Unlock()

	if d.IsPositive() {
		f.Request(d)
	}
}

func (r *recorder[T]) Receive(v T) streamkit.Demand {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values = append(r.values, v)
	if len(r.grantQueue) > 0 {
		d := r.grantQueue[0]
		r.grantQueue = r.grantQueue[1:]
		return d
	}
	return r.grantDefault
}

func (r *recorder[T]) Complete(c streamkit.Completion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, c)
}

func (r *recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func (r *recorder[T]) Completions() []streamkit.Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]streamkit.Completion(nil), r.completions...)
}

func (r *recorder[T]) Flow() streamkit.Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flow
}

// manualFlow records every request and cancel so tests can observe upstream
// activation.
type manualFlow struct {
	mu       sync.Mutex
	requests []streamkit.Demand
	cancels  int
}

func (f *manualFlow) Request(d streamkit.Demand) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, d)
}

func (f *manualFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *manualFlow) Requests() []streamkit.Demand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]streamkit.Demand(nil), f.requests...)
}

func (f *manualFlow) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// manualSource is a Publisher under full test control: it records
// subscriptions, hands out observable flows, and emits only when told to.
type manualSource[T any] struct {
	mu    sync.Mutex
	subs  []streamkit.Subscriber[T]
	flows []*manualFlow
}

func (s *manualSource[T]) Subscribe(sub streamkit.Subscriber[T]) streamkit.Flow {
	f := &manualFlow{}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.flows = append(s.flows, f)
	s.mu.Unlock()

	sub.Attached(f)
	return f
}

func (s *manualSource[T]) SubscribeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *manualSource[T]) LastFlow() *manualFlow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.flows) == 0 {
		return nil
	}
	return s.flows[len(s.flows)-1]
}

func (s *manualSource[T]) Emit(v T) {
	s.mu.Lock()
	subs := append([]streamkit.Subscriber[T](nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Receive(v)
	}
}

func (s *manualSource[T]) Fail(err error) {
	s.mu.Lock()
	subs := append([]streamkit.Subscriber[T](nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Complete(streamkit.Failed(err))
	}
}
