package streamkit

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription binds one downstream subscriber to a ReplaySubject. It tracks
// the outstanding demand, delivers values and the terminal signal, and
// supports cancellation. The subject owns its subscriptions; the
// subscription keeps only a clearable back-reference used for notification,
// so holding a Subscription never extends the subject's lifetime.
//
// Subscription implements Flow.
type Subscription[T any] struct {
	id         uuid.UUID
	downstream Subscriber[T]

	// deliverMu serializes deliveries to the downstream subscriber. Attach
	// holds it across registration and replay so a racing Send queues
	// behind the replay instead of overtaking it.
	deliverMu sync.Mutex

	// mu guards demand, cancelled, and subject. Never held across a
	// downstream callback, so Request and Cancel stay bounded-time even
	// while a delivery is in flight.
	mu        sync.Mutex
	demand    Demand
	cancelled bool
	subject   *ReplaySubject[T]

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

func newSubscription[T any](subject *ReplaySubject[T], downstream Subscriber[T]) *Subscription[T] {
	return &Subscription[T]{
		id:         uuid.New(),
		downstream: downstream,
		subject:    subject,
	}
}

// ID returns the unique identifier of this subscription.
func (s *Subscription[T]) ID() uuid.UUID { return s.id }

// Request adds d to the outstanding demand. The first positive request
// observed by the owning subject activates its upstream sources. No-op once
// cancelled.
func (s *Subscription[T]) Request(d Demand) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.demand = s.demand.Add(d)
	subject := s.subject
	s.mu.Unlock()

	if d.IsPositive() && subject != nil {
		subject.noteDemand()
	}
}

// Cancel detaches the subscription from its subject and stops all future
// delivery. Idempotent; takes effect before the next delivery attempt.
func (s *Subscription[T]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	subject := s.subject
	s.subject = nil
	s.mu.Unlock()

	if subject != nil {
		subject.remove(s)
	}
}

// Demand returns the currently outstanding demand.
func (s *Subscription[T]) Demand() Demand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.demand
}

// Cancelled reports whether the subscription has been cancelled or has
// received the terminal signal.
func (s *Subscription[T]) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// SubscriptionStats is a point-in-time snapshot of a subscription.
type SubscriptionStats struct {
	Demand    Demand
	Cancelled bool
	Delivered uint64
	Dropped   uint64
}

// Stats returns a snapshot of the subscription's counters and state.
func (s *Subscription[T]) Stats() SubscriptionStats {
	s.mu.Lock()
	st := SubscriptionStats{
		Demand:    s.demand,
		Cancelled: s.cancelled,
	}
	s.mu.Unlock()
	st.Delivered = s.delivered.Load()
	st.Dropped = s.dropped.Load()
	return st
}

// deliver hands v to the downstream subscriber if the subscription is live
// and has positive demand; at zero demand the value is dropped for this
// subscriber, never queued. Demand returned by the subscriber is granted
// back to the subscription.
func (s *Subscription[T]) deliver(v T) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	s.deliverLocked(v)
}

func (s *Subscription[T]) deliverLocked(v T) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	if !s.demand.IsPositive() {
		s.mu.Unlock()
		s.dropped.Add(1)
		return
	}
	s.demand = s.demand.Decrement()
	s.mu.Unlock()

	more := s.downstream.Receive(v)
	s.delivered.Add(1)

	if more.IsPositive() {
		s.mu.Lock()
		if !s.cancelled {
			s.demand = s.demand.Add(more)
		}
		s.mu.Unlock()
	}
}

// complete delivers the terminal signal at most once and detaches the
// subscription for good.
func (s *Subscription[T]) complete(c Completion) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	s.completeLocked(c)
}

func (s *Subscription[T]) completeLocked(c Completion) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.subject = nil
	s.mu.Unlock()

	s.downstream.Complete(c)
}

// replayLocked pushes the buffered history through the regular delivery path
// and follows with the terminal signal when the subject is already terminal.
// Caller must hold deliverMu.
func (s *Subscription[T]) replayLocked(values []T, terminal *Completion) {
	for _, v := range values {
		s.deliverLocked(v)
	}
	if terminal != nil {
		s.completeLocked(*terminal)
	}
}
