package streamkit

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// ReplaySubject is a replay-buffered multicast subject: the hot core of a
// shared stream. It owns the replay buffer, the ordered set of live
// subscriptions, the terminal state, and the upstream connection handles.
// Values sent to it are buffered (last capacity values) and fanned out to
// every live subscription with positive demand; every new subscriber first
// receives the buffered history.
//
// The subject is a state machine with exactly one transition: active to
// terminal (finished or failed), irreversible. Once terminal, values are
// ignored, and late subscribers receive the buffered replay immediately
// followed by the same terminal signal.
//
// ReplaySubject implements Publisher for its downstream face and Subscriber
// for its upstream face, so it can be subscribed directly to any source.
// Upstream sources are activated lazily: the subject requests from them only
// once the first subscriber expresses positive demand, and from then on
// pulls at full rate. Per-subscriber demand still gates each delivery; a
// subscriber at zero demand has values dropped, not queued.
//
// All methods are safe for concurrent use. Subscriber callbacks run outside
// the subject's internal lock, so a callback may attach, request, or cancel
// synchronously. The one forbidden re-entrancy is calling Send from inside a
// Receive callback of the same subject.
type ReplaySubject[T any] struct {
	name   string
	logger *slog.Logger

	// mu guards the mutable subject state below. Fan-out and replay happen
	// outside of it against snapshots.
	mu        sync.Mutex
	buffer    *ReplayBuffer[T]
	subs      []*Subscription[T]
	terminal  *Completion
	signaled  bool // set once the first positive downstream demand arrives
	upstreams []Flow

	sent atomic.Uint64
}

// NewReplaySubject creates an active subject whose buffer holds the last
// capacity values. Capacity zero disables replay (pure multicast); negative
// capacity is treated as zero.
func NewReplaySubject[T any](capacity int, opts ...SubjectOption) *ReplaySubject[T] {
	cfg := subjectConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	subj := &ReplaySubject[T]{
		name:   cfg.name,
		logger: cfg.logger,
		buffer: NewReplayBuffer[T](capacity),
	}
	if subj.name == "" {
		subj.name = "subject-" + uuidShort()
	}
	return subj
}

// Attach registers downstream as a subscriber and returns its subscription
// handle. The current buffer contents are replayed through the regular
// demand-gated delivery path before any live value can arrive; a downstream
// that wants the replay must request demand inside its Attached callback. If
// the subject is already terminal, the returned subscription is detached:
// it receives the replay, then the terminal signal, and nothing else.
//
// Attach panics on a nil subscriber.
func (subj *ReplaySubject[T]) Attach(downstream Subscriber[T]) *Subscription[T] {
	if downstream == nil {
		panic("streamkit: attach with nil subscriber")
	}

	sub := newSubscription(subj, downstream)

	// Holding the new subscription's delivery lock across registration and
	// replay keeps ordering intact: a Send that registers this subscription
	// in its fan-out snapshot blocks behind the replay.
	sub.deliverMu.Lock()

	subj.mu.Lock()
	terminal := subj.terminal
	if terminal == nil {
		subj.subs = append(subj.subs, sub)
	}
	snapshot := subj.buffer.Snapshot()
	subj.mu.Unlock()

	if terminal != nil {
		sub.mu.Lock()
		sub.subject = nil
		sub.mu.Unlock()
	}

	subj.logger.Debug("subscriber attached",
		"subject", subj.name,
		"subscription_id", sub.id.String(),
		"replay", len(snapshot),
		"terminal", terminal != nil)

	downstream.Attached(sub)
	sub.replayLocked(snapshot, terminal)
	sub.deliverMu.Unlock()

	return sub
}

// Subscribe implements Publisher by delegating to Attach.
func (subj *ReplaySubject[T]) Subscribe(downstream Subscriber[T]) Flow {
	return subj.Attach(downstream)
}

// Send buffers v and delivers it to every live subscription with positive
// demand. Sending after the subject is terminal is a producer protocol
// violation and is silently ignored.
func (subj *ReplaySubject[T]) Send(v T) {
	subj.mu.Lock()
	if subj.terminal != nil {
		subj.mu.Unlock()
		subj.logger.Debug("value after terminal ignored", "subject", subj.name)
		return
	}
	subj.buffer.Append(v)
	snapshot := slices.Clone(subj.subs)
	subj.mu.Unlock()

	subj.sent.Add(1)

	for _, sub := range snapshot {
		sub.deliver(v)
	}
}

// Finish terminates the stream normally.
func (subj *ReplaySubject[T]) Finish() { subj.Complete(Finished()) }

// Fail terminates the stream with err.
func (subj *ReplaySubject[T]) Fail(err error) { subj.Complete(Failed(err)) }

// Complete transitions the subject to terminal, broadcasts c to every live
// subscription, and clears the live set. Further completions are no-ops.
// Complete is also the upstream face of the subject: a source it is
// subscribed to terminates the shared stream through this method.
func (subj *ReplaySubject[T]) Complete(c Completion) {
	subj.mu.Lock()
	if subj.terminal != nil {
		subj.mu.Unlock()
		return
	}
	term := c
	subj.terminal = &term
	snapshot := subj.subs
	subj.subs = nil
	subj.mu.Unlock()

	subj.logger.Debug("stream terminated",
		"subject", subj.name,
		"completion", c.String(),
		"subscribers", len(snapshot))

	for _, sub := range snapshot {
		sub.complete(c)
	}
}

// Attached implements the upstream face of Subscriber: it stores the
// upstream flow handle wired in by the composition layer. The handle is
// activated on the first positive downstream demand; if that demand already
// arrived, it is activated immediately.
func (subj *ReplaySubject[T]) Attached(f Flow) {
	if f == nil {
		return
	}
	subj.mu.Lock()
	subj.upstreams = append(subj.upstreams, f)
	active := subj.signaled
	subj.mu.Unlock()

	if active {
		f.Request(Unbounded())
	}
}

// Receive implements the upstream face of Subscriber by forwarding to Send.
// It returns no per-value demand: upstream pacing is controlled through the
// stored flow handle, which the subject requests unbounded once downstream
// demand exists.
func (subj *ReplaySubject[T]) Receive(v T) Demand {
	subj.Send(v)
	return None()
}

// noteDemand is invoked by subscriptions on every positive request. The
// first one flips the demand flag and activates every wired upstream with
// unbounded demand. This is deliberately not precise demand forwarding: once
// any subscriber has asked for data, the subject pulls upstream at full rate
// and lets per-subscriber demand gate each delivery.
func (subj *ReplaySubject[T]) noteDemand() {
	subj.mu.Lock()
	if subj.signaled {
		subj.mu.Unlock()
		return
	}
	subj.signaled = true
	upstreams := slices.Clone(subj.upstreams)
	subj.mu.Unlock()

	subj.logger.Debug("first downstream demand, activating upstream",
		"subject", subj.name,
		"upstreams", len(upstreams))

	for _, up := range upstreams {
		up.Request(Unbounded())
	}
}

// remove detaches sub from the live set. Called by Subscription.Cancel.
func (subj *ReplaySubject[T]) remove(sub *Subscription[T]) {
	subj.mu.Lock()
	for i, s := range subj.subs {
		if s == sub {
			subj.subs = append(subj.subs[:i], subj.subs[i+1:]...)
			break
		}
	}
	subj.mu.Unlock()

	subj.logger.Debug("subscriber detached",
		"subject", subj.name,
		"subscription_id", sub.id.String())
}

// SubjectStats is a point-in-time snapshot of a subject.
type SubjectStats struct {
	Subscribers int
	Buffered    int
	Sent        uint64
	Terminal    bool
	Failed      bool
}

// Stats returns a snapshot of the subject's state and counters.
func (subj *ReplaySubject[T]) Stats() SubjectStats {
	subj.mu.Lock()
	st := SubjectStats{
		Subscribers: len(subj.subs),
		Buffered:    subj.buffer.Len(),
		Terminal:    subj.terminal != nil,
		Failed:      subj.terminal != nil && subj.terminal.IsFailure(),
	}
	subj.mu.Unlock()
	st.Sent = subj.sent.Load()
	return st
}
