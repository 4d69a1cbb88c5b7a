package streamkit

// Flow is the handle a Publisher hands to a Subscriber for controlling the
// subscription: requesting more values or cancelling it. Implementations
// must be safe for concurrent use, and both methods must return in bounded
// time.
type Flow interface {
	// Request adds d to the outstanding demand of the subscription. Demand
	// is cumulative; requesting before previous demand is exhausted is
	// allowed and additive.
	Request(d Demand)

	// Cancel stops delivery to the subscriber. Idempotent; values arriving
	// after cancellation are dropped, and no terminal signal follows.
	Cancel()
}

// Subscriber consumes a stream of values followed by at most one terminal
// signal. Callbacks on a single subscriber are never invoked concurrently.
type Subscriber[T any] interface {
	// Attached is invoked exactly once, before any delivery, handing over
	// the flow-control handle. A subscriber that wants data must request
	// demand here or later through the same handle; without demand it only
	// ever observes the terminal signal.
	Attached(f Flow)

	// Receive delivers the next value. The returned demand is added to the
	// subscription's outstanding demand, implementing the
	// request-n-after-each-item pull protocol. Return None to rely solely
	// on explicit Request calls.
	Receive(v T) Demand

	// Complete delivers the terminal signal. Invoked at most once; nothing
	// is delivered afterward.
	Complete(c Completion)
}

// Publisher is a source of values delivered under the pull protocol: nothing
// is emitted until the subscriber expresses positive demand. Subscribe
// returns the same handle that is passed to the subscriber's Attached
// callback.
//
// Publishers must emit asynchronously with respect to Request: a Request
// call may start a producer goroutine but must never invoke the subscriber's
// callbacks before returning.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T]) Flow
}
