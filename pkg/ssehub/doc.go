// Package ssehub bridges streams to Server-Sent Events endpoints.
//
// Handler wraps any Publisher in an http.Handler. Each incoming request
// attaches its own channel-backed subscriber, so clients observe the stream
// independently: when the publisher is a replay subject, a freshly connected
// client first receives the buffered replay, then live values.
//
// # Wire Format
//
// Values are written as standard SSE frames. Strings and byte slices are
// written verbatim; any other type is JSON-encoded:
//
//	event: tick        (optional, WithEventName)
//	id: 42             (optional, WithEventID / WithEventIDGenerator)
//	data: {"seq":42}
//
// The response is flushed after every frame. Keep-alive comments are written
// on an idle interval so intermediaries do not reap quiet connections.
//
// # Usage
//
//	subj := streamkit.NewReplaySubject[Event](16)
//
//	mux := http.NewServeMux()
//	mux.Handle("/events", ssehub.Handler[Event](subj,
//		ssehub.WithEventName("event"),
//		ssehub.WithKeepAlive(15*time.Second),
//	))
//
//	subj.Send(Event{Seq: 1})
//
// # Termination
//
// The handler runs until either side ends the exchange. When the client
// disconnects, the request context fires and the subscription is cancelled.
// When the stream finishes, the response ends cleanly. When the stream
// fails, the failure message is delivered as a final frame with the event
// name "error" so clients can distinguish upstream failure from a dropped
// connection.
//
// # Backpressure
//
// SSE offers no client-side flow control, so the handler requests unbounded
// demand and buffers frames in a bounded queue (WithBuffer). Values arriving
// while a slow client's queue is full are dropped and counted, then logged
// on disconnect, rather than stalling the publisher.
package ssehub
