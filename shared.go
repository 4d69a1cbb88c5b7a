package streamkit

// SharedStream multicasts one upstream source through a ReplaySubject:
// exactly one subscription to the source is ever created, no matter how many
// subscribers attach to the shared handle, and each subscriber first
// receives the replay of the most recent values.
type SharedStream[T any] struct {
	subject *ReplaySubject[T]
}

// Replay wraps source in a replay-buffered multicast with the given buffer
// capacity. The subject is subscribed to the source immediately, which
// establishes the connection handle but requests nothing: the source stays
// idle until the first subscriber expresses positive demand, and is
// activated exactly once ("autoconnect"). Attaching alone, without a
// request, never activates the source.
//
// Replay panics on a nil source.
func Replay[T any](source Publisher[T], capacity int, opts ...SubjectOption) *SharedStream[T] {
	if source == nil {
		panic("streamkit: replay with nil source")
	}
	subject := NewReplaySubject[T](capacity, opts...)
	source.Subscribe(subject)
	return &SharedStream[T]{subject: subject}
}

// Attach registers downstream with the shared subject and returns its
// subscription handle.
func (s *SharedStream[T]) Attach(downstream Subscriber[T]) *Subscription[T] {
	return s.subject.Attach(downstream)
}

// Subscribe implements Publisher by delegating to Attach.
func (s *SharedStream[T]) Subscribe(downstream Subscriber[T]) Flow {
	return s.subject.Attach(downstream)
}

// Stats returns a snapshot of the underlying subject.
func (s *SharedStream[T]) Stats() SubjectStats {
	return s.subject.Stats()
}
