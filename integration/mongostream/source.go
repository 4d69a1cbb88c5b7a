package mongostream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/core/logger"
)

// DefaultReplayDepth is the number of recent events buffered for late
// subscribers when none is configured.
const DefaultReplayDepth = 16

// Source is a hot Publisher over a collection's change stream. The stream
// is opened lazily, once the first subscriber expresses positive demand;
// from then on every change event is fanned out to the attached
// subscribers, with the most recent ones buffered for replay.
//
// Change streams have no per-subscriber flow control, so a subscriber at
// zero demand has events dropped, not queued. Drops are counted on each
// subscription.
type Source struct {
	coll         *mongo.Collection
	updateLookup bool
	subject      *streamkit.ReplaySubject[ChangeEvent]
	logger       *slog.Logger

	start  sync.Once
	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// SourceOption configures a Source. Invalid values are ignored.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	replay       int
	updateLookup bool
	logger       *slog.Logger
}

// WithReplay sets how many recent events are buffered for late subscribers.
// Zero disables replay entirely; negative values are ignored.
func WithReplay(depth int) SourceOption {
	return func(cfg *sourceConfig) {
		if depth >= 0 {
			cfg.replay = depth
		}
	}
}

// WithUpdateLookup makes the server attach the current state of the full
// document to update events, at the cost of an extra server-side lookup per
// update.
func WithUpdateLookup() SourceOption {
	return func(cfg *sourceConfig) {
		cfg.updateLookup = true
	}
}

// WithLogger sets the logger for watch diagnostics. Nil loggers are
// ignored.
func WithLogger(log *slog.Logger) SourceOption {
	return func(cfg *sourceConfig) {
		if log != nil {
			cfg.logger = log
		}
	}
}

// NewSource creates a Source watching the named collection of db. The
// database handle must not be nil; it is shared with the caller, and
// closing the source does not disconnect the client.
func NewSource(db *mongo.Database, collection string, opts ...SourceOption) (*Source, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	cfg := sourceConfig{
		replay: DefaultReplayDepth,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Source{
		coll:         db.Collection(collection),
		updateLookup: cfg.updateLookup,
		logger:       cfg.logger,
	}
	s.subject = streamkit.NewReplaySubject[ChangeEvent](cfg.replay,
		streamkit.WithName("mongo-source"),
		streamkit.WithLogger(cfg.logger),
	)

	// Wire the subject's upstream face to the watcher: the first positive
	// downstream demand requests through this handle, which opens the
	// change stream.
	s.subject.Attached(watchFlow{s})

	return s, nil
}

// watchFlow adapts the lazy watcher to the flow handle the subject
// activates on first downstream demand.
type watchFlow struct {
	s *Source
}

func (f watchFlow) Request(d streamkit.Demand) {
	if d.IsPositive() {
		f.s.watch()
	}
}

func (f watchFlow) Cancel() {
	_ = f.s.Close()
}

// watch starts the change stream pump. Runs at most once for the lifetime
// of the source.
func (s *Source) watch() {
	s.start.Do(func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.mu.Unlock()

		go s.pump(ctx)
	})
}

// pump holds the change stream open and forwards decoded events into the
// subject until the source is closed or the stream fails.
func (s *Source) pump(ctx context.Context) {
	opts := options.ChangeStream()
	if s.updateLookup {
		opts = opts.SetFullDocument(options.UpdateLookup)
	}

	cs, err := s.coll.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		s.fail(ctx, ErrWatchFailed, err)
		return
	}
	defer cs.Close(context.Background())

	s.logger.Debug("change stream established",
		logger.Component("mongostream"),
		slog.String("database", s.coll.Database().Name()),
		slog.String("collection", s.coll.Name()),
	)

	for cs.Next(ctx) {
		ev, err := DecodeChangeEvent(cs.Current, cs.ResumeToken())
		if err != nil {
			s.fail(ctx, ErrDecodeFailed, err)
			return
		}
		s.subject.Send(ev)
	}
	if err := cs.Err(); err != nil {
		s.fail(ctx, ErrWatchFailed, err)
		return
	}
	s.subject.Finish()
}

// fail terminates the stream, treating a close-induced cancellation as a
// normal finish.
func (s *Source) fail(ctx context.Context, sentinel, err error) {
	if ctx.Err() != nil {
		s.subject.Finish()
		return
	}

	s.logger.Error("change stream failed",
		logger.Component("mongostream"),
		slog.String("collection", s.coll.Name()),
		logger.Error(err),
	)
	s.subject.Fail(errors.Join(sentinel, err))
}

// Subscribe implements streamkit.Publisher. The change stream is not opened
// until the subscriber signals positive demand.
func (s *Source) Subscribe(downstream streamkit.Subscriber[ChangeEvent]) streamkit.Flow {
	return s.subject.Attach(downstream)
}

// Attach registers downstream and returns its full subscription handle,
// exposing per-subscriber delivery and drop counters.
func (s *Source) Attach(downstream streamkit.Subscriber[ChangeEvent]) *streamkit.Subscription[ChangeEvent] {
	return s.subject.Attach(downstream)
}

// Stats returns a snapshot of the underlying subject.
func (s *Source) Stats() streamkit.SubjectStats {
	return s.subject.Stats()
}

// Close stops the change stream and terminates the stream normally.
// Idempotent. The shared client stays connected.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	// Cancelling the pump context ends the iteration loop, which finishes
	// the subject.
	if cancel != nil {
		cancel()
		return nil
	}
	s.subject.Finish()
	return nil
}
