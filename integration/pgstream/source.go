package pgstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/core/logger"
)

// DefaultReplayDepth is the number of recent notifications buffered for late
// subscribers when none is configured.
const DefaultReplayDepth = 16

// Source is a hot Publisher over a LISTEN/NOTIFY channel. The listening
// connection is acquired lazily, once the first subscriber expresses
// positive demand; from then on every notification is fanned out to the
// attached subscribers, with the most recent ones buffered for replay.
//
// NOTIFY offers no sender-side flow control, so a subscriber at zero demand
// has notifications dropped, not queued. Drops are counted on each
// subscription.
type Source struct {
	pool    *pgxpool.Pool
	channel string
	subject *streamkit.ReplaySubject[Notification]
	logger  *slog.Logger

	start  sync.Once
	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// SourceOption configures a Source. Invalid values are ignored.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	replay int
	logger *slog.Logger
}

// WithReplay sets how many recent notifications are buffered for late
// subscribers. Zero disables replay entirely; negative values are ignored.
func WithReplay(depth int) SourceOption {
	return func(cfg *sourceConfig) {
		if depth >= 0 {
			cfg.replay = depth
		}
	}
}

// WithLogger sets the logger for listener diagnostics. Nil loggers are
// ignored.
func WithLogger(log *slog.Logger) SourceOption {
	return func(cfg *sourceConfig) {
		if log != nil {
			cfg.logger = log
		}
	}
}

// NewSource creates a Source listening on the given notification channel.
// The pool must not be nil; it is shared with the caller and is not closed
// by the source. One connection is held out of the pool for the lifetime of
// the subscription.
func NewSource(pool *pgxpool.Pool, channel string, opts ...SourceOption) (*Source, error) {
	if !channelPattern.MatchString(channel) {
		return nil, ErrInvalidChannel
	}

	cfg := sourceConfig{
		replay: DefaultReplayDepth,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Source{
		pool:    pool,
		channel: channel,
		logger:  cfg.logger,
	}
	s.subject = streamkit.NewReplaySubject[Notification](cfg.replay,
		streamkit.WithName("pg-source"),
		streamkit.WithLogger(cfg.logger),
	)

	// Wire the subject's upstream face to the listener: the first positive
	// downstream demand requests through this handle, which starts the
	// listening connection.
	s.subject.Attached(listenFlow{s})

	return s, nil
}

// listenFlow adapts the lazy listener to the flow handle the subject
// activates on first downstream demand.
type listenFlow struct {
	s *Source
}

func (f listenFlow) Request(d streamkit.Demand) {
	if d.IsPositive() {
		f.s.listen()
	}
}

func (f listenFlow) Cancel() {
	_ = f.s.Close()
}

// listen starts the notification pump. Runs at most once for the lifetime
// of the source.
func (s *Source) listen() {
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

// pump holds one pooled connection on LISTEN and forwards notifications
// into the subject until the source is closed or the connection fails.
func (s *Source) pump(ctx context.Context) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{s.channel}.Sanitize()); err != nil {
		s.fail(ctx, err)
		return
	}

	s.logger.Debug("listening for notifications",
		logger.Component("pgstream"),
		logger.Channel(s.channel),
	)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			s.fail(ctx, err)
			return
		}
		s.subject.Send(Notification{PID: n.PID, Channel: n.Channel, Payload: n.Payload})
	}
}

// fail terminates the stream, treating a close-induced cancellation as a
// normal finish.
func (s *Source) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		s.subject.Finish()
		return
	}

	s.logger.Error("notification listener failed",
		logger.Component("pgstream"),
		logger.Channel(s.channel),
		logger.Error(err),
	)
	s.subject.Fail(errors.Join(ErrListenFailed, err))
}

// Subscribe implements streamkit.Publisher. No connection is acquired until
// the subscriber signals positive demand.
func (s *Source) Subscribe(downstream streamkit.Subscriber[Notification]) streamkit.Flow {
	return s.subject.Attach(downstream)
}

// Attach registers downstream and returns its full subscription handle,
// exposing per-subscriber delivery and drop counters.
func (s *Source) Attach(downstream streamkit.Subscriber[Notification]) *streamkit.Subscription[Notification] {
	return s.subject.Attach(downstream)
}

// Stats returns a snapshot of the underlying subject.
func (s *Source) Stats() streamkit.SubjectStats {
	return s.subject.Stats()
}

// Close releases the listening connection and terminates the stream
// normally. Idempotent. The shared pool stays open.
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

	// Cancelling the pump context ends the wait loop, which finishes the
	// subject.
	if cancel != nil {
		cancel()
		return nil
	}
	s.subject.Finish()
	return nil
}
