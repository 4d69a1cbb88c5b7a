package redisstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/core/logger"
)

// DefaultReplayDepth is the number of recent messages buffered for late
// subscribers when none is configured.
const DefaultReplayDepth = 16

// Source is a hot Publisher over Redis pub/sub channels. The Redis
// subscription is opened lazily, once the first subscriber expresses
// positive demand; from then on every published message is fanned out to
// attached subscribers, with the most recent ones buffered for replay.
//
// Redis pub/sub cannot itself be paused, so a subscriber at zero demand has
// messages dropped, not queued. Drops are counted on each subscription.
type Source struct {
	client   *redis.Client
	channels []string
	subject  *streamkit.ReplaySubject[Message]
	logger   *slog.Logger

	start  sync.Once
	mu     sync.Mutex
	pubsub *redis.PubSub
	closed bool
}

// SourceOption configures a Source. Invalid values are ignored.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	replay int
	logger *slog.Logger
}

// WithReplay sets how many recent messages are buffered for late
// subscribers. Zero disables replay entirely; negative values are ignored.
func WithReplay(depth int) SourceOption {
	return func(cfg *sourceConfig) {
		if depth >= 0 {
			cfg.replay = depth
		}
	}
}

// WithLogger sets the logger for subscription diagnostics. Nil loggers are
// ignored.
func WithLogger(log *slog.Logger) SourceOption {
	return func(cfg *sourceConfig) {
		if log != nil {
			cfg.logger = log
		}
	}
}

// NewSource creates a Source over the given pub/sub channels. The client
// must not be nil; it is shared with the caller and is not closed by the
// source.
func NewSource(client *redis.Client, channels []string, opts ...SourceOption) (*Source, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}

	cfg := sourceConfig{
		replay: DefaultReplayDepth,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Source{
		client:   client,
		channels: channels,
		logger:   cfg.logger,
	}
	s.subject = streamkit.NewReplaySubject[Message](cfg.replay,
		streamkit.WithName("redis-source"),
		streamkit.WithLogger(cfg.logger),
	)

	// Wire the subject's upstream face to the broker: the first positive
	// downstream demand requests through this handle, which opens the Redis
	// subscription.
	s.subject.Attached(brokerFlow{s})

	return s, nil
}

// brokerFlow adapts the lazy Redis subscription to the flow handle the
// subject activates on first downstream demand.
type brokerFlow struct {
	s *Source
}

func (f brokerFlow) Request(d streamkit.Demand) {
	if d.IsPositive() {
		f.s.connect()
	}
}

func (f brokerFlow) Cancel() {
	_ = f.s.Close()
}

// connect opens the pub/sub subscription and starts the pump. Runs at most
// once for the lifetime of the source.
func (s *Source) connect() {
	s.start.Do(func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		ps := s.client.Subscribe(context.Background(), s.channels...)
		s.pubsub = ps
		s.mu.Unlock()

		go s.pump(ps)
	})
}

// pump confirms the subscription, then forwards messages into the subject
// until the pub/sub is closed.
func (s *Source) pump(ps *redis.PubSub) {
	if _, err := ps.Receive(context.Background()); err != nil {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			s.subject.Finish()
			return
		}

		s.logger.Error("redis subscription failed",
			logger.Component("redisstream"),
			logger.Error(err),
		)
		s.subject.Fail(errors.Join(ErrSubscribeFailed, err))
		return
	}

	s.logger.Debug("redis subscription established",
		logger.Component("redisstream"),
		slog.Any("channels", s.channels),
	)

	for msg := range ps.Channel() {
		s.subject.Send(Message{Channel: msg.Channel, Payload: msg.Payload})
	}

	s.subject.Finish()
}

// Subscribe implements streamkit.Publisher. No Redis subscription is opened
// until the subscriber signals positive demand.
func (s *Source) Subscribe(downstream streamkit.Subscriber[Message]) streamkit.Flow {
	return s.subject.Attach(downstream)
}

// Attach registers downstream and returns its full subscription handle,
// exposing per-subscriber delivery and drop counters.
func (s *Source) Attach(downstream streamkit.Subscriber[Message]) *streamkit.Subscription[Message] {
	return s.subject.Attach(downstream)
}

// Stats returns a snapshot of the underlying subject.
func (s *Source) Stats() streamkit.SubjectStats {
	return s.subject.Stats()
}

// Close releases the Redis subscription and terminates the stream normally.
// Idempotent. The shared client stays open.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ps := s.pubsub
	s.pubsub = nil
	s.mu.Unlock()

	// Closing the pub/sub ends the pump loop, which finishes the subject.
	if ps != nil {
		return ps.Close()
	}
	s.subject.Finish()
	return nil
}
