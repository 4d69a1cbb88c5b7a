package redisstream

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/core/logger"
)

// Sink is a Subscriber that republishes every received value to Redis.
// Values are published to the channel named in the message, falling back to
// the sink's default channel when it is empty. Publish failures are counted
// and logged, never fatal: the stream keeps flowing.
type Sink struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger

	published atomic.Uint64
	failed    atomic.Uint64

	mu   sync.Mutex
	flow streamkit.Flow
}

// SinkOption configures a Sink. Invalid values are ignored.
type SinkOption func(*sinkConfig)

type sinkConfig struct {
	logger *slog.Logger
}

// WithSinkLogger sets the logger for publish diagnostics. Nil loggers are
// ignored.
func WithSinkLogger(log *slog.Logger) SinkOption {
	return func(cfg *sinkConfig) {
		if log != nil {
			cfg.logger = log
		}
	}
}

// NewSink creates a Sink publishing to the given default channel. The client
// must not be nil; it is shared with the caller and is not closed by the
// sink.
func NewSink(client *redis.Client, channel string, opts ...SinkOption) (*Sink, error) {
	if channel == "" {
		return nil, ErrEmptyChannel
	}

	cfg := sinkConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Sink{
		client:  client,
		channel: channel,
		logger:  cfg.logger,
	}, nil
}

// Attached implements streamkit.Subscriber; the sink requests unbounded
// demand, since publishing applies no backpressure of its own.
func (s *Sink) Attached(f streamkit.Flow) {
	s.mu.Lock()
	s.flow = f
	s.mu.Unlock()

	f.Request(streamkit.Unbounded())
}

// Receive implements streamkit.Subscriber by publishing the message.
func (s *Sink) Receive(msg Message) streamkit.Demand {
	channel := msg.Channel
	if channel == "" {
		channel = s.channel
	}

	if err := s.client.Publish(context.Background(), channel, msg.Payload).Err(); err != nil {
		s.failed.Add(1)
		s.logger.Error("redis publish failed",
			logger.Component("redisstream"),
			logger.Channel(channel),
			logger.Error(err),
		)
		return streamkit.None()
	}

	s.published.Add(1)
	return streamkit.None()
}

// Complete implements streamkit.Subscriber by logging the terminal signal.
func (s *Sink) Complete(c streamkit.Completion) {
	s.logger.Debug("upstream terminated",
		logger.Component("redisstream"),
		logger.Channel(s.channel),
		slog.String("completion", c.String()),
	)
}

// Flow returns the flow handle received on attachment, nil before then.
func (s *Sink) Flow() streamkit.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}

// SinkStats is a point-in-time snapshot of the sink's publish counters.
type SinkStats struct {
	Published uint64
	Failed    uint64
}

// Stats returns a snapshot of the sink's counters.
func (s *Sink) Stats() SinkStats {
	return SinkStats{
		Published: s.published.Load(),
		Failed:    s.failed.Load(),
	}
}
