package wshub

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/core/logger"
)

// Hub fans topic streams out to websocket connections. Each topic is backed
// by a replay subject, so new connections receive the topic's recent frames
// before live ones. Slow connections lose frames instead of slowing the
// topic down.
type Hub struct {
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	topics map[string]*streamkit.ReplaySubject[[]byte]
	closed bool

	clients atomic.Int64
	wg      sync.WaitGroup
}

// Stats is a point-in-time snapshot of hub state.
type Stats struct {
	Topics  int
	Clients int64
}

// Option configures a Hub. Invalid values are ignored.
type Option func(*Hub)

// WithLogger sets the logger for connection diagnostics. Nil loggers are
// ignored.
func WithLogger(log *slog.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.logger = log
		}
	}
}

// WithCheckOrigin sets the upgrade origin check. Nil functions are ignored.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		if fn != nil {
			h.upgrader.CheckOrigin = fn
		}
	}
}

// WithReadBuffer sets the websocket read buffer size.
func WithReadBuffer(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.upgrader.ReadBufferSize = size
		}
	}
}

// WithWriteBuffer sets the websocket write buffer size.
func WithWriteBuffer(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.upgrader.WriteBufferSize = size
		}
	}
}

// New creates a Hub. Non-positive Config fields fall back to DefaultConfig
// values; a negative replay depth means no replay.
func New(cfg Config, opts ...Option) *Hub {
	defaults := DefaultConfig()
	if cfg.ReplayDepth < 0 {
		cfg.ReplayDepth = 0
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaults.SendBuffer
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaults.WriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaults.PongWait
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}

	h := &Hub{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		topics: make(map[string]*streamkit.ReplaySubject[[]byte]),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// topic returns the subject for name, creating it on first use.
func (h *Hub) topic(name string) (*streamkit.ReplaySubject[[]byte], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	subj, ok := h.topics[name]
	if !ok {
		subj = streamkit.NewReplaySubject[[]byte](h.cfg.ReplayDepth,
			streamkit.WithName(name),
			streamkit.WithLogger(h.logger),
		)
		h.topics[name] = subj
	}
	return subj, nil
}

// Publish sends a frame to every connection on the topic, creating the
// topic if it does not exist yet. The frame is copied, so callers may reuse
// the slice.
func (h *Hub) Publish(topic string, data []byte) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	subj, err := h.topic(topic)
	if err != nil {
		return err
	}
	subj.Send(slices.Clone(data))
	return nil
}

// CloseTopic finishes the topic's stream. Connected clients receive a
// normal close frame; later connections to the same name start a fresh
// topic.
func (h *Hub) CloseTopic(topic string) error {
	subj, err := h.removeTopic(topic)
	if err != nil {
		return err
	}
	subj.Finish()
	return nil
}

// FailTopic fails the topic's stream with cause. Connected clients receive
// an error close frame.
func (h *Hub) FailTopic(topic string, cause error) error {
	subj, err := h.removeTopic(topic)
	if err != nil {
		return err
	}
	subj.Fail(cause)
	return nil
}

func (h *Hub) removeTopic(topic string) (*streamkit.ReplaySubject[[]byte], error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	subj, ok := h.topics[topic]
	if !ok {
		return nil, ErrTopicNotFound
	}
	delete(h.topics, topic)
	return subj, nil
}

// ServeHTTP upgrades the request to a websocket connection and attaches it
// to the topic named by the "topic" query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		http.Error(w, "missing topic parameter", http.StatusBadRequest)
		return
	}

	subj, err := h.topic(topic)
	if err != nil {
		http.Error(w, "hub is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed",
			logger.Component("wshub"),
			logger.Topic(topic),
			logger.Error(err),
		)
		return
	}

	c := newClient(h, conn, topic)
	sub := subj.Attach(c.sink)
	c.sub = sub

	h.clients.Add(1)
	h.wg.Add(1)
	go c.writePump()
	go c.readPump()

	h.logger.Debug("client connected",
		logger.Component("wshub"),
		logger.Topic(topic),
		logger.ID("client_id", c.id),
		logger.Subscription(sub.ID()),
	)
}

// Stats returns current topic and connection counts.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	topics := len(h.topics)
	h.mu.RUnlock()
	return Stats{
		Topics:  topics,
		Clients: h.clients.Load(),
	}
}

// Healthcheck reports whether the hub can accept connections. It can be
// plugged into readiness probes.
func (h *Hub) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return errors.Join(ErrHealthcheckFailed, ErrHubClosed)
	}
	return nil
}

// Shutdown finishes every topic, closes all connections, and waits for
// their pumps to exit or ctx to expire. The hub rejects new connections
// and publishes afterwards.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	topics := make([]*streamkit.ReplaySubject[[]byte], 0, len(h.topics))
	for _, subj := range h.topics {
		topics = append(topics, subj)
	}
	h.topics = make(map[string]*streamkit.ReplaySubject[[]byte])
	h.mu.Unlock()

	for _, subj := range topics {
		subj.Finish()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
