package ssehub

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/core/logger"
)

// DefaultKeepAlive is the interval between keep-alive comments when none is
// configured.
const DefaultKeepAlive = 30 * time.Second

// DefaultBuffer is the size of the per-request send queue.
const DefaultBuffer = 64

type config struct {
	eventName   string
	eventID     string
	idGen       func(any) string
	retry       int
	keepAlive   time.Duration
	noKeepAlive bool
	buffer      int
	log         *slog.Logger
}

// Option configures the SSE handler. Invalid values are ignored in favor of
// the defaults.
type Option func(*config)

// WithEventName sets the event field written before every data frame.
func WithEventName(name string) Option {
	return func(cfg *config) {
		cfg.eventName = name
	}
}

// WithEventID sets a fixed id field for every frame.
func WithEventID(id string) Option {
	return func(cfg *config) {
		cfg.eventID = id
	}
}

// WithEventIDGenerator derives the id field from each value. Takes precedence
// over WithEventID.
func WithEventIDGenerator(fn func(v any) string) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.idGen = fn
		}
	}
}

// WithReconnectTime advertises the client reconnection delay in milliseconds
// via the retry field.
func WithReconnectTime(milliseconds int) Option {
	return func(cfg *config) {
		if milliseconds > 0 {
			cfg.retry = milliseconds
		}
	}
}

// WithKeepAlive sets the interval between keep-alive comments.
func WithKeepAlive(interval time.Duration) Option {
	return func(cfg *config) {
		if interval > 0 {
			cfg.keepAlive = interval
		}
	}
}

// WithoutKeepAlive disables keep-alive comments entirely.
func WithoutKeepAlive() Option {
	return func(cfg *config) {
		cfg.noKeepAlive = true
	}
}

// WithBuffer sets the per-request send queue size. Values arriving while the
// queue is full are dropped and counted.
func WithBuffer(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.buffer = size
		}
	}
}

// WithLogger sets the logger for connection lifecycle events. Defaults to a
// no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(cfg *config) {
		if log != nil {
			cfg.log = log
		}
	}
}

// Handler exposes a stream as a Server-Sent Events endpoint. Each request
// attaches its own subscriber to pub, so every client observes the stream
// independently; when pub is backed by a replay subject, new clients receive
// the buffered replay first.
//
// Values are written as data frames: strings and byte slices verbatim,
// anything else JSON-encoded. The response is flushed after every frame.
// When the stream fails, the failure is surfaced to the client as a terminal
// frame with the event name "error" before the response ends. The handler
// returns when the stream terminates or the client disconnects, cancelling
// the subscription either way.
func Handler[T any](pub streamkit.Publisher[T], opts ...Option) http.Handler {
	cfg := config{
		keepAlive: DefaultKeepAlive,
		buffer:    DefaultBuffer,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if cfg.retry > 0 {
			fmt.Fprintf(w, "retry: %d\n\n", cfg.retry)
		}
		// Initial comment so proxies and clients see bytes immediately.
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		sink := streamkit.NewChannelSink[T](cfg.buffer)
		flow := pub.Subscribe(sink)
		defer flow.Cancel()

		cfg.log.DebugContext(r.Context(), "sse client connected",
			logger.Component("ssehub"),
		)
		defer func() {
			cfg.log.DebugContext(r.Context(), "sse client disconnected",
				logger.Component("ssehub"),
				logger.Dropped(sink.Dropped()),
			)
		}()

		var keepAliveTicker *time.Ticker
		var keepAliveC <-chan time.Time
		if !cfg.noKeepAlive && cfg.keepAlive > 0 {
			keepAliveTicker = time.NewTicker(cfg.keepAlive)
			keepAliveC = keepAliveTicker.C
			defer keepAliveTicker.Stop()
		}

		for {
			select {
			case <-r.Context().Done():
				return

			case <-keepAliveC:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					cfg.log.DebugContext(r.Context(), "sse keepalive write failed",
						logger.Component("ssehub"),
						logger.Error(err),
					)
					return
				}
				flusher.Flush()

			case v, ok := <-sink.Out():
				if !ok {
					if err := sink.Err(); err != nil {
						writeFrame(w, err.Error(), "error", "", nil)
						flusher.Flush()
					}
					return
				}

				if keepAliveTicker != nil {
					keepAliveTicker.Reset(cfg.keepAlive)
				}

				if err := writeFrame(w, v, cfg.eventName, cfg.eventID, cfg.idGen); err != nil {
					cfg.log.DebugContext(r.Context(), "sse frame write failed",
						logger.Component("ssehub"),
						logger.Error(err),
					)
					return
				}
				flusher.Flush()
			}
		}
	})
}

// writeFrame writes one Server-Sent Event to the response.
func writeFrame(w io.Writer, data any, eventName, eventID string, idGen func(any) string) error {
	if eventName != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", eventName); err != nil {
			return err
		}
	}

	id := eventID
	if idGen != nil {
		id = idGen(data)
	}
	if id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
			return err
		}
	}

	var payload string
	switch v := data.(type) {
	case string:
		payload = v
	case []byte:
		payload = string(v)
	default:
		encoded, err := json.Marshal(data)
		if err != nil {
			return err
		}
		payload = string(encoded)
	}

	_, err := fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
