package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/core/logger"
)

// Source is a cold Publisher over a paginated JSON endpoint. Subscribing
// performs no network activity; the first positive request starts a pump
// goroutine that fetches pages and delivers items one at a time, strictly
// within outstanding demand. Leftover items from a fetched page wait in
// memory for more demand rather than triggering further fetches.
//
// Each subscriber gets its own independent pass over the feed.
type Source[T any] struct {
	baseURL  *url.URL
	pageSize int
	timeout  time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// SourceOption configures a Source. Invalid values are ignored.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	client *http.Client
	logger *slog.Logger
}

// WithHTTPClient sets the HTTP client used for page fetches. Nil clients
// are ignored.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(cfg *sourceConfig) {
		if client != nil {
			cfg.client = client
		}
	}
}

// WithLogger sets the logger for fetch diagnostics. Nil loggers are ignored.
func WithLogger(log *slog.Logger) SourceOption {
	return func(cfg *sourceConfig) {
		if log != nil {
			cfg.logger = log
		}
	}
}

// NewSource creates a Source reading from cfg.BaseURL. Page size and request
// timeout fall back to DefaultConfig values when non-positive.
func NewSource[T any](cfg Config, opts ...SourceOption) (*Source[T], error) {
	if cfg.BaseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}

	sc := sourceConfig{
		client: http.DefaultClient,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&sc)
	}

	defaults := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}

	return &Source[T]{
		baseURL:  base,
		pageSize: cfg.PageSize,
		timeout:  cfg.RequestTimeout,
		client:   sc.client,
		logger:   sc.logger,
	}, nil
}

// Subscribe implements streamkit.Publisher. No request is made until the
// subscriber signals positive demand.
func (s *Source[T]) Subscribe(downstream streamkit.Subscriber[T]) streamkit.Flow {
	var (
		pending []T
		cursor  string
		drained bool
	)
	src := streamkit.FromFunc(func(ctx context.Context) (T, error) {
		var zero T
		for len(pending) == 0 {
			if drained {
				return zero, io.EOF
			}
			items, next, err := s.fetchPage(ctx, cursor)
			if err != nil {
				return zero, err
			}
			cursor = next
			drained = next == ""
			pending = items
		}
		v := pending[0]
		pending = pending[1:]
		return v, nil
	})
	return src.Subscribe(downstream)
}

func (s *Source[T]) fetchPage(ctx context.Context, cursor string) ([]T, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL(cursor), nil)
	if err != nil {
		return nil, "", errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var p page[T]
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, "", errors.Join(ErrDecodeFailed, err)
	}

	s.logger.DebugContext(ctx, "feed page fetched",
		logger.Component("feed"),
		logger.Count("items", len(p.Items)),
		logger.Duration(time.Since(start)),
	)
	return p.Items, p.Next, nil
}

func (s *Source[T]) pageURL(cursor string) string {
	u := *s.baseURL
	q := u.Query()
	q.Set("limit", strconv.Itoa(s.pageSize))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
