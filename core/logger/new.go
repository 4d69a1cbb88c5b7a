package logger

import (
	"io"
	"log/slog"
	"os"
)

type config struct {
	output io.Writer
	level  slog.Level
	json   bool
	attrs  []slog.Attr
}

// Option configures the logger returned by New.
type Option func(*config)

// WithDevelopment configures human-readable text output at debug level,
// tagged with the application name.
func WithDevelopment(app string) Option {
	return func(cfg *config) {
		cfg.json = false
		cfg.level = slog.LevelDebug
		if app != "" {
			cfg.attrs = append(cfg.attrs, slog.String("app", app))
		}
	}
}

// WithProduction configures JSON output at info level, tagged with the
// application name.
func WithProduction(app string) Option {
	return func(cfg *config) {
		cfg.json = true
		cfg.level = slog.LevelInfo
		if app != "" {
			cfg.attrs = append(cfg.attrs, slog.String("app", app))
		}
	}
}

// WithStaging configures JSON output at info level, tagged with the
// application name. Identical wire format to production so staging logs
// exercise the same ingestion pipeline.
func WithStaging(app string) Option {
	return func(cfg *config) {
		cfg.json = true
		cfg.level = slog.LevelInfo
		if app != "" {
			cfg.attrs = append(cfg.attrs, slog.String("app", app))
		}
	}
}

// WithLevel sets the minimum level a record must have to be logged.
func WithLevel(level slog.Level) Option {
	return func(cfg *config) {
		cfg.level = level
	}
}

// WithJSONFormatter switches output to JSON records.
func WithJSONFormatter() Option {
	return func(cfg *config) {
		cfg.json = true
	}
}

// WithTextFormatter switches output to logfmt-style text records.
func WithTextFormatter() Option {
	return func(cfg *config) {
		cfg.json = false
	}
}

// WithOutput redirects log output. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(cfg *config) {
		if w != nil {
			cfg.output = w
		}
	}
}

// WithAttr appends base attributes included on every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(cfg *config) {
		cfg.attrs = append(cfg.attrs, attrs...)
	}
}

// New builds a logger from the options. The default is text output at info
// level on stdout; later options override earlier ones.
func New(opts ...Option) *slog.Logger {
	cfg := config{
		output: os.Stdout,
		level:  slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}
	var h slog.Handler
	if cfg.json {
		h = slog.NewJSONHandler(cfg.output, handlerOpts)
	} else {
		h = slog.NewTextHandler(cfg.output, handlerOpts)
	}
	if len(cfg.attrs) > 0 {
		h = h.WithAttrs(cfg.attrs)
	}
	return slog.New(h)
}
