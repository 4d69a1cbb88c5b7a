package streamkit

import (
	"log/slog"

	"github.com/google/uuid"
)

type subjectConfig struct {
	name   string
	logger *slog.Logger
}

// SubjectOption configures a ReplaySubject.
type SubjectOption func(*subjectConfig)

// WithName sets the subject name used in log attributes. Defaults to a
// generated identifier.
func WithName(name string) SubjectOption {
	return func(cfg *subjectConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithLogger sets the logger for subject lifecycle events. Defaults to a
// no-op logger.
func WithLogger(logger *slog.Logger) SubjectOption {
	return func(cfg *subjectConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

func uuidShort() string {
	return uuid.NewString()[:8]
}
