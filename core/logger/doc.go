// Package logger provides structured logging utilities built on Go's
// standard slog package: a factory with environment presets and a consistent
// vocabulary for the attributes that show up again and again in stream
// pipelines: errors, timing, topics, subscriptions, and delivery counters.
//
// # Features
//
//   - Built on Go's standard slog for compatibility and performance
//   - Environment presets for development, staging, and production
//   - Nil-safe attribute creation using the empty Attr pattern
//   - Stream-specific attributes for topics, subscriptions, and delivery stats
//   - Generic metadata helpers shared across components
//   - Debugging helpers for stack traces and caller info
//
// # Logger Construction
//
// Create loggers with the factory function and environment presets:
//
//	// Development: text format, debug level, stdout
//	log := logger.New(logger.WithDevelopment("myapp"))
//
//	// Production: JSON format, info level, stdout
//	log := logger.New(logger.WithProduction("myapp"))
//
//	// Custom configuration
//	log := logger.New(
//		logger.WithLevel(slog.LevelWarn),
//		logger.WithJSONFormatter(),
//		logger.WithAttr(slog.String("service", "api")),
//		logger.WithOutput(os.Stderr),
//	)
//
// # Basic Usage
//
// Use the helpers wherever you would otherwise hand-write slog attributes:
//
//	import "github.com/dmitrymomot/streamkit/core/logger"
//
//	log.Info("subscriber attached",
//		logger.Component("wshub"),
//		logger.Topic("orders"),
//		logger.Subscription(sub.ID()),
//	)
//
//	log.Error("fetch failed",
//		logger.Error(err),
//		logger.Component("feed"),
//		logger.RetryCount(attempts),
//		logger.Duration(time.Since(start)),
//	)
//
// # Nil Safety
//
// Helpers that wrap possibly-absent values return an empty slog.Attr when the
// value is missing, so call sites never need nil checks:
//
//	// Logs nothing extra when err is nil.
//	log.Info("poll finished", logger.Error(err), logger.Count("rows", n))
//
// # Stream Attributes
//
// Delivery bookkeeping uses a fixed set of keys so dashboards and log queries
// stay stable across components:
//
//	stats := subj.Stats()
//	log.Debug("subject state",
//		logger.Topic(topic),
//		logger.Count("subscribers", stats.Subscribers),
//		logger.Buffered(stats.Buffered),
//	)
//
//	log.Warn("slow consumer",
//		logger.Subscription(sub.ID()),
//		logger.Delivered(s.Delivered),
//		logger.Dropped(s.Dropped),
//		logger.Demand(s.Demand),
//	)
//
// # Grouping
//
// Related attributes can be nested under a single key:
//
//	log.Info("broker connected",
//		logger.Component("redisstream"),
//		logger.Group("conn",
//			slog.String("addr", cfg.ConnectionURL),
//			slog.Int("db", db),
//		),
//	)
package logger
