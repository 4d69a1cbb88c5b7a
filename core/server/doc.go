// Package server wraps http.Server with graceful shutdown and defaults tuned
// for long-lived streaming connections.
//
// net/http read and write timeouts are absolute connection deadlines. A
// WriteTimeout of 15 seconds closes an SSE subscription 15 seconds after it
// was accepted regardless of activity, and a ReadTimeout does the same to any
// handler that outlives it. Both default to zero here; ReadHeaderTimeout
// bounds request parsing instead, and IdleTimeout reaps keep-alive
// connections between requests.
//
// # Basic Usage
//
//	mux := http.NewServeMux()
//	mux.Handle("/ws", hub)
//	mux.Handle("/events", ssehub.Handler(subject))
//
//	if err := server.Run(ctx, ":8080", mux); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// # Coordinated Lifecycle
//
// Run blocks until the context is canceled, then drains in-flight requests
// within the shutdown timeout. It slots directly into an errgroup:
//
//	srv := server.New(cfg.Addr, server.WithLogger(log))
//
//	eg, ctx := errgroup.WithContext(ctx)
//	eg.Go(func() error { return srv.Run(ctx, mux) })
//
// # Configuration
//
// Config carries env tags for loading with core/config:
//
//	var cfg server.Config
//	config.MustLoad(&cfg)
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
package server
