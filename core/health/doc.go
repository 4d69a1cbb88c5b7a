// Package health provides HTTP handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependencies are available
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	mux.HandleFunc("/health/live", health.Liveness)
//	mux.HandleFunc("/health/ready", health.Readiness(
//		log,
//		pgstream.Healthcheck(pool),
//		redisstream.Healthcheck(client),
//		hub.Healthcheck,
//	))
//	mux.HandleFunc("/ping", health.NoContent)
//
// Dependency checks must follow the func(context.Context) error signature.
// The Healthcheck constructors in the integration packages and the
// Healthcheck method on wshub.Hub already match it:
//
//	func checkDB(ctx context.Context) error {
//		return pool.Ping(ctx)
//	}
package health
