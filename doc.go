// Package streamkit provides a reactive-streams toolkit built around a
// replay-buffered multicast subject: one upstream source shared as a hot
// stream by any number of independently attaching subscribers, each first
// receiving the most recent values, under an explicit pull-based demand
// protocol. The library implements modern Go patterns including generics for
// type safety, functional options for configuration, and interface-based
// design for flexibility and testability.
//
// # LLM Assistant Note
//
// This file serves as a comprehensive index of all packages in the streamkit
// library, designed to help LLMs understand the complete codebase structure
// and functionality. Each package entry includes the full import path and a
// concise description of its purpose.
//
// # Package Organization
//
// The streamkit library is organized into four main categories:
//
//   - Root: the stream primitive (subject, subscriptions, demand, sources, sinks)
//   - Core: supporting components (config, caching, feed ingestion, logging)
//   - Utilities: standalone fan-out bridges for network clients
//   - Integrations: stream adapters for Redis, PostgreSQL, and MongoDB
//
// # Getting Documentation
//
// For detailed documentation on any package, use the go doc command:
//
//	go doc github.com/dmitrymomot/streamkit
//	go doc -all github.com/dmitrymomot/streamkit/pkg/wshub
//
// # Root Package
//
// The root package is the core primitive:
//
//	ReplaySubject  - replay-buffered multicast subject (the hot core)
//	Subscription   - per-subscriber handle: demand bookkeeping, cancellation
//	SharedStream   - one-source-many-subscribers composition via Replay
//	ReplayBuffer   - bounded last-N history with snapshot iteration
//	Demand         - finite or unbounded pull-protocol currency
//	Completion     - terminal signal: finished, or failed with one error
//	Publisher, Subscriber, Flow - the producer/consumer contracts
//	SliceSource, ChannelSource  - cold sources honoring the demand protocol
//	FuncSource, BatchFuncSource - pull-function sources, one value or one batch per call
//	Sink, ChannelSink           - callback and channel subscribers
//
// # Core Packages
//
// Supporting components for building stream pipelines:
//
//	github.com/dmitrymomot/streamkit/core/cache   - LRU and two-tier (SLRU) caches behind a single lock
//	github.com/dmitrymomot/streamkit/core/config  - Type-safe environment variable loading
//	github.com/dmitrymomot/streamkit/core/feed    - Paginated HTTP+JSON record source with demand pacing
//	github.com/dmitrymomot/streamkit/core/health  - Liveness and readiness probe handlers
//	github.com/dmitrymomot/streamkit/core/logger  - Structured logging helpers built on slog
//	github.com/dmitrymomot/streamkit/core/server  - Graceful HTTP server tuned for streaming responses
//
// # Utility Packages
//
// Standalone bridges from streams to network clients:
//
//	github.com/dmitrymomot/streamkit/pkg/ssehub   - Server-Sent Events handler streaming any Publisher
//	github.com/dmitrymomot/streamkit/pkg/wshub    - WebSocket fan-out hub with per-topic replay
//
// # Integration Packages
//
// Production-ready stream adapters for external systems:
//
//	github.com/dmitrymomot/streamkit/integration/mongostream - MongoDB change streams as Publishers
//	github.com/dmitrymomot/streamkit/integration/pgstream    - PostgreSQL LISTEN/NOTIFY and outbox streams
//	github.com/dmitrymomot/streamkit/integration/redisstream - Redis pub/sub sources and sinks
//
// # Architecture Patterns
//
// The streamkit library follows these key architectural patterns:
//
//   - Generics for type-safe value flow end to end
//   - Functional options for flexible configuration
//   - Pull-based demand so slow consumers never stall fast ones
//   - Snapshot fan-out tolerating re-entrant attach and cancel
//   - Lazy upstream activation: producers idle until real demand exists
//
// # Example Usage
//
//	import (
//		"fmt"
//
//		"github.com/dmitrymomot/streamkit"
//	)
//
//	func main() {
//		source := streamkit.FromSlice([]int{1, 2, 3, 4, 5})
//
//		// One subscription to source, replayed to every subscriber.
//		shared := streamkit.Replay[int](source, 2)
//
//		first := streamkit.NewSink(func(v int) streamkit.Demand {
//			fmt.Println("first:", v)
//			return streamkit.None()
//		}, nil)
//		shared.Attach(first)
//
//		// A late subscriber still observes the last two values.
//		late := streamkit.NewChannelSink[int](8)
//		shared.Attach(late)
//		for v := range late.Out() {
//			fmt.Println("late:", v)
//		}
//	}
//
// For complete examples and detailed usage instructions, refer to the
// individual package documentation using the go doc command.
package streamkit
