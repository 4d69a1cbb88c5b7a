package server

import "time"

const (
	// DefaultReadHeaderTimeout bounds parsing of the request line and headers.
	DefaultReadHeaderTimeout = 5 * time.Second

	// DefaultIdleTimeout closes keep-alive connections with no pending request.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMaxHeaderBytes is the default maximum size of request headers.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)
