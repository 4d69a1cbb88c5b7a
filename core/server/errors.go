package server

import "errors"

var (
	// ErrMissingAddress is returned when the server address is not provided.
	ErrMissingAddress = errors.New("server address is required")

	// ErrServerAlreadyRunning is returned when Run is called on a server
	// that is already serving.
	ErrServerAlreadyRunning = errors.New("server is already running")

	// ErrShutdownFailed is returned when graceful shutdown does not complete
	// within the shutdown timeout.
	ErrShutdownFailed = errors.New("server shutdown failed")
)
