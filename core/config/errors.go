package config

import "errors"

// Domain-specific configuration errors for consistent error handling.
// Use errors.Is() to check error types when loading fails.
var (
	ErrNilConfig        = errors.New("nil config pointer")
	ErrNotStructPointer = errors.New("config must be a pointer to a struct")
	ErrParseFailed      = errors.New("failed to parse environment variables")
)
