package feed

import "errors"

// Domain-specific feed errors for consistent error handling.
// Use errors.Is() to check error types when a stream fails.
var (
	ErrEmptyBaseURL     = errors.New("empty feed base URL")
	ErrInvalidBaseURL   = errors.New("failed to parse feed base URL")
	ErrRequestFailed    = errors.New("feed request failed")
	ErrUnexpectedStatus = errors.New("feed returned unexpected status")
	ErrDecodeFailed     = errors.New("failed to decode feed response")
)
