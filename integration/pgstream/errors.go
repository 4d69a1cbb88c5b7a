package pgstream

import "errors"

// Domain-specific PostgreSQL errors for consistent error handling across the
// application. Use errors.Is() to check error types for retry logic and
// user-facing messages.
var (
	ErrEmptyConnectionString    = errors.New("empty postgres connection string")
	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrHealthcheckFailed        = errors.New("healthcheck failed, connection is not available")
	ErrInvalidChannel           = errors.New("invalid postgres notification channel")
	ErrListenFailed             = errors.New("failed to listen on notification channel")
	ErrNotifyFailed             = errors.New("failed to publish notification")
	ErrEmptyTopic               = errors.New("empty outbox topic")
	ErrEnqueueFailed            = errors.New("failed to enqueue outbox record")
	ErrClaimFailed              = errors.New("failed to claim outbox rows")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")
)
