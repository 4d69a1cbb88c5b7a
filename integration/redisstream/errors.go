package redisstream

import "errors"

// Domain-specific Redis errors for consistent error handling across the
// application. Use errors.Is() to check error types for retry logic and
// user-facing messages.
var (
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrNoChannels                   = errors.New("no redis channels to subscribe")
	ErrEmptyChannel                 = errors.New("empty redis channel")
	ErrSubscribeFailed              = errors.New("failed to subscribe to redis channels")
)
