package mongostream

import "errors"

// Domain-specific MongoDB errors for consistent error handling across the
// application. Use errors.Is() to check error types for retry logic and
// user-facing messages.
var (
	ErrEmptyConnectionURL     = errors.New("empty mongodb connection url")
	ErrEmptyDatabase          = errors.New("empty mongodb database name")
	ErrEmptyCollection        = errors.New("empty mongodb collection name")
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("healthcheck failed, connection is not available")
	ErrWatchFailed            = errors.New("failed to watch change stream")
	ErrDecodeFailed           = errors.New("failed to decode change event")
)
