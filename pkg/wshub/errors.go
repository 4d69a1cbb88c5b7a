package wshub

import "errors"

// Domain-specific hub errors for consistent error handling.
// Use errors.Is() to check error types.
var (
	ErrHubClosed         = errors.New("hub is closed")
	ErrEmptyTopic        = errors.New("empty topic name")
	ErrTopicNotFound     = errors.New("topic not found")
	ErrHealthcheckFailed = errors.New("hub healthcheck failed")
)
