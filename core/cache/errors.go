package cache

import "errors"

// ErrInvalidCapacity is returned by constructors when a requested capacity
// is zero or negative.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")
