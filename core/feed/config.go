package feed

import "time"

// Config holds the configuration for feed sources.
// Designed for environment-based configuration using popular env parsing libraries.
type Config struct {
	BaseURL        string        `env:"FEED_BASE_URL,required"`
	PageSize       int           `env:"FEED_PAGE_SIZE" envDefault:"100"`
	RequestTimeout time.Duration `env:"FEED_REQUEST_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns sensible defaults for production use.
// BaseURL has no default and must be provided.
func DefaultConfig() Config {
	return Config{
		PageSize:       100,
		RequestTimeout: 10 * time.Second,
	}
}
