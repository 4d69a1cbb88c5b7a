package wshub

import "time"

// Config holds the configuration for websocket hubs.
// Designed for environment-based configuration using popular env parsing libraries.
type Config struct {
	// ReplayDepth is the number of recent frames replayed to new connections.
	ReplayDepth int `env:"WSHUB_REPLAY_DEPTH" envDefault:"16"`
	// SendBuffer is the per-connection outbound queue size; frames beyond it
	// are dropped rather than blocking the hub.
	SendBuffer int `env:"WSHUB_SEND_BUFFER" envDefault:"64"`
	// WriteWait bounds a single websocket write.
	WriteWait time.Duration `env:"WSHUB_WRITE_WAIT" envDefault:"10s"`
	// PongWait bounds the silence tolerated before a connection is dropped.
	// Pings are sent at 90% of this interval.
	PongWait time.Duration `env:"WSHUB_PONG_WAIT" envDefault:"60s"`
	// MaxMessageSize bounds inbound frames; larger frames close the connection.
	MaxMessageSize int64 `env:"WSHUB_MAX_MESSAGE_SIZE" envDefault:"512"`
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig() Config {
	return Config{
		ReplayDepth:    16,
		SendBuffer:     64,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 512,
	}
}
