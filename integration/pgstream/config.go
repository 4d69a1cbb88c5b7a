package pgstream

import "time"

// Config contains PostgreSQL connection settings loaded from environment
// variables. The pool defaults balance throughput and resource usage for
// typical service workloads.
type Config struct {
	ConnectionString  string        `env:"POSTGRES_URL,required"`
	MaxConns          int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns          int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	HealthCheckPeriod time.Duration `env:"POSTGRES_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"POSTGRES_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"POSTGRES_MAX_CONN_LIFETIME" envDefault:"30m"`
	RetryAttempts     int           `env:"POSTGRES_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval     time.Duration `env:"POSTGRES_RETRY_INTERVAL" envDefault:"5s"`
}

// DefaultConfig returns a Config with production defaults applied. The
// connection string is intentionally left empty; there is no sensible
// default for it.
func DefaultConfig() Config {
	return Config{
		MaxConns:          10,
		MinConns:          2,
		HealthCheckPeriod: time.Minute,
		MaxConnIdleTime:   10 * time.Minute,
		MaxConnLifetime:   30 * time.Minute,
		RetryAttempts:     3,
		RetryInterval:     5 * time.Second,
	}
}
