package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	mu    sync.RWMutex
	cache = make(map[reflect.Type]any)
)

// Load populates cfg from environment variables using `env` struct tags.
// The first call for a given type parses the environment; subsequent calls
// return the cached value, so all loaders of the same type see identical
// configuration regardless of later environment mutations.
//
// A .env file in the working directory is loaded once per process before the
// first parse. Missing .env files are not an error; deployments rely on real
// environment variables.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if reflect.TypeOf((*T)(nil)).Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	typ := reflect.TypeOf((*T)(nil)).Elem()

	mu.RLock()
	if cached, ok := cache[typ]; ok {
		mu.RUnlock()
		*cfg = cached.(T)
		return nil
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Another goroutine may have parsed the same type while we waited.
	if cached, ok := cache[typ]; ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParseFailed, err)
	}

	cache[typ] = *cfg
	return nil
}

// MustLoad is like Load but panics on failure. Intended for application
// startup where a missing required variable should abort the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
