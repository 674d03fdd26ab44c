package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilConfig is returned when Load receives a nil pointer.
var ErrNilConfig = errors.New("config: nil config pointer")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> loaded struct value
)

// Load populates cfg from environment variables. Each configuration type is
// parsed once per process; subsequent calls for the same type return the
// cached value. A .env file in the working directory is loaded on first use
// if present.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		// Missing .env is the normal production case.
		_ = godotenv.Load()
	})

	typ := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: load %s: %w", typ.String(), err)
	}

	actual, _ := cache.LoadOrStore(typ, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is Load that panics on failure, for use during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
