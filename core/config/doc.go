// Package config provides type-safe environment variable loading with
// per-type caching using Go generics.
//
// The package loads a .env file on first use when one exists and parses
// environment variables into struct fields via caarlos0/env tags.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/acmegate/core/config"
//
//	type RedisConfig struct {
//		ConnectionURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		ScanBatchSize int    `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
//	}
//
//	func main() {
//		var cfg RedisConfig
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//		// or panic on failure during startup
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime;
// repeated Load calls for the same type return the cached value. Different
// types are cached independently.
package config
