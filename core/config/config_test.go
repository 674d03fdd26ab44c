package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/acmegate/core/config"
)

type storageConfig struct {
	Mode      string `env:"TEST_STORAGE_MODE" envDefault:"memory"`
	BatchSize int    `env:"TEST_STORAGE_BATCH" envDefault:"100"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoadDefaults(t *testing.T) {
	var cfg storageConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "memory", cfg.Mode)
	assert.Equal(t, 100, cfg.BatchSize)
}

func TestLoadCaching(t *testing.T) {
	var first storageConfig
	require.NoError(t, config.Load(&first))

	// Changing the environment after the first load has no effect because
	// the type is cached.
	t.Setenv("TEST_STORAGE_MODE", "redis")

	var second storageConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first, second)
}

func TestLoadRequiredMissing(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_REQUIRED_TOKEN")
}

func TestLoadNil(t *testing.T) {
	err := config.Load[storageConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilConfig)
}
