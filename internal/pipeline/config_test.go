package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.Equal(t, 3, cfg.BanThreshold)
	assert.Equal(t, 2, cfg.RetryLimit)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"negative batch size", func(c *Config) { c.BatchSize = -1 }},
		{"zero workers", func(c *Config) { c.MaxWorkers = 0 }},
		{"negative max reviews", func(c *Config) { c.MaxReviews = -1 }},
		{"negative start index", func(c *Config) { c.StartIndex = -5 }},
		{"negative retry limit", func(c *Config) { c.RetryLimit = -1 }},
		{"zero stage timeout", func(c *Config) { c.StageTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestNewDispatcher_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWorkers = 0
	_, err := NewDispatcher(cfg, Deps{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestConfig_StageTimeoutIsDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StageTimeout = 50 * time.Millisecond
	assert.NoError(t, cfg.Validate())
}
