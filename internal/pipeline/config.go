package pipeline

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config is the dispatcher's configuration surface.
type Config struct {
	// BatchSize is the number of reviews per contiguous batch.
	BatchSize int `validate:"gt=0"`

	// MaxWorkers bounds the number of per-review pipelines running
	// concurrently within a batch.
	MaxWorkers int `validate:"gt=0"`

	// MaxReviews caps the number of reviews pulled from the source.
	// Zero means no cap.
	MaxReviews int `validate:"gte=0"`

	// StartIndex skips that many reviews at the head of the source.
	StartIndex int `validate:"gte=0"`

	// BanThreshold is the violation count a user must strictly exceed to
	// be banned.
	BanThreshold int `validate:"gte=0"`

	// RetryLimit is the number of retries after the first attempt for
	// transient stage failures.
	RetryLimit int `validate:"gte=0"`

	// StageTimeout bounds each individual stage call.
	StageTimeout time.Duration `validate:"gt=0"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:    10,
		MaxWorkers:   3,
		BanThreshold: 3,
		RetryLimit:   2,
		StageTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration, wrapping any violation in ErrConfig.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}
