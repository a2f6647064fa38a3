package trainer

import (
	"io"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned by New when the configuration is rejected.
var ErrInvalidConfig = errors.New("invalid trainer config")

// Config holds the trainer hyperparameters.
type Config struct {
	LearningRate float32 // SGD learning rate (default: 1e-3)
	WeightDecay  float32 // L2 penalty (default: 1e-5)
	Device       string  // Device designator, informational: "cpu" or "webgpu"

	// Progress, if set, receives a progress bar updated once per epoch by Train.
	Progress io.Writer

	// OnEpoch, if set, is called by Train with each result as it is recorded.
	OnEpoch func(EpochResult)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LearningRate: 1e-3,
		WeightDecay:  1e-5,
		Device:       "cpu",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !(c.LearningRate > 0) {
		return errors.Wrapf(ErrInvalidConfig, "learning rate must be positive, got %g", c.LearningRate)
	}
	if !(c.WeightDecay >= 0) {
		return errors.Wrapf(ErrInvalidConfig, "weight decay must be non-negative, got %g", c.WeightDecay)
	}
	return nil
}
