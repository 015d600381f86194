// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultSampleRate      = 48000
	DefaultRefillThreshold = 0.75
	DefaultPollInterval    = 10 * time.Millisecond
)

// Config is the per-engine configuration. Zero fields take the defaults
// listed on each field.
type Config struct {
	// SampleRate of the host in Hz. Defaults to DefaultSampleRate.
	SampleRate int
	// PoolFrames is the pool capacity. Defaults to one second of SampleRate.
	PoolFrames int
	// RefillThreshold is the fraction of the pool window the playhead may
	// consume before a refill is requested. Defaults to 0.75.
	RefillThreshold float64
	// PollInterval is how often the worker checks the playhead on its own.
	// A negative value disables polling.
	PollInterval time.Duration
	// Loop is the initial loop mode.
	Loop bool

	Decoder Decoder
	Logger  *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.PoolFrames == 0 {
		c.PoolFrames = c.SampleRate
	}
	if c.RefillThreshold == 0 {
		c.RefillThreshold = DefaultRefillThreshold
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validate reports every invalid field. Pool sizes are checked by NewPool.
func (c Config) Validate() error {
	var errs []error

	if c.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate))
	}
	if c.PoolFrames < 0 {
		errs = append(errs, fmt.Errorf("%w: pool frames %d", ErrInvalidConfig, c.PoolFrames))
	}
	if c.RefillThreshold < 0 || c.RefillThreshold > 1 {
		errs = append(errs, fmt.Errorf("%w: refill threshold %v not in (0, 1]", ErrInvalidConfig, c.RefillThreshold))
	}
	if c.Decoder == nil {
		errs = append(errs, fmt.Errorf("%w: no decoder", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
