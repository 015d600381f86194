// SPDX-License-Identifier: EPL-2.0

// Package config loads the audstream YAML configuration.
package config

import (
	"log/slog"
	"math"
	"time"

	"github.com/ik5/audstream/stream"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the file layout. Fields left out of the file keep the values
// from [Default].
type Config struct {
	// SampleRate of the simulated host in Hz.
	SampleRate int `yaml:"sample_rate"`

	// PoolSeconds is the pool capacity in seconds of audio.
	PoolSeconds float64 `yaml:"pool_seconds"`

	// BlockSize is the callback size in frames.
	BlockSize int `yaml:"block_size"`

	// Loop starts playback in loop mode.
	Loop bool `yaml:"loop"`

	// RefillThreshold is the consumed fraction of the pool that triggers a
	// refill.
	RefillThreshold float64 `yaml:"refill_threshold"`

	// PollInterval is how often the worker checks the playhead, e.g. "10ms".
	PollInterval time.Duration `yaml:"poll_interval"`

	LogLevel LogLevel `yaml:"log_level"`
}

// Default returns the configuration used when no file is given. Loop mode
// is on, as a file player plugin starts.
func Default() *Config {
	return &Config{
		SampleRate:      stream.DefaultSampleRate,
		PoolSeconds:     1,
		BlockSize:       256,
		Loop:            true,
		RefillThreshold: stream.DefaultRefillThreshold,
		PollInterval:    stream.DefaultPollInterval,
		LogLevel:        LogInfo,
	}
}

// PoolFrames is the pool capacity in frames.
func (c *Config) PoolFrames() int {
	return int(math.Ceil(c.PoolSeconds * float64(c.SampleRate)))
}

// Stream converts c into an engine configuration.
func (c *Config) Stream(dec stream.Decoder, log *slog.Logger) stream.Config {
	return stream.Config{
		SampleRate:      c.SampleRate,
		PoolFrames:      c.PoolFrames(),
		RefillThreshold: c.RefillThreshold,
		PollInterval:    c.PollInterval,
		Loop:            c.Loop,
		Decoder:         dec,
		Logger:          log,
	}
}
