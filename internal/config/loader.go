// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audstream/stream"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over [Default] and validates
// the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate %d must be positive", cfg.SampleRate))
	}
	if cfg.PoolSeconds <= 0 {
		errs = append(errs, fmt.Errorf("pool_seconds %v must be positive", cfg.PoolSeconds))
	} else if cfg.SampleRate > 0 && cfg.PoolFrames() > stream.MaxPoolFrames {
		errs = append(errs, fmt.Errorf("pool_seconds %v exceeds %d frames at %d Hz", cfg.PoolSeconds, stream.MaxPoolFrames, cfg.SampleRate))
	}
	if cfg.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("block_size %d must be positive", cfg.BlockSize))
	} else if cfg.SampleRate > 0 && cfg.PoolSeconds > 0 && cfg.BlockSize > cfg.PoolFrames() {
		errs = append(errs, fmt.Errorf("block_size %d is larger than the pool (%d frames)", cfg.BlockSize, cfg.PoolFrames()))
	}
	if cfg.RefillThreshold <= 0 || cfg.RefillThreshold > 1 {
		errs = append(errs, fmt.Errorf("refill_threshold %.2f is out of range (0, 1]", cfg.RefillThreshold))
	}
	if cfg.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("poll_interval %v must not be negative", cfg.PollInterval))
	}
	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	return errors.Join(errs...)
}
