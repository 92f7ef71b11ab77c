// control/settings.go
// Author: momentics <momentics@gmail.com>
//
// Engine settings: defaults, YAML file loading and environment overrides.

package control

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding file and default settings.
const (
	EnvWorkers       = "HIOLOAD_TASKS_WORKERS"
	EnvQueueCapacity = "HIOLOAD_TASKS_QUEUE_CAPACITY"
	EnvArenaSize     = "HIOLOAD_TASKS_ARENA_SIZE"
	EnvLogLevel      = "HIOLOAD_TASKS_LOG_LEVEL"

	EnvShutdownTimeout = "HIOLOAD_TASKS_SHUTDOWN_TIMEOUT"
)

// Config holds every creation-time engine setting.
type Config struct {
	// Workers to start; <= 0 selects the pool default.
	Workers int `yaml:"workers"`
	// QueueCapacity bounds the task queue; 0 means unbounded.
	QueueCapacity int `yaml:"queueCapacity"`
	// ArenaSize of the descriptor arena; 0 sizes it from the queue capacity.
	ArenaSize int `yaml:"arenaSize"`
	// DescriptorClass serves descriptors from a fixed size class.
	DescriptorClass bool `yaml:"descriptorClass"`
	// PinWorkers binds workers to CPUs.
	PinWorkers bool `yaml:"pinWorkers"`
	// ShutdownTimeout bounds a graceful shutdown, e.g. "2s"; 0 waits indefinitely.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"logLevel"`
	// Tracing enables engine spans.
	Tracing bool `yaml:"tracing"`
}

// DefaultConfig returns settings matching the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:  4,
		LogLevel: zerolog.InfoLevel.String(),
	}
}

// LoadConfig reads YAML settings from path over the defaults and applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the process environment.
func (c *Config) ApplyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvWorkers, &c.Workers},
		{EnvQueueCapacity, &c.QueueCapacity},
		{EnvArenaSize, &c.ArenaSize},
	}
	for _, e := range ints {
		v, ok := os.LookupEnv(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}
	if v, ok := os.LookupEnv(EnvShutdownTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = d
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.QueueCapacity < 0 {
		errs = append(errs, fmt.Errorf("queueCapacity must not be negative, got %d", c.QueueCapacity))
	}
	if c.ArenaSize < 0 {
		errs = append(errs, fmt.Errorf("arenaSize must not be negative, got %d", c.ArenaSize))
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("shutdownTimeout must not be negative, got %s", c.ShutdownTimeout))
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, fmt.Errorf("logLevel: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Level returns the configured log level, Info when unset.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Map flattens the settings for the config store.
func (c *Config) Map() map[string]any {
	return map[string]any{
		"workers":          c.Workers,
		"queue_capacity":   c.QueueCapacity,
		"arena_size":       c.ArenaSize,
		"descriptor_class": c.DescriptorClass,
		"pin_workers":      c.PinWorkers,
		"shutdown_timeout": c.ShutdownTimeout.String(),
		"log_level":        c.LogLevel,
		"tracing":          c.Tracing,
	}
}
