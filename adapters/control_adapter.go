// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control interface using control package primitives.

package adapters

import (
	"maps"

	"github.com/momentics/hioload-tasks/api"
	"github.com/momentics/hioload-tasks/control"
)

// Ensure compile-time interface compliance.
var (
	_ api.Control = (*ControlAdapter)(nil)
	_ api.Debug   = (*ControlAdapter)(nil)
)

type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

// NewControlAdapter publishes cfg as the frozen configuration snapshot and
// registers the platform probes.
func NewControlAdapter(cfg map[string]any) *ControlAdapter {
	adapter := &ControlAdapter{
		config:  control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	_ = adapter.config.Publish(cfg)
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

// Stats merges metrics with the current probe outputs under "debug.".
func (c *ControlAdapter) Stats() map[string]any {
	combined := c.metrics.GetSnapshot()
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}

// RecordMetrics stores a group of metrics under prefix.
func (c *ControlAdapter) RecordMetrics(prefix string, fields map[string]any) {
	c.metrics.Record(prefix, maps.Clone(fields))
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

func (c *ControlAdapter) RegisterProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

func (c *ControlAdapter) DumpState() map[string]any {
	return c.debug.DumpState()
}
