// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control is the read-only diagnostics surface of an engine: the
// configuration it was created with, runtime metrics and debug probes.
// Configuration is fixed at creation; there is no runtime reconfiguration.
type Control interface {
	GetConfig() map[string]any
	Stats() map[string]any
	SetMetric(key string, value any)
	RegisterDebugProbe(name string, fn func() any)
}
