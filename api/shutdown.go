// File: api/shutdown.go
// Package api defines unified shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "context"

// ShutdownMode selects how queued work is treated on shutdown.
type ShutdownMode int

const (
	// ShutdownGraceful waits for every queued and running task.
	ShutdownGraceful ShutdownMode = 1
	// ShutdownImmediate discards queued tasks and waits only for running ones.
	ShutdownImmediate ShutdownMode = 2
)

func (m ShutdownMode) String() string {
	switch m {
	case ShutdownGraceful:
		return "graceful"
	case ShutdownImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// Valid reports whether m is a known mode.
func (m ShutdownMode) Valid() bool {
	return m == ShutdownGraceful || m == ShutdownImmediate
}

// GracefulShutdown groups components that stop in one of the two modes.
type GracefulShutdown interface {
	// Shutdown stops the component and releases its resources.
	// A second call reports ErrShutdown.
	Shutdown(ctx context.Context, mode ShutdownMode) error
}
