// File: adapters/executor_adapter.go
// Package adapters provides glue between internal concurrency and api.Executor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ExecutorAdapter implements the api.Executor interface by delegating to the
// internal concurrency.Pool.

package adapters

import (
	"context"

	"github.com/momentics/hioload-tasks/api"
	"github.com/momentics/hioload-tasks/internal/concurrency"
)

// Ensure compile-time interface compliance.
var _ api.Executor = (*ExecutorAdapter)(nil)

// ExecutorAdapter wraps an internal concurrency.Pool to satisfy the api.Executor contract.
type ExecutorAdapter struct {
	pool *concurrency.Pool
}

// NewExecutorAdapter starts a pool for cfg.
func NewExecutorAdapter(cfg concurrency.Config, opts ...concurrency.Option) (*ExecutorAdapter, error) {
	p, err := concurrency.NewPool(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &ExecutorAdapter{pool: p}, nil
}

// Submit queues fn(arg) without blocking for queue space.
func (ea *ExecutorAdapter) Submit(fn api.TaskFunc, arg any) error {
	return ea.pool.Submit(fn, arg)
}

// NumWorkers returns the number of started workers.
func (ea *ExecutorAdapter) NumWorkers() int {
	return ea.pool.NumWorkers()
}

// Shutdown stops the pool in the given mode.
func (ea *ExecutorAdapter) Shutdown(ctx context.Context, mode api.ShutdownMode) error {
	return ea.pool.Shutdown(ctx, mode)
}

// Stats reports pool counters keyed for the metrics registry.
func (ea *ExecutorAdapter) Stats() map[string]any {
	s := ea.pool.Stats()
	return map[string]any{
		"workers":   s.Workers,
		"active":    s.Active,
		"queued":    s.Queued,
		"capacity":  s.Capacity,
		"submitted": s.Submitted,
		"completed": s.Completed,
		"rejected":  s.Rejected,
		"discarded": s.Discarded,
		"panicked":  s.Panicked,
		"state":     s.State.String(),
	}
}

// AllocatorStats reports descriptor arena counters keyed for the metrics registry.
func (ea *ExecutorAdapter) AllocatorStats() map[string]any {
	s := ea.pool.Allocator().Stats()
	return map[string]any{
		"arenas":        s.Arenas,
		"total":         s.TotalSize,
		"used":          s.UsedSize,
		"free":          s.FreeSize,
		"largest_free":  s.LargestFree,
		"free_blocks":   s.FreeBlocks,
		"fragmentation": s.Fragmentation,
		"alloc_count":   s.AllocCount,
		"free_count":    s.FreeCount,
		"merge_count":   s.MergeCount,
		"grow_count":    s.GrowCount,
	}
}
