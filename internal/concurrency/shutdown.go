// File: internal/concurrency/shutdown.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"context"
	"fmt"

	"github.com/momentics/hioload-tasks/api"
)

// Shutdown stops the pool.
//
// Graceful runs every queued task before the workers exit; if ctx ends
// first the pool is stopped as in Immediate and ctx's error is returned.
// Immediate lets running tasks finish and releases queued descriptors
// without calling them. A second call returns api.ErrShutdown.
func (p *Pool) Shutdown(ctx context.Context, mode api.ShutdownMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: shutdown mode %d", api.ErrInvalidArgument, int(mode))
	}
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return api.ErrShutdown
	}
	p.closing = true

	var err error
	if mode == api.ShutdownGraceful {
		p.state = StateDraining
		p.checkDrainedLocked()
		p.work.Broadcast()
		p.mu.Unlock()

		select {
		case <-p.drained:
		case <-ctx.Done():
			err = fmt.Errorf("graceful shutdown interrupted: %w", ctx.Err())
			p.log.Warn().Err(ctx.Err()).Msg("graceful shutdown escalated to immediate")
		}
		p.mu.Lock()
	}
	p.state = StateStopped
	p.work.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	discarded := 0
	for {
		d, ok := p.queue.Dequeue()
		if !ok {
			break
		}
		p.slots.release(d)
		p.freeDescriptor(d)
		discarded++
	}
	p.mu.Unlock()
	p.stats.discarded.Add(uint64(discarded))

	if cerr := p.alloc.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("descriptor arena: %w", cerr)
	}
	p.log.Info().
		Stringer("mode", mode).
		Int("discarded", discarded).
		Uint64("completed", p.stats.completed.Load()).
		Msg("pool shut down")
	return err
}
