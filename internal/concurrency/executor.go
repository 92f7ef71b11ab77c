// File: internal/concurrency/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker loop: WAIT for work or a lifecycle change, RUN one task outside the
// lock, RECYCLE its descriptor under the lock.

package concurrency

// worker is the main loop of a single pool worker.
func (p *Pool) worker(id int) {
	defer p.wg.Done()
	if p.pin {
		if err := PinCurrentThread(id); err != nil {
			p.log.Debug().Err(err).Int("worker", id).Msg("pin failed")
		}
	}
	p.log.Debug().Int("worker", id).Msg("worker started")

	p.mu.Lock()
	for {
		for p.state == StateRunning && p.queue.IsEmpty() {
			p.work.Wait()
		}
		if p.state == StateStopped || p.queue.IsEmpty() {
			break
		}
		d, _ := p.queue.Dequeue()
		t, ok := p.slots.get(d)
		p.active++
		p.mu.Unlock()

		if ok {
			p.execute(t)
		} else {
			p.log.Error().Uint64("seq", d.seq()).Msg("stale task descriptor")
		}

		p.mu.Lock()
		p.active--
		p.slots.release(d)
		p.freeDescriptor(d)
		p.checkDrainedLocked()
	}
	p.mu.Unlock()
	p.log.Debug().Int("worker", id).Msg("worker exited")
}

// execute runs the task, recovering from panics to keep the worker alive.
func (p *Pool) execute(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.panicked.Add(1)
			p.log.Error().Interface("panic", r).Msg("task panicked")
		}
		p.stats.completed.Add(1)
	}()
	t.fn(t.arg)
}

// checkDrainedLocked closes the drained rendezvous once a draining pool has
// neither queued nor running tasks.
func (p *Pool) checkDrainedLocked() {
	if p.state == StateDraining && !p.isDrained && p.queue.IsEmpty() && p.active == 0 {
		p.isDrained = true
		close(p.drained)
	}
}
