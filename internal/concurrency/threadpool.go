// File: internal/concurrency/threadpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool runs submitted tasks on a fixed set of workers. Task descriptors are
// allocated from an arena and queued in a Ring under one mutex.

package concurrency

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-tasks/api"
	"github.com/momentics/hioload-tasks/arena"
	"github.com/rs/zerolog"
	"golang.org/x/sys/cpu"
)

// DefaultWorkers is used when the configured worker count is not positive.
const DefaultWorkers = 4

// State is the pool lifecycle. It only moves forward.
type State int32

const (
	StateRunning State = iota
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds pool construction parameters.
type Config struct {
	// Workers to start; <= 0 selects DefaultWorkers.
	Workers int
	// QueueCapacity bounds the queue; 0 makes it growable from DefaultQueueCapacity.
	QueueCapacity int
	// ArenaSize of the descriptor allocator; 0 sizes it for the queue capacity.
	ArenaSize int
	// DescriptorClass serves descriptors from a dedicated arena size class.
	DescriptorClass bool
	// PinWorkers binds each worker to an OS thread and CPU.
	PinWorkers bool
}

// Spawner starts fn on a new thread of execution.
type Spawner func(fn func()) error

func goSpawner(fn func()) error {
	go fn()
	return nil
}

// Option customises a Pool.
type Option func(*Pool)

// WithLogger sets the pool logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pool) { p.log = l.With().Str("component", "pool").Logger() }
}

// WithSpawner replaces the goroutine spawner.
func WithSpawner(s Spawner) Option {
	return func(p *Pool) { p.spawn = s }
}

type poolCounters struct {
	submitted atomic.Uint64
	completed atomic.Uint64
	rejected  atomic.Uint64
	discarded atomic.Uint64
	panicked  atomic.Uint64
}

// Pool is a fixed-size worker pool with graceful and immediate shutdown.
type Pool struct {
	mu        sync.Mutex
	work      *sync.Cond
	state     State
	queue     *Ring[descriptor]
	slots     slotTable
	alloc     *arena.Allocator
	fixed     bool
	active    int
	seq       uint64
	drained   chan struct{}
	isDrained bool
	closing   bool

	wg      sync.WaitGroup
	workers int
	pin     bool
	spawn   Spawner
	log     zerolog.Logger

	_     cpu.CacheLinePad
	stats poolCounters
	_     cpu.CacheLinePad
}

// Ensure compile-time interface compliance.
var _ api.GracefulShutdown = (*Pool)(nil)

// NewPool creates the queue and descriptor allocator and starts the workers.
// It succeeds if at least one worker started.
func NewPool(cfg Config, opts ...Option) (*Pool, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueCapacity < 0 {
		return nil, fmt.Errorf("%w: queue capacity %d", api.ErrInvalidArgument, cfg.QueueCapacity)
	}
	growable := cfg.QueueCapacity == 0
	capacity := cfg.QueueCapacity
	if growable {
		capacity = DefaultQueueCapacity
	}

	p := &Pool{
		queue:   NewRing[descriptor](capacity, growable),
		drained: make(chan struct{}),
		pin:     cfg.PinWorkers,
		fixed:   cfg.DescriptorClass,
		spawn:   goSpawner,
		log:     zerolog.Nop(),
	}
	p.work = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}

	arenaSize := cfg.ArenaSize
	if arenaSize <= 0 {
		arenaSize = capacity * (arena.BlockSizeFor(descriptorSize, arena.DefaultAlignment) + arena.DefaultAlignment)
	}
	acfg := arena.DefaultConfig(arenaSize)
	acfg.Logger = &p.log
	if cfg.DescriptorClass {
		acfg.SizeClasses = []arena.SizeClass{{Size: descriptorSize, Count: capacity}}
	}
	alloc, err := arena.NewWithConfig(acfg)
	if err != nil {
		return nil, fmt.Errorf("%w: descriptor arena: %w", api.ErrMemory, err)
	}
	p.alloc = alloc

	for i := 0; i < cfg.Workers; i++ {
		id := i
		p.wg.Add(1)
		if err := p.spawn(func() { p.worker(id) }); err != nil {
			p.wg.Done()
			p.log.Warn().Err(err).Int("worker", id).Msg("worker start failed")
			break
		}
		p.workers++
	}
	if p.workers == 0 {
		p.abort()
		return nil, fmt.Errorf("%w: 0 of %d workers started", api.ErrThreadFailure, cfg.Workers)
	}
	if p.workers < cfg.Workers {
		p.log.Warn().Int("started", p.workers).Int("requested", cfg.Workers).Msg("pool running degraded")
	}
	p.log.Debug().
		Int("workers", p.workers).
		Int("queue_capacity", capacity).
		Bool("growable", growable).
		Int("arena_size", arenaSize).
		Msg("pool started")
	return p, nil
}

// abort unwinds a pool whose creation failed.
func (p *Pool) abort() {
	p.mu.Lock()
	p.closing = true
	p.state = StateStopped
	p.work.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
	_ = p.alloc.Close()
}

// Submit queues fn(arg) and wakes one worker. It never waits for space.
func (p *Pool) Submit(fn api.TaskFunc, arg any) error {
	if fn == nil {
		return fmt.Errorf("%w: nil task function", api.ErrInvalidArgument)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateRunning {
		p.stats.rejected.Add(1)
		return api.ErrShutdown
	}
	if !p.queue.Growable() && p.queue.IsFull() {
		p.stats.rejected.Add(1)
		return api.ErrQueueFull
	}
	buf, err := p.allocDescriptor()
	if err != nil {
		p.stats.rejected.Add(1)
		return fmt.Errorf("%w: %w", api.ErrMemory, err)
	}
	p.seq++
	slot, gen := p.slots.put(fn, arg)
	d := encodeDescriptor(buf, slot, gen, p.seq)
	if !p.queue.Enqueue(d) {
		p.slots.release(d)
		p.freeDescriptor(d)
		p.stats.rejected.Add(1)
		return api.ErrQueueFull
	}
	p.stats.submitted.Add(1)
	p.work.Signal()
	return nil
}

func (p *Pool) allocDescriptor() ([]byte, error) {
	if p.fixed {
		return p.alloc.AllocFixed(descriptorSize)
	}
	return p.alloc.Alloc(descriptorSize)
}

func (p *Pool) freeDescriptor(d descriptor) {
	var err error
	if p.fixed {
		err = p.alloc.FreeFixed(d)
	} else {
		err = p.alloc.Free(d)
	}
	if err != nil {
		p.log.Error().Err(err).Uint64("seq", d.seq()).Msg("descriptor release failed")
	}
}

// NumWorkers returns the number of started workers.
func (p *Pool) NumWorkers() int {
	return p.workers
}

// State returns the current lifecycle state.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Allocator exposes the descriptor allocator for diagnostics.
func (p *Pool) Allocator() *arena.Allocator {
	return p.alloc
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	Workers   int
	Active    int
	Queued    int
	Capacity  int
	Live      int
	Submitted uint64
	Completed uint64
	Rejected  uint64
	Discarded uint64
	Panicked  uint64
	State     State
}

// Stats returns current pool counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	s := PoolStats{
		Workers:  p.workers,
		Active:   p.active,
		Queued:   p.queue.Len(),
		Capacity: p.queue.Cap(),
		Live:     p.slots.live(),
		State:    p.state,
	}
	p.mu.Unlock()
	s.Submitted = p.stats.submitted.Load()
	s.Completed = p.stats.completed.Load()
	s.Rejected = p.stats.rejected.Load()
	s.Discarded = p.stats.discarded.Load()
	s.Panicked = p.stats.panicked.Load()
	return s
}
