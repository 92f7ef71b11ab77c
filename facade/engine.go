// File: facade/engine.go
// Unified facade layer for hioload-tasks.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Engine composes the worker pool, its task queue and the descriptor arena
// behind create/submit/shutdown calls that report numeric status codes.
// A read-only control surface exposes configuration, metrics and probes.

package facade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/momentics/hioload-tasks/adapters"
	"github.com/momentics/hioload-tasks/api"
	"github.com/momentics/hioload-tasks/control"
	"github.com/momentics/hioload-tasks/internal/concurrency"
	"github.com/momentics/hioload-tasks/tracing"
	"github.com/rs/zerolog"
)

// Config holds parameters immutable per engine.
type Config struct {
	Workers         int           // Number of worker goroutines; <= 0 selects 4
	QueueCapacity   int           // Bounded queue size; 0 means unbounded
	ArenaSize       int           // Descriptor arena size; 0 derives it from the queue
	DescriptorClass bool          // Serve descriptors from a fixed size class
	PinWorkers      bool          // Pin workers to OS threads and CPUs
	ShutdownTimeout time.Duration // Bound on graceful shutdown; 0 waits indefinitely
	Logger          *zerolog.Logger
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Workers: concurrency.DefaultWorkers,
	}
}

// FromSettings maps loaded settings onto an engine configuration.
func FromSettings(s *control.Config, log *zerolog.Logger) *Config {
	return &Config{
		Workers:         s.Workers,
		QueueCapacity:   s.QueueCapacity,
		ArenaSize:       s.ArenaSize,
		DescriptorClass: s.DescriptorClass,
		PinWorkers:      s.PinWorkers,
		ShutdownTimeout: s.ShutdownTimeout,
		Logger:          log,
	}
}

func (c *Config) snapshot() map[string]any {
	return map[string]any{
		"workers":          c.Workers,
		"queue_capacity":   c.QueueCapacity,
		"arena_size":       c.ArenaSize,
		"descriptor_class": c.DescriptorClass,
		"pin_workers":      c.PinWorkers,
		"shutdown_timeout": c.ShutdownTimeout.String(),
	}
}

// Engine is the task engine facade.
type Engine struct {
	id       string
	config   Config
	executor *adapters.ExecutorAdapter
	control  *adapters.ControlAdapter
	log      zerolog.Logger
}

// TaskEngine is the status-code surface of an engine.
type TaskEngine interface {
	Submit(fn api.TaskFunc, arg any) api.Status
	Shutdown(mode api.ShutdownMode) api.Status
	ShutdownContext(ctx context.Context, mode api.ShutdownMode) error
	NumWorkers() int
}

var _ TaskEngine = (*Engine)(nil)

// Create starts an engine with threadCount workers and the given queue
// capacity (0 for unbounded). It returns nil if the engine cannot start.
func Create(threadCount, queueCapacity int) *Engine {
	cfg := DefaultConfig()
	cfg.Workers = threadCount
	cfg.QueueCapacity = queueCapacity
	e, err := New(cfg)
	if err != nil {
		return nil
	}
	return e
}

// New constructs an engine. Failures are reported as *api.Error carrying
// the status code.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	id := uuid.NewString()
	base := zerolog.Nop()
	if cfg.Logger != nil {
		base = *cfg.Logger
	}
	log := base.With().Str("component", "engine").Str("engine_id", id).Logger()

	if cfg.QueueCapacity < 0 || cfg.ArenaSize < 0 {
		return nil, api.NewError(api.StatusInvalid, "engine create", api.ErrInvalidArgument).
			WithContext("queue_capacity", cfg.QueueCapacity).
			WithContext("arena_size", cfg.ArenaSize)
	}

	_, span := tracing.StartSpan(context.Background(), "engine.create")
	span.SetString(map[string]string{"engine_id": id})
	span.SetInt(map[string]int{"workers": cfg.Workers, "queue_capacity": cfg.QueueCapacity})

	ex, err := adapters.NewExecutorAdapter(concurrency.Config{
		Workers:         cfg.Workers,
		QueueCapacity:   cfg.QueueCapacity,
		ArenaSize:       cfg.ArenaSize,
		DescriptorClass: cfg.DescriptorClass,
		PinWorkers:      cfg.PinWorkers,
	}, concurrency.WithLogger(base.With().Str("engine_id", id).Logger()))
	tracing.EndSpan(span, err)
	if err != nil {
		log.Error().Err(err).Msg("engine create failed")
		return nil, api.NewError(api.StatusOf(err), "engine create", err).WithContext("engine_id", id)
	}

	e := &Engine{
		id:       id,
		config:   *cfg,
		executor: ex,
		log:      log,
	}
	e.control = adapters.NewControlAdapter(cfg.snapshot())
	e.control.SetMetric("engine.id", id)
	e.control.RegisterDebugProbe("allocator", func() any { return ex.AllocatorStats() })
	e.control.RegisterDebugProbe("pool", func() any { return ex.Stats() })

	log.Info().Int("workers", ex.NumWorkers()).Int("queue_capacity", cfg.QueueCapacity).Msg("engine started")
	return e, nil
}

// ID returns the engine instance id.
func (e *Engine) ID() string { return e.id }

// NumWorkers returns the number of started workers.
func (e *Engine) NumWorkers() int { return e.executor.NumWorkers() }

// Submit queues fn(arg). It never blocks for queue space.
func (e *Engine) Submit(fn api.TaskFunc, arg any) api.Status {
	if e == nil {
		return api.StatusInvalid
	}
	return api.StatusOf(e.executor.Submit(fn, arg))
}

// Shutdown stops the engine in mode. When ShutdownTimeout elapses during a
// graceful shutdown the remaining queued tasks are discarded and the
// teardown still completes with StatusSuccess.
func (e *Engine) Shutdown(mode api.ShutdownMode) api.Status {
	if e == nil {
		return api.StatusInvalid
	}
	ctx := context.Background()
	if e.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.ShutdownTimeout)
		defer cancel()
	}
	err := e.ShutdownContext(ctx, mode)
	if errorsIsContext(err) {
		return api.StatusSuccess
	}
	return api.StatusOf(err)
}

// ShutdownContext is Shutdown bounded by ctx.
func (e *Engine) ShutdownContext(ctx context.Context, mode api.ShutdownMode) error {
	ctx, span := tracing.StartSpan(ctx, "engine.shutdown")
	span.SetString(map[string]string{"engine_id": e.id, "mode": mode.String()})

	err := e.executor.Shutdown(ctx, mode)
	tracing.EndSpan(span, err)

	e.control.RecordMetrics("pool", e.executor.Stats())
	switch {
	case err == nil:
		e.log.Info().Stringer("mode", mode).Msg("engine stopped")
	case errorsIsContext(err):
		e.log.Warn().Err(err).Msg("engine stopped after shutdown deadline")
	default:
		e.log.Debug().Err(err).Msg("engine shutdown rejected")
	}
	return err
}

// Control returns the read-only diagnostics surface.
func (e *Engine) Control() api.Control { return e.control }

// Debug returns the probe registry.
func (e *Engine) Debug() api.Debug { return e.control }

func errorsIsContext(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
