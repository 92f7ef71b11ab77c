package facade_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-tasks/api"
	"github.com/momentics/hioload-tasks/control"
	"github.com/momentics/hioload-tasks/facade"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineLifecycle(t *testing.T) {
	e := facade.Create(0, 0)
	require.NotNil(t, e)
	var runner facade.TaskEngine = e
	assert.Equal(t, 4, runner.NumWorkers())
	assert.NotEmpty(t, e.ID())

	var sum atomic.Int64
	for i := 1; i <= 100; i++ {
		require.Equal(t, api.StatusSuccess, e.Submit(func(arg any) { sum.Add(int64(arg.(int))) }, i))
	}
	assert.Equal(t, api.StatusInvalid, e.Submit(nil, nil))

	require.Equal(t, api.StatusSuccess, e.Shutdown(api.ShutdownGraceful))
	assert.Equal(t, int64(5050), sum.Load())

	assert.Equal(t, api.StatusShutdown, e.Shutdown(api.ShutdownImmediate))
	assert.Equal(t, api.StatusShutdown, e.Submit(func(any) {}, nil))

	stats := e.Control().Stats()
	assert.Equal(t, uint64(100), stats["pool.completed"])
	assert.Equal(t, e.ID(), stats["engine.id"])
	assert.Contains(t, stats, "debug.allocator")
}

func TestEngineQueueFullStatus(t *testing.T) {
	e := facade.Create(1, 1)
	require.NotNil(t, e)

	started := make(chan struct{})
	release := make(chan struct{})
	require.Equal(t, api.StatusSuccess, e.Submit(func(any) {
		close(started)
		<-release
	}, nil))
	<-started
	require.Equal(t, api.StatusSuccess, e.Submit(func(any) {}, nil))
	assert.Equal(t, api.StatusQueueFull, e.Submit(func(any) {}, nil))

	close(release)
	assert.Equal(t, api.StatusSuccess, e.Shutdown(api.ShutdownGraceful))
}

func TestEngineShutdownTimeoutDiscards(t *testing.T) {
	cfg := facade.DefaultConfig()
	cfg.Workers = 1
	cfg.ShutdownTimeout = 10 * time.Millisecond
	e, err := facade.New(cfg)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	started := make(chan struct{})
	require.Equal(t, api.StatusSuccess, e.Submit(func(any) {
		defer wg.Done()
		close(started)
		time.Sleep(50 * time.Millisecond)
	}, nil))
	<-started
	require.Equal(t, api.StatusSuccess, e.Submit(func(any) { t.Error("discarded task ran") }, nil))

	assert.Equal(t, api.StatusSuccess, e.Shutdown(api.ShutdownGraceful))
	wg.Wait()
	assert.Equal(t, uint64(1), e.Control().Stats()["pool.discarded"])
}

func TestEngineInvalidInputs(t *testing.T) {
	var nilEngine *facade.Engine
	assert.Equal(t, api.StatusInvalid, nilEngine.Submit(func(any) {}, nil))
	assert.Equal(t, api.StatusInvalid, nilEngine.Shutdown(api.ShutdownGraceful))
	assert.Nil(t, facade.Create(2, -1))

	_, err := facade.New(&facade.Config{QueueCapacity: -5})
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.StatusInvalid, apiErr.Code)

	e := facade.Create(1, 4)
	require.NotNil(t, e)
	assert.Equal(t, api.StatusInvalid, e.Shutdown(api.ShutdownMode(3)))
	assert.Equal(t, api.StatusSuccess, e.Shutdown(api.ShutdownImmediate))
}

func TestEngineFromSettings(t *testing.T) {
	t.Setenv(control.EnvWorkers, "3")
	t.Setenv(control.EnvQueueCapacity, "8")
	t.Setenv(control.EnvShutdownTimeout, "250ms")
	s, err := control.LoadConfig("")
	require.NoError(t, err)

	log := zerolog.New(zerolog.NewTestWriter(t)).Level(s.Level())
	cfg := facade.FromSettings(s, &log)
	assert.Equal(t, 250*time.Millisecond, cfg.ShutdownTimeout)

	e, err := facade.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, e.NumWorkers())
	assert.Equal(t, 8, e.Control().GetConfig()["queue_capacity"])
	assert.Equal(t, "250ms", e.Control().GetConfig()["shutdown_timeout"])

	state := e.Debug().DumpState()
	assert.Contains(t, state, "pool")
	assert.Equal(t, api.StatusSuccess, e.Shutdown(api.ShutdownGraceful))
}
