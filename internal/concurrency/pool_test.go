package concurrency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-tasks/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedSpawner holds every worker until gate is closed.
func gatedSpawner(gate <-chan struct{}) Spawner {
	return func(fn func()) error {
		go func() {
			<-gate
			fn()
		}()
		return nil
	}
}

func TestPoolBoundedQueueRejectsThenRunsQueued(t *testing.T) {
	gate := make(chan struct{})
	p, err := NewPool(Config{Workers: 4, QueueCapacity: 2}, WithSpawner(gatedSpawner(gate)))
	require.NoError(t, err)

	var ran atomic.Int32
	task := func(any) {
		time.Sleep(5 * time.Millisecond)
		ran.Add(1)
	}
	require.NoError(t, p.Submit(task, nil))
	require.NoError(t, p.Submit(task, nil))
	assert.ErrorIs(t, p.Submit(task, nil), api.ErrQueueFull)

	close(gate)
	require.NoError(t, p.Shutdown(context.Background(), api.ShutdownGraceful))
	assert.Equal(t, int32(2), ran.Load())

	s := p.Stats()
	assert.Equal(t, uint64(2), s.Completed)
	assert.Equal(t, uint64(1), s.Rejected)
	assert.Equal(t, StateStopped, s.State)
}

func TestPoolGracefulRunsEveryTaskOnce(t *testing.T) {
	gate := make(chan struct{})
	p, err := NewPool(Config{Workers: 4}, WithSpawner(gatedSpawner(gate)))
	require.NoError(t, err)

	const n = 3000
	seen := make([]atomic.Int32, n)
	args := make([]int, n)
	for i := range args {
		args[i] = i
		arg := &args[i]
		require.NoError(t, p.Submit(func(a any) {
			assert.Same(t, arg, a)
			seen[*a.(*int)].Add(1)
		}, arg))
	}
	assert.Equal(t, 4*DefaultQueueCapacity, p.Stats().Capacity)
	close(gate)
	require.NoError(t, p.Shutdown(context.Background(), api.ShutdownGraceful))
	for i := range seen {
		require.Equal(t, int32(1), seen[i].Load(), "task %d", i)
	}
}

func TestPoolImmediateDiscardsQueued(t *testing.T) {
	p, err := NewPool(Config{Workers: 1, QueueCapacity: 16})
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	var ran atomic.Int32
	require.NoError(t, p.Submit(func(any) {
		close(started)
		<-release
		ran.Add(1)
	}, nil))
	<-started
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(func(any) { ran.Add(1) }, nil))
	}

	done := make(chan error, 1)
	go func() { done <- p.Shutdown(context.Background(), api.ShutdownImmediate) }()
	require.Eventually(t, func() bool { return p.State() == StateStopped }, time.Second, time.Millisecond)
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, int32(1), ran.Load())
	s := p.Stats()
	assert.Equal(t, uint64(10), s.Discarded)
	assert.Zero(t, s.Live)
}

func TestPoolGracefulEscalatesOnContext(t *testing.T) {
	p, err := NewPool(Config{Workers: 1})
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, p.Submit(func(any) {
		close(started)
		<-release
	}, nil))
	<-started
	require.NoError(t, p.Submit(func(any) { t.Error("queued task ran after escalation") }, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	time.AfterFunc(100*time.Millisecond, func() { close(release) })

	err = p.Shutdown(ctx, api.ShutdownGraceful)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, uint64(1), p.Stats().Discarded)
}

func TestPoolRejectsAfterShutdown(t *testing.T) {
	p, err := NewPool(Config{Workers: 2, QueueCapacity: 4})
	require.NoError(t, err)

	assert.ErrorIs(t, p.Submit(nil, nil), api.ErrInvalidArgument)
	assert.ErrorIs(t, p.Shutdown(context.Background(), api.ShutdownMode(7)), api.ErrInvalidArgument)

	require.NoError(t, p.Shutdown(context.Background(), api.ShutdownImmediate))
	assert.ErrorIs(t, p.Shutdown(context.Background(), api.ShutdownGraceful), api.ErrShutdown)
	assert.ErrorIs(t, p.Submit(func(any) {}, nil), api.ErrShutdown)
}

func TestPoolWorkerStartFailures(t *testing.T) {
	failAll := func(func()) error { return errors.New("no threads") }
	_, err := NewPool(Config{Workers: 3}, WithSpawner(failAll))
	assert.ErrorIs(t, err, api.ErrThreadFailure)

	var calls int
	failAfterTwo := func(fn func()) error {
		calls++
		if calls > 2 {
			return errors.New("no threads")
		}
		go fn()
		return nil
	}
	p, err := NewPool(Config{Workers: 4}, WithSpawner(failAfterTwo))
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumWorkers())

	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(func(any) { wg.Done() }, nil))
	}
	wg.Wait()
	require.NoError(t, p.Shutdown(context.Background(), api.ShutdownGraceful))
}

func TestPoolSurvivesPanics(t *testing.T) {
	p, err := NewPool(Config{Workers: 2})
	require.NoError(t, err)

	var ok atomic.Int32
	require.NoError(t, p.Submit(func(any) { panic("boom") }, nil))
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(func(any) { ok.Add(1) }, nil))
	}
	require.NoError(t, p.Shutdown(context.Background(), api.ShutdownGraceful))
	assert.Equal(t, int32(5), ok.Load())
	assert.Equal(t, uint64(1), p.Stats().Panicked)
}

func TestPoolDescriptorClassRecycles(t *testing.T) {
	p, err := NewPool(Config{Workers: 2, QueueCapacity: 8, DescriptorClass: true, PinWorkers: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for round := 0; round < 20; round++ {
		wg.Add(8)
		for i := 0; i < 8; i++ {
			require.NoError(t, p.Submit(func(any) { wg.Done() }, nil))
		}
		wg.Wait()
		require.Eventually(t, func() bool { return p.Stats().Active == 0 }, time.Second, time.Millisecond)
	}

	alloc := p.Allocator()
	assert.True(t, alloc.Validate())
	classes := alloc.SizeClasses()
	require.Len(t, classes, 1)
	assert.Zero(t, classes[0].Used)
	assert.Zero(t, classes[0].Fallbacks)

	require.NoError(t, p.Shutdown(context.Background(), api.ShutdownGraceful))
}
