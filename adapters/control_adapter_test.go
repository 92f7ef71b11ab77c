package adapters_test

import (
	"context"
	"sync"
	"testing"

	"github.com/momentics/hioload-tasks/adapters"
	"github.com/momentics/hioload-tasks/api"
	"github.com/momentics/hioload-tasks/internal/concurrency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlAdapterBasic(t *testing.T) {
	ctrl := adapters.NewControlAdapter(map[string]any{"workers": 4})
	assert.Equal(t, map[string]any{"workers": 4}, ctrl.GetConfig())

	ctrl.SetMetric("k", 1)
	ctrl.RegisterDebugProbe("answer", func() any { return 42 })
	stats := ctrl.Stats()
	assert.Equal(t, 1, stats["k"])
	assert.Equal(t, 42, stats["debug.answer"])
	assert.Contains(t, stats, "debug.platform.cpus")
	assert.Equal(t, 42, ctrl.DumpState()["answer"])
}

func TestExecutorAdapterReportsStats(t *testing.T) {
	ex, err := adapters.NewExecutorAdapter(concurrency.Config{Workers: 2, QueueCapacity: 16})
	require.NoError(t, err)
	assert.Equal(t, 2, ex.NumWorkers())

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, ex.Submit(func(any) { wg.Done() }, i))
	}
	wg.Wait()

	ctrl := adapters.NewControlAdapter(nil)
	ctrl.RecordMetrics("arena", ex.AllocatorStats())
	require.NoError(t, ex.Shutdown(context.Background(), api.ShutdownGraceful))
	ctrl.RecordMetrics("pool", ex.Stats())

	stats := ctrl.Stats()
	assert.Equal(t, uint64(3), stats["pool.completed"])
	assert.Equal(t, "stopped", stats["pool.state"])
	assert.Equal(t, 1, stats["arena.arenas"])
}
