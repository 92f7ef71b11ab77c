package control

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers: 8
queueCapacity: 32
descriptorClass: true
shutdownTimeout: 1500ms
logLevel: debug
`), 0o600))

	t.Setenv(EnvQueueCapacity, "64")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 64, cfg.QueueCapacity)
	assert.True(t, cfg.DescriptorClass)
	assert.Equal(t, 1500*time.Millisecond, cfg.ShutdownTimeout)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, "1.5s", cfg.Map()["shutdown_timeout"])

	t.Setenv(EnvShutdownTimeout, "3s")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfigRejectsBadShutdownTimeout(t *testing.T) {
	t.Setenv(EnvShutdownTimeout, "soon")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, EnvShutdownTimeout)

	t.Setenv(EnvShutdownTimeout, "-1s")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "shutdownTimeout")
}

func TestLoadConfigDefaultsAndErrors(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())

	t.Setenv(EnvWorkers, "many")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, EnvWorkers)

	t.Setenv(EnvWorkers, "")
	t.Setenv(EnvArenaSize, "-1")
	_, err = LoadConfig("")
	assert.ErrorContains(t, err, "arenaSize")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigStorePublishFreezes(t *testing.T) {
	cs := NewConfigStore()
	require.NoError(t, cs.SetConfig(map[string]any{"a": 1}))
	require.NoError(t, cs.Publish(map[string]any{"b": 2}))
	assert.ErrorIs(t, cs.SetConfig(map[string]any{"c": 3}), ErrConfigFrozen)

	snap := cs.GetSnapshot()
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, snap)
	snap["a"] = 9
	assert.Equal(t, 1, cs.GetSnapshot()["a"])
}

func TestDebugProbes(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterProbe("ok", func() any { return 42 })
	dp.RegisterProbe("bad", func() any { panic("nope") })
	RegisterPlatformProbes(dp)

	v, ok := dp.Probe("ok")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	_, ok = dp.Probe("missing")
	assert.False(t, ok)

	state := dp.DumpState()
	assert.Equal(t, 42, state["ok"])
	assert.Contains(t, state["bad"], "nope")
	assert.Contains(t, state, "platform.cpus")
}

func TestMetricsRegistry(t *testing.T) {
	mr := NewMetricsRegistry()
	assert.True(t, mr.Updated().IsZero())
	mr.Set("x", 1)
	mr.Record("pool", map[string]any{"completed": uint64(3)})
	snap := mr.GetSnapshot()
	assert.Equal(t, 1, snap["x"])
	assert.Equal(t, uint64(3), snap["pool.completed"])
	assert.False(t, mr.Updated().IsZero())
}
