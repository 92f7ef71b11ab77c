// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Configuration snapshot store. The engine publishes its effective
// configuration once at creation; the store is read-only afterwards.

package control

import (
	"errors"
	"maps"
	"sync"
)

// ErrConfigFrozen is returned when a frozen store is written.
var ErrConfigFrozen = errors.New("control: configuration is frozen")

// ConfigStore is a key/value map with snapshot reads.
type ConfigStore struct {
	mu     sync.RWMutex
	config map[string]any
	frozen bool
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config: make(map[string]any),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return maps.Clone(cs.config)
}

// SetConfig merges values into the store.
func (cs *ConfigStore) SetConfig(values map[string]any) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.frozen {
		return ErrConfigFrozen
	}
	maps.Copy(cs.config, values)
	return nil
}

// Publish merges values and freezes the store.
func (cs *ConfigStore) Publish(values map[string]any) error {
	if err := cs.SetConfig(values); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.frozen = true
	cs.mu.Unlock()
	return nil
}
