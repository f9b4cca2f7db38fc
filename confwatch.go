// confwatch.go: Argus-backed hot reload of runtime tunables.
//
// Adapted from the teacher's hot-reload.go (HotConfig/NewHotConfig/
// parseConfig/parsePositiveInt family), retargeted from cache-tuning knobs
// (MaxSize/WindowRatio/CounterBits) to the keyspace engine's runtime
// tunables (maxmemory/maxmemory_policy/maxmemory_samples/lfu_decay_time).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// Tunables is the subset of Config the hot-reload watcher is allowed to
// republish at runtime: spec.md §5 names exactly these four fields as the
// process-wide atomics.
type Tunables struct {
	MaxMemory        uint64
	MaxMemoryPolicy  Policy
	MaxMemorySamples int
	LFUDecayTime     uint32
}

// ConfigWatcher watches a configuration file via Argus and republishes
// Tunables into a running Handle's atomics on change. It never reaches into
// the Handle's keyspace dictionary, preserving the "no internal
// concurrency in the core" invariant spec.md §5 requires.
type ConfigWatcher struct {
	handle  *Handle
	watcher *argus.Watcher
	mu      sync.RWMutex
	current Tunables

	// OnReload, when set, is called after each successful reload.
	OnReload func(old, new Tunables)
}

// ConfigWatcherOptions configures NewConfigWatcher.
type ConfigWatcherOptions struct {
	// ConfigPath is the file to watch. Supports whatever formats Argus'
	// UniversalConfigWatcher supports (JSON, YAML, TOML, HCL, INI,
	// Properties).
	ConfigPath string

	// PollInterval is how often to check for changes. Default: 1s,
	// minimum 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(old, new Tunables)
}

// NewConfigWatcher starts watching opts.ConfigPath and republishing
// tunables into h. The expected file shape mirrors the teacher's:
//
//	embercache:
//	  maxmemory: 134217728
//	  maxmemory_policy: "allkeys-lru"
//	  maxmemory_samples: 5
//	  lfu_decay_time: 1
func NewConfigWatcher(h *Handle, opts ConfigWatcherOptions) (*ConfigWatcher, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	cw := &ConfigWatcher{
		handle:   h,
		OnReload: opts.OnReload,
		current: Tunables{
			MaxMemory:        h.state.maxMem(),
			MaxMemoryPolicy:  h.state.policy(),
			MaxMemorySamples: h.state.samples(),
			LFUDecayTime:     h.state.decayMinutes(),
		},
	}

	argusConfig := argus.Config{PollInterval: opts.PollInterval}
	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, cw.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	cw.watcher = watcher
	return cw, nil
}

// Start begins watching the configuration file for changes.
func (cw *ConfigWatcher) Start() error {
	if cw.watcher.IsRunning() {
		return nil
	}
	return cw.watcher.Start()
}

// Stop stops watching the configuration file.
func (cw *ConfigWatcher) Stop() error {
	return cw.watcher.Stop()
}

// Current returns the most recently applied Tunables (thread-safe).
func (cw *ConfigWatcher) Current() Tunables {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.current
}

func (cw *ConfigWatcher) handleConfigChange(data map[string]interface{}) {
	cw.mu.Lock()
	old := cw.current
	next := cw.parseTunables(data, old)
	cw.current = next
	cw.mu.Unlock()

	cw.handle.state.apply(Config{
		MaxMemory:        next.MaxMemory,
		MaxMemoryPolicy:  next.MaxMemoryPolicy,
		MaxMemorySamples: next.MaxMemorySamples,
		LFUDecayTime:     next.LFUDecayTime,
	})

	if cw.OnReload != nil {
		cw.OnReload(old, next)
	}
}

func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

func parseUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case int:
		if v >= 0 {
			return uint64(v), true
		}
	case float64:
		if v >= 0 {
			return uint64(v), true
		}
	}
	return 0, false
}

func (cw *ConfigWatcher) parseTunables(data map[string]interface{}, fallback Tunables) Tunables {
	next := fallback

	section, ok := data["embercache"].(map[string]interface{})
	if !ok {
		if _, hasMaxMemory := data["maxmemory"]; hasMaxMemory {
			section = data
		} else {
			return next
		}
	}

	if mm, ok := parseUint64(section["maxmemory"]); ok {
		next.MaxMemory = mm
	}
	if spelling, ok := section["maxmemory_policy"].(string); ok {
		if p, ok := ParsePolicy(spelling); ok {
			next.MaxMemoryPolicy = p
		}
	}
	if samples, ok := parsePositiveInt(section["maxmemory_samples"]); ok {
		next.MaxMemorySamples = samples
	}
	if decay, ok := parsePositiveInt(section["lfu_decay_time"]); ok {
		next.LFUDecayTime = uint32(decay)
	}

	return next
}
