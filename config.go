// config.go: configuration for embercache handles.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

import "github.com/agilira/go-timecache"

// Config holds the tunables spec.md §6 lists under handle lifecycle /
// set-config: maxmemory, maxmemory_policy, maxmemory_samples, and
// lfu_decay_time, plus the ambient-stack collaborators (Logger,
// TimeProvider, MetricsCollector) the teacher's Config carried.
type Config struct {
	// MaxMemory is the byte budget the memory governor enforces. 0 means
	// unbounded (spec.md §3).
	MaxMemory uint64

	// MaxMemoryPolicy selects the eviction base/scope/modifier bits.
	// Default: PolicyLRU | PolicyAllKeys.
	MaxMemoryPolicy Policy

	// MaxMemorySamples is the eviction-pool population round size.
	// Default: 5.
	MaxMemorySamples int

	// LFUDecayTime is the number of minutes per LFU counter decrement.
	// Default: 1.
	LFUDecayTime uint32

	// Logger is used for diagnostic logging. Default: NoOpLogger.
	Logger Logger

	// TimeProvider supplies the LRU clock and LFU decay clock. Default:
	// a go-timecache-backed system clock.
	TimeProvider TimeProvider

	// MetricsCollector receives per-operation timing and outcome events.
	// Default: NoOpMetricsCollector.
	MetricsCollector MetricsCollector

	// OnEvict, when set, is called for every key the memory governor
	// evicts. Must be fast and non-blocking.
	OnEvict func(key string)

	// OnExpire, when set, is called for every key the expiration engine
	// deletes, lazily or actively. Must be fast and non-blocking.
	OnExpire func(key string)
}

// Default tunables, mirrored into DefaultConfig.
const (
	DefaultMaxMemorySamples = 5
	DefaultLFUDecayTime     = 1
)

// Validate normalizes cfg in place, applying defaults for any zero-valued
// field, matching the teacher's Config.Validate contract (normalize, don't
// reject).
func (c *Config) Validate() error {
	if c.MaxMemoryPolicy.Base() == 0 {
		c.MaxMemoryPolicy = PolicyLRU | PolicyAllKeys
	}
	if c.MaxMemorySamples <= 0 {
		c.MaxMemorySamples = DefaultMaxMemorySamples
	}
	if c.LFUDecayTime == 0 {
		c.LFUDecayTime = DefaultLFUDecayTime
	}
	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults: unbounded memory,
// allkeys-lru eviction, and the no-op ambient collaborators.
func DefaultConfig() Config {
	cfg := Config{
		MaxMemory:        0,
		MaxMemoryPolicy:  PolicyLRU | PolicyAllKeys,
		MaxMemorySamples: DefaultMaxMemorySamples,
		LFUDecayTime:     DefaultLFUDecayTime,
		Logger:           NoOpLogger{},
		TimeProvider:     &systemTimeProvider{},
		MetricsCollector: NoOpMetricsCollector{},
	}
	return cfg
}

// systemTimeProvider is the default TimeProvider, backed by go-timecache
// for low-overhead repeated reads (the same rationale the teacher's
// systemTimeProvider cites).
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
