// interfaces.go: public collaborator interfaces.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embercache

// Logger defines a minimal structured logging interface, matching the
// teacher's zero-overhead shape: implementations should avoid allocation on
// the hot path and treat keyvals as alternating key/value pairs.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a Logger that does nothing. Used as the default so callers
// never need a nil check.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}
func (NoOpLogger) Info(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Warn(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider supplies the current time in nanoseconds since the epoch.
// Injectable so tests can control the LRU clock and LFU decay without
// sleeping.
type TimeProvider interface {
	Now() int64
}

// MetricsCollector receives per-operation timing and outcome events. It is
// reconstructed from the call sites the teacher's cache.go/config.go/doc.go
// referenced (RecordGet/RecordSet/RecordDelete/RecordEviction); its
// defining file was not present in the retrieved example tree (see
// DESIGN.md).
type MetricsCollector interface {
	// RecordGet is called after every Get, with the operation's latency
	// and whether it was a hit.
	RecordGet(latencyNanos int64, hit bool)
	// RecordSet is called after every successful Set.
	RecordSet(latencyNanos int64)
	// RecordDelete is called after every Del.
	RecordDelete(latencyNanos int64)
	// RecordEviction is called once per key the memory governor evicts.
	RecordEviction()
	// RecordExpiration is called once per key the expiration engine
	// deletes, lazily or actively.
	RecordExpiration()
}

// NoOpMetricsCollector is a MetricsCollector that does nothing. Used as the
// default so MetricsCollector is never nil.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordGet(latencyNanos int64, hit bool) {}
func (NoOpMetricsCollector) RecordSet(latencyNanos int64)           {}
func (NoOpMetricsCollector) RecordDelete(latencyNanos int64)        {}
func (NoOpMetricsCollector) RecordEviction()                        {}
func (NoOpMetricsCollector) RecordExpiration()                      {}
