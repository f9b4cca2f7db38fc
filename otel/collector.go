// Package otel provides OpenTelemetry integration for embercache metrics.
//
// This package implements the embercache.MetricsCollector interface using
// OpenTelemetry, enabling enterprise-grade observability with automatic
// percentile calculation (p50, p95, p99) and multi-backend support
// (Prometheus, Jaeger, DataDog, Grafana).
//
// # Features
//
//   - Automatic percentile calculation via OTEL Histograms (p50, p95, p99, p99.9)
//   - Hit/miss ratio tracking with counters
//   - Eviction and expiration monitoring
//   - Thread-safe, lock-free implementation
//   - Compatible with any OTEL backend (Prometheus, Jaeger, DataDog, etc.)
//   - Optional: separate module, no impact on core embercache performance
//
// # Usage
//
//	import (
//	    "github.com/agilira/embercache"
//	    embercacheotel "github.com/agilira/embercache/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//
//	collector, _ := embercacheotel.NewOTelMetricsCollector(provider)
//
//	h := embercache.NewHandle(embercache.Config{
//	    MaxMemory:        64 << 20,
//	    MetricsCollector: collector,
//	})
//
// # Metrics Exposed
//
//   - embercache_get_latency_ns: Histogram of Get operation latencies in nanoseconds
//   - embercache_set_latency_ns: Histogram of Set-family operation latencies in nanoseconds
//   - embercache_delete_latency_ns: Histogram of Del operation latencies in nanoseconds
//   - embercache_get_hits_total: Counter of cache hits
//   - embercache_get_misses_total: Counter of cache misses
//   - embercache_evictions_total: Counter of memory-governor evictions
//   - embercache_expirations_total: Counter of TTL-based expirations
//
// All metrics are automatically aggregated by the OTEL SDK and can be
// exported to any OTEL-compatible backend.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/agilira/embercache"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements embercache.MetricsCollector using
// OpenTelemetry.
//
// Thread-safety: safe for concurrent use by multiple goroutines; the
// underlying OTEL instruments are thread-safe and lock-free.
type OTelMetricsCollector struct {
	getLatency    metric.Int64Histogram
	setLatency    metric.Int64Histogram
	deleteLatency metric.Int64Histogram
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	evictions     metric.Int64Counter
	expirations   metric.Int64Counter
}

// Options configures OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/embercache".
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing metrics
// from multiple handles or integrating with existing OTEL instrumentation.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates a new OpenTelemetry-backed
// embercache.MetricsCollector. provider must not be nil.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/embercache"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	collector := &OTelMetricsCollector{}

	var err error
	collector.getLatency, err = meter.Int64Histogram(
		"embercache_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.setLatency, err = meter.Int64Histogram(
		"embercache_set_latency_ns",
		metric.WithDescription("Latency of Set-family operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.deleteLatency, err = meter.Int64Histogram(
		"embercache_delete_latency_ns",
		metric.WithDescription("Latency of Del operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.hits, err = meter.Int64Counter(
		"embercache_get_hits_total",
		metric.WithDescription("Total number of keyspace hits"),
	)
	if err != nil {
		return nil, err
	}

	collector.misses, err = meter.Int64Counter(
		"embercache_get_misses_total",
		metric.WithDescription("Total number of keyspace misses"),
	)
	if err != nil {
		return nil, err
	}

	collector.evictions, err = meter.Int64Counter(
		"embercache_evictions_total",
		metric.WithDescription("Total number of memory-governor evictions"),
	)
	if err != nil {
		return nil, err
	}

	collector.expirations, err = meter.Int64Counter(
		"embercache_expirations_total",
		metric.WithDescription("Total number of TTL-based expirations"),
	)
	if err != nil {
		return nil, err
	}

	return collector, nil
}

// RecordGet records a Get operation's latency and hit/miss outcome.
func (c *OTelMetricsCollector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordSet records a Set-family mutation's latency.
func (c *OTelMetricsCollector) RecordSet(latencyNs int64) {
	c.setLatency.Record(context.Background(), latencyNs)
}

// RecordDelete records a Del operation's latency.
func (c *OTelMetricsCollector) RecordDelete(latencyNs int64) {
	c.deleteLatency.Record(context.Background(), latencyNs)
}

// RecordEviction increments the evictions counter.
func (c *OTelMetricsCollector) RecordEviction() {
	c.evictions.Add(context.Background(), 1)
}

// RecordExpiration increments the expirations counter.
func (c *OTelMetricsCollector) RecordExpiration() {
	c.expirations.Add(context.Background(), 1)
}

// Compile-time interface check.
var _ embercache.MetricsCollector = (*OTelMetricsCollector)(nil)
