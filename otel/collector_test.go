package otel

import (
	"context"
	"testing"

	"github.com/agilira/embercache"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestOTelMetricsCollector_Interface(t *testing.T) {
	var _ embercache.MetricsCollector = (*OTelMetricsCollector)(nil)
}

func TestNewOTelMetricsCollector(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Errorf("failed to shutdown provider: %v", err)
		}
	}()

	collector, err := NewOTelMetricsCollector(provider)
	if err != nil {
		t.Fatalf("NewOTelMetricsCollector() error = %v", err)
	}
	if collector == nil {
		t.Fatal("NewOTelMetricsCollector() returned nil")
	}
}

func TestNewOTelMetricsCollector_NilProvider(t *testing.T) {
	collector, err := NewOTelMetricsCollector(nil)
	if err == nil {
		t.Fatal("NewOTelMetricsCollector(nil) should return an error")
	}
	if collector != nil {
		t.Fatal("NewOTelMetricsCollector(nil) should return a nil collector")
	}
}

func TestOTelMetricsCollector_RecordGet(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	collector, err := NewOTelMetricsCollector(provider)
	if err != nil {
		t.Fatalf("NewOTelMetricsCollector() error = %v", err)
	}

	collector.RecordGet(1000, true)
	collector.RecordGet(2000, false)
	collector.RecordGet(1500, true)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	if len(rm.ScopeMetrics) == 0 {
		t.Fatal("no scope metrics recorded")
	}

	var foundLatency, foundHits, foundMisses bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "embercache_get_latency_ns":
				foundLatency = true
				hist, ok := m.Data.(metricdata.Histogram[int64])
				if !ok {
					t.Errorf("expected Histogram[int64], got %T", m.Data)
					continue
				}
				var total uint64
				for _, dp := range hist.DataPoints {
					total += dp.Count
				}
				if total != 3 {
					t.Errorf("expected 3 operations, got %d", total)
				}
			case "embercache_get_hits_total":
				foundHits = true
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok || len(sum.DataPoints) == 0 {
					t.Errorf("expected non-empty Sum[int64], got %T", m.Data)
					continue
				}
				if sum.DataPoints[0].Value != 2 {
					t.Errorf("expected 2 hits, got %d", sum.DataPoints[0].Value)
				}
			case "embercache_get_misses_total":
				foundMisses = true
				sum, ok := m.Data.(metricdata.Sum[int64])
				if !ok || len(sum.DataPoints) == 0 {
					t.Errorf("expected non-empty Sum[int64], got %T", m.Data)
					continue
				}
				if sum.DataPoints[0].Value != 1 {
					t.Errorf("expected 1 miss, got %d", sum.DataPoints[0].Value)
				}
			}
		}
	}
	if !foundLatency || !foundHits || !foundMisses {
		t.Errorf("missing metrics: latency=%v hits=%v misses=%v", foundLatency, foundHits, foundMisses)
	}
}

func TestOTelMetricsCollector_RecordEvictionAndExpiration(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	collector, err := NewOTelMetricsCollector(provider)
	if err != nil {
		t.Fatalf("NewOTelMetricsCollector() error = %v", err)
	}

	collector.RecordEviction()
	collector.RecordEviction()
	collector.RecordExpiration()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	var evictions, expirations int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "embercache_evictions_total":
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok && len(sum.DataPoints) > 0 {
					evictions = sum.DataPoints[0].Value
				}
			case "embercache_expirations_total":
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok && len(sum.DataPoints) > 0 {
					expirations = sum.DataPoints[0].Value
				}
			}
		}
	}
	if evictions != 2 {
		t.Errorf("expected 2 evictions, got %d", evictions)
	}
	if expirations != 1 {
		t.Errorf("expected 1 expiration, got %d", expirations)
	}
}
