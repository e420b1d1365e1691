package shared

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestAppTelemetry_RecordsFetches(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	tel, err := NewAppTelemetryWithProvider(mp)
	if err != nil {
		t.Fatalf("NewAppTelemetryWithProvider: %v", err)
	}

	ctx := context.Background()
	tel.RecordFetch(ctx, "markets", outbound.FetchStatusSuccess, 120*time.Millisecond)
	tel.RecordFetch(ctx, "markets", outbound.FetchStatusError, 80*time.Millisecond)
	tel.RecordStaleResponse(ctx, "markets")

	metrics := collect(t, reader)

	if got := sumOf(t, metrics["market.fetches.total"]); got != 2 {
		t.Errorf("expected 2 fetches, got %d", got)
	}
	if got := sumOf(t, metrics["market.stale_responses.total"]); got != 1 {
		t.Errorf("expected 1 stale response, got %d", got)
	}

	hist, ok := metrics["market.fetch.duration"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected histogram, got %T", metrics["market.fetch.duration"].Data)
	}
	if len(hist.DataPoints) != 2 {
		t.Errorf("expected one data point per status, got %d", len(hist.DataPoints))
	}
}
