package telemetry

import (
	"context"
	"net/http"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics_RecordRequest(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewHTTPMetricsWithProvider(mp, "test")
	if err != nil {
		t.Fatalf("NewHTTPMetricsWithProvider: %v", err)
	}

	ctx := context.Background()
	m.RecordRequest(ctx, http.MethodGet, "/api/markets", http.StatusOK, 10*time.Millisecond)
	m.RecordRequest(ctx, http.MethodGet, "/api/markets", http.StatusOK, 20*time.Millisecond)
	m.RecordRequest(ctx, http.MethodGet, "/api/coins/:id", http.StatusNotFound, 5*time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != "http_requests_total" {
				continue
			}
			found = true
			sum := metric.Data.(metricdata.Sum[int64])
			if len(sum.DataPoints) != 2 {
				t.Errorf("expected 2 attribute sets, got %d", len(sum.DataPoints))
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			if total != 3 {
				t.Errorf("expected 3 requests, got %d", total)
			}
		}
	}
	if !found {
		t.Fatal("http_requests_total not collected")
	}
}

func TestInitMetrics_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := InitMetrics(context.Background(), MetricConfig{ServiceName: "test"})
	if err != nil {
		t.Fatalf("InitMetrics: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
