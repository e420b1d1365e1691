package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records inbound API request metrics using OpenTelemetry.
type HTTPMetrics struct {
	requestLatency metric.Float64Histogram
	requestsTotal  metric.Int64Counter
}

// NewHTTPMetrics creates a new HTTP metrics recorder on the global meter provider.
// meterName should typically be the package name or service name.
func NewHTTPMetrics(meterName string) (*HTTPMetrics, error) {
	return NewHTTPMetricsWithProvider(otel.GetMeterProvider(), meterName)
}

// NewHTTPMetricsWithProvider creates a new HTTP metrics recorder on mp.
func NewHTTPMetricsWithProvider(mp metric.MeterProvider, meterName string) (*HTTPMetrics, error) {
	meter := mp.Meter(meterName)

	latency, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Time taken to serve an API request"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	requests, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of API requests served"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	return &HTTPMetrics{
		requestLatency: latency,
		requestsTotal:  requests,
	}, nil
}

// RecordRequest records one served request. route is the route pattern,
// not the raw path, to keep cardinality bounded.
func (m *HTTPMetrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.requestLatency.Record(ctx, duration.Seconds(), attrs)
	m.requestsTotal.Add(ctx, 1, attrs)
}
