// Package shared provides shared instrumentation for application services.
package shared

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

// Compile-time assertion that AppTelemetry implements MetricsRecorder.
var _ outbound.MetricsRecorder = (*AppTelemetry)(nil)

const (
	// instrumentationName is the name used for OpenTelemetry instrumentation.
	instrumentationName = "github.com/archon-research/cryptoplace/internal/services"
)

// AppTelemetry provides OpenTelemetry metrics for application-level fetch
// outcomes. HTTP request metrics live in the telemetry adapter.
type AppTelemetry struct {
	fetchesTotal   metric.Int64Counter
	fetchDuration  metric.Float64Histogram
	staleResponses metric.Int64Counter
}

// NewAppTelemetry creates a new AppTelemetry instance on the global meter provider.
func NewAppTelemetry() (*AppTelemetry, error) {
	return NewAppTelemetryWithProvider(otel.GetMeterProvider())
}

// NewAppTelemetryWithProvider creates a new AppTelemetry instance with a custom meter provider.
func NewAppTelemetryWithProvider(mp metric.MeterProvider) (*AppTelemetry, error) {
	meter := mp.Meter(instrumentationName)
	t := &AppTelemetry{}

	var err error
	t.fetchesTotal, err = meter.Int64Counter(
		"market.fetches.total",
		metric.WithDescription("Total number of settled upstream fetches"),
	)
	if err != nil {
		return nil, err
	}

	t.fetchDuration, err = meter.Float64Histogram(
		"market.fetch.duration",
		metric.WithDescription("Duration of upstream fetches"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	t.staleResponses, err = meter.Int64Counter(
		"market.stale_responses.total",
		metric.WithDescription("Responses discarded because a newer request was issued"),
	)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// RecordFetch records a settled fetch.
func (t *AppTelemetry) RecordFetch(ctx context.Context, resource, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("status", status),
	)
	t.fetchesTotal.Add(ctx, 1, attrs)
	t.fetchDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStaleResponse records a discarded out-of-order response.
func (t *AppTelemetry) RecordStaleResponse(ctx context.Context, resource string) {
	t.staleResponses.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
}
