package outbound

import (
	"context"
	"time"
)

// Fetch outcome labels used by MetricsRecorder.
const (
	FetchStatusSuccess    = "success"
	FetchStatusError      = "error"
	FetchStatusSuperseded = "superseded"
	FetchStatusNotFound   = "not_found"
	FetchStatusCanceled   = "canceled"
)

// MetricsRecorder provides an interface for recording application metrics.
// This allows the application layer to record metrics without depending on
// specific telemetry implementations.
type MetricsRecorder interface {
	// RecordFetch records a settled remote fetch.
	// resource names what was fetched ("markets", "coin_detail"), status is
	// one of the FetchStatus constants.
	RecordFetch(ctx context.Context, resource, status string, duration time.Duration)

	// RecordStaleResponse records a response discarded because a newer
	// request had been issued.
	RecordStaleResponse(ctx context.Context, resource string)
}

// NopMetrics is a MetricsRecorder that records nothing.
type NopMetrics struct{}

func (NopMetrics) RecordFetch(context.Context, string, string, time.Duration) {}
func (NopMetrics) RecordStaleResponse(context.Context, string)                {}
