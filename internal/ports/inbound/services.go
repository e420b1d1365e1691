// Package inbound contains the primary/inbound ports.
// These interfaces define the use cases that the application exposes.
package inbound

import (
	"context"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

// MarketStore is the shared coin market list keyed by the active currency.
// Inbound adapters (HTTP handlers, TUI) read snapshots and trigger refetches.
type MarketStore interface {
	// State returns a snapshot of the current fetch state.
	State() entity.FetchState

	// Currency returns the active currency.
	Currency() entity.Currency

	// SetCurrency switches the active currency and refetches when it changed.
	SetCurrency(ctx context.Context, name string) error

	// Retry refetches the list for the active currency.
	Retry(ctx context.Context) error
}

// CoinDetailFetcher loads everything a single-coin page needs.
type CoinDetailFetcher interface {
	// Fetch returns the page or the first error; never a partial page.
	Fetch(ctx context.Context, coinID string, currency entity.Currency) (*entity.CoinPage, error)
}

// HealthChecker defines the interface for services that can report readiness and liveness.
//
// Implementations:
//   - market_data.Store: ready after the first successful fetch, healthy
//     while the last fetch succeeded or stale data is still being served
type HealthChecker interface {
	// IsReady returns true when the service is ready to handle traffic.
	IsReady() bool

	// IsHealthy returns true when the service is operating normally.
	IsHealthy() bool
}
