// Package outbound defines the outbound port interfaces.
package outbound

import (
	"context"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

// MarketsQuery parameterizes a coin market list request.
type MarketsQuery struct {
	Currency entity.Currency

	// PerPage is the page size requested from the provider (max 250).
	PerPage int

	// Page is 1-based.
	Page int
}

// DefaultMarketsQuery returns the single 250-coin page the store fetches.
func DefaultMarketsQuery(currency entity.Currency) MarketsQuery {
	return MarketsQuery{
		Currency: currency,
		PerPage:  250,
		Page:     1,
	}
}

// ChartQuery parameterizes a historical price request.
type ChartQuery struct {
	CoinID   string
	Currency entity.Currency

	// Days is the size of the window ending now.
	Days int

	// Interval is the sampling interval, e.g. "daily".
	Interval string
}

// MarketDataProvider is the interface for any coin market data source.
type MarketDataProvider interface {
	// Name returns the provider name (e.g., "coingecko").
	Name() string

	// GetMarkets returns coins ordered by market cap descending.
	GetMarkets(ctx context.Context, query MarketsQuery) ([]entity.CoinSummary, error)

	// GetCoinDetail returns metadata and per-currency quotes for one coin.
	// Returns entity.ErrCoinNotFound for unknown ids.
	GetCoinDetail(ctx context.Context, coinID string) (*entity.CoinDetail, error)

	// GetMarketChart returns the historical price series for one coin.
	// Returns entity.ErrCoinNotFound for unknown ids.
	GetMarketChart(ctx context.Context, query ChartQuery) (*entity.HistoricalSeries, error)
}
