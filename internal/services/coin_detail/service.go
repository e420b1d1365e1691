// Package coin_detail loads the single-coin page: coin metadata and its
// recent price history, fetched in parallel.
package coin_detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/inbound"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

const (
	// tracerName is the instrumentation name for this service.
	tracerName = "github.com/archon-research/cryptoplace/internal/services/coin_detail"

	resource = "coin_detail"
)

// Compile-time check that Service implements inbound.CoinDetailFetcher.
var _ inbound.CoinDetailFetcher = (*Service)(nil)

// Config holds configuration for the Service.
type Config struct {
	// HistoryDays is the length of the price history window.
	HistoryDays int

	// HistoryInterval is the sampling interval requested from the provider.
	HistoryInterval string

	// Logger is the structured logger.
	Logger *slog.Logger

	// Metrics records fetch outcomes (optional).
	Metrics outbound.MetricsRecorder
}

// ConfigDefaults returns default configuration: ten days of daily prices.
func ConfigDefaults() Config {
	return Config{
		HistoryDays:     10,
		HistoryInterval: "daily",
		Logger:          slog.Default(),
		Metrics:         outbound.NopMetrics{},
	}
}

// Service fetches coin pages from a market data provider.
type Service struct {
	config   Config
	provider outbound.MarketDataProvider
	logger   *slog.Logger
	metrics  outbound.MetricsRecorder
}

// NewService creates a new Service.
func NewService(config Config, provider outbound.MarketDataProvider) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}

	defaults := ConfigDefaults()
	if config.HistoryDays == 0 {
		config.HistoryDays = defaults.HistoryDays
	}
	if config.HistoryDays < 0 {
		return nil, fmt.Errorf("HistoryDays must be positive, got %d", config.HistoryDays)
	}
	if config.HistoryInterval == "" {
		config.HistoryInterval = defaults.HistoryInterval
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if config.Metrics == nil {
		config.Metrics = defaults.Metrics
	}

	return &Service{
		config:   config,
		provider: provider,
		logger:   config.Logger.With("component", "coin-detail"),
		metrics:  config.Metrics,
	}, nil
}

// Fetch loads the detail and history of coinID in parallel. The first
// failure cancels the other request and is returned; no partial page is ever
// returned. An unknown coin yields an error wrapping entity.ErrCoinNotFound.
// An empty history is not an error.
func (s *Service) Fetch(ctx context.Context, coinID string, currency entity.Currency) (*entity.CoinPage, error) {
	start := time.Now()

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "coin_detail.fetch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("coin.id", coinID),
			attribute.String("currency", currency.Name),
		),
	)
	defer span.End()

	var (
		detail  *entity.CoinDetail
		history *entity.HistoricalSeries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.provider.GetCoinDetail(gctx, coinID)
		if err != nil {
			return fmt.Errorf("fetching detail: %w", err)
		}
		detail = d
		return nil
	})
	g.Go(func() error {
		h, err := s.provider.GetMarketChart(gctx, outbound.ChartQuery{
			CoinID:   coinID,
			Currency: currency,
			Days:     s.config.HistoryDays,
			Interval: s.config.HistoryInterval,
		})
		if err != nil {
			return fmt.Errorf("fetching history: %w", err)
		}
		history = h
		return nil
	})

	if err := g.Wait(); err != nil {
		status := outbound.FetchStatusError
		if errors.Is(err, entity.ErrCoinNotFound) {
			status = outbound.FetchStatusNotFound
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch coin page")
		}
		s.metrics.RecordFetch(ctx, resource, status, time.Since(start))
		s.logger.Warn("coin page fetch failed", "coin", coinID, "currency", currency.Name, "error", err)
		return nil, fmt.Errorf("coin %s: %w", coinID, err)
	}

	page := &entity.CoinPage{
		Detail:   *detail,
		History:  *history,
		Currency: currency,
	}

	span.SetAttributes(attribute.Int("history.points", len(history.Points)))
	s.metrics.RecordFetch(ctx, resource, outbound.FetchStatusSuccess, time.Since(start))
	s.logger.Debug("coin page fetched", "coin", coinID, "currency", currency.Name, "points", len(history.Points))
	return page, nil
}
