// Package market_data holds the shared coin market list for the active
// currency.
//
// Every fetch is tagged with a generation. Starting a fetch cancels the one
// in flight, and a response that arrives after a newer fetch was started is
// discarded without touching the state. The list therefore always reflects
// the most recently requested currency, regardless of the order in which
// responses come back.
package market_data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/inbound"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

const (
	// tracerName is the instrumentation name for this service.
	tracerName = "github.com/archon-research/cryptoplace/internal/services/market_data"

	// resource labels metrics recorded by the store.
	resource = "markets"
)

// ErrSuperseded is returned to the caller of a fetch whose response was
// discarded because a newer fetch had been started.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Compile-time checks that Store implements the inbound ports.
var (
	_ inbound.MarketStore   = (*Store)(nil)
	_ inbound.HealthChecker = (*Store)(nil)
)

// StoreConfig holds configuration for the Store.
type StoreConfig struct {
	// InitialCurrency is the active currency before any selection.
	InitialCurrency entity.Currency

	// PerPage is how many coins are requested per fetch (max 250).
	PerPage int

	// Logger is the structured logger.
	Logger *slog.Logger

	// Metrics records fetch outcomes (optional).
	Metrics outbound.MetricsRecorder

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Cache keeps the last good list per currency (optional). When a fetch
	// fails and the cache holds a list for the requested currency, that list
	// replaces the coins on screen while Err still reports the failure.
	Cache outbound.MarketSnapshotCache
}

// StoreConfigDefaults returns default configuration.
func StoreConfigDefaults() StoreConfig {
	return StoreConfig{
		InitialCurrency: entity.DefaultCurrency,
		PerPage:         250,
		Logger:          slog.Default(),
		Metrics:         outbound.NopMetrics{},
		Now:             time.Now,
	}
}

// Store is the single source of truth for the coin market list.
type Store struct {
	config   StoreConfig
	provider outbound.MarketDataProvider
	logger   *slog.Logger
	metrics  outbound.MetricsRecorder
	cache    outbound.MarketSnapshotCache

	mu          sync.Mutex
	state       entity.FetchState
	generation  uint64
	cancelFetch context.CancelFunc
	ready       bool

	subscribers map[uint64]chan entity.FetchState
	nextSubID   uint64
}

// NewStore creates a Store. No fetch is issued until Load is called.
func NewStore(config StoreConfig, provider outbound.MarketDataProvider) (*Store, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}

	defaults := StoreConfigDefaults()
	if config.InitialCurrency.Name == "" {
		config.InitialCurrency = defaults.InitialCurrency
	}
	if config.PerPage == 0 {
		config.PerPage = defaults.PerPage
	}
	if config.PerPage < 0 || config.PerPage > 250 {
		return nil, fmt.Errorf("PerPage must be between 1 and 250, got %d", config.PerPage)
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if config.Metrics == nil {
		config.Metrics = defaults.Metrics
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}

	return &Store{
		config:   config,
		provider: provider,
		logger:   config.Logger.With("component", "market-store", "provider", provider.Name()),
		metrics:  config.Metrics,
		cache:    config.Cache,
		state: entity.FetchState{
			Currency: config.InitialCurrency,
		},
		subscribers: make(map[uint64]chan entity.FetchState),
	}, nil
}

// State returns a snapshot of the current fetch state.
func (s *Store) State() entity.FetchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Currency returns the active currency.
func (s *Store) Currency() entity.Currency {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Currency
}

// Load fetches the list for the active currency. It is called once at
// startup; later fetches go through SetCurrency and Retry.
func (s *Store) Load(ctx context.Context) error {
	return s.fetch(ctx, s.Currency())
}

// SetCurrency switches the active currency and fetches its list. Selecting
// the currency that is already active does nothing. An unknown name leaves
// the state untouched and returns an error wrapping entity.ErrUnknownCurrency.
func (s *Store) SetCurrency(ctx context.Context, name string) error {
	currency, err := entity.ParseCurrency(name)
	if err != nil {
		return err
	}
	if currency == s.Currency() {
		return nil
	}
	return s.fetch(ctx, currency)
}

// Retry refetches the list for the active currency.
func (s *Store) Retry(ctx context.Context) error {
	return s.fetch(ctx, s.Currency())
}

// IsReady returns true once a fetch has succeeded.
func (s *Store) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// IsHealthy returns false only when the last fetch failed and there is no
// list left to serve.
func (s *Store) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Err == "" || len(s.state.Coins) > 0
}

// Subscribe returns a channel that receives a snapshot after every state
// change. Only the latest snapshot is kept for a slow reader. The returned
// func stops delivery and closes the channel.
func (s *Store) Subscribe() (<-chan entity.FetchState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan entity.FetchState, 1)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// fetch requests the list for currency and applies the response if no newer
// fetch was started in the meantime.
func (s *Store) fetch(ctx context.Context, currency entity.Currency) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	prevCurrency, prevErr := s.state.Currency, s.state.Err
	s.state.Currency = currency
	s.state.Loading = true
	s.state.Err = ""
	s.publishLocked()
	s.mu.Unlock()
	defer cancel()

	requestID := uuid.NewString()
	start := time.Now()

	tracer := otel.Tracer(tracerName)
	fetchCtx, span := tracer.Start(fetchCtx, "market_data.fetch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("currency", currency.Name),
			attribute.Int64("generation", int64(gen)),
		),
	)
	defer span.End()

	coins, err := s.provider.GetMarkets(fetchCtx, outbound.MarketsQuery{
		Currency: currency,
		PerPage:  s.config.PerPage,
		Page:     1,
	})
	duration := time.Since(start)

	var cached *outbound.MarketSnapshot
	if err != nil && ctx.Err() == nil && fetchCtx.Err() == nil {
		cached = s.cachedSnapshot(fetchCtx, currency)
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		span.SetAttributes(attribute.Bool("superseded", true))
		s.metrics.RecordStaleResponse(ctx, resource)
		s.metrics.RecordFetch(ctx, resource, outbound.FetchStatusSuperseded, duration)
		s.logger.Debug("discarding superseded response",
			"request_id", requestID, "currency", currency.Name, "generation", gen)
		return ErrSuperseded
	}

	s.cancelFetch = nil
	s.state.Loading = false
	if err != nil && ctx.Err() != nil {
		// The caller gave up. The list was never replaced, so put back the
		// currency and error it belongs to.
		s.state.Currency = prevCurrency
		s.state.Err = prevErr
		s.publishLocked()
		s.mu.Unlock()

		span.SetAttributes(attribute.Bool("abandoned", true))
		s.metrics.RecordFetch(ctx, resource, outbound.FetchStatusCanceled, duration)
		s.logger.Info("market fetch abandoned by caller",
			"request_id", requestID, "currency", currency.Name, "error", ctx.Err())
		return fmt.Errorf("fetching markets in %s: %w", currency.Name, ctx.Err())
	}
	if err != nil {
		s.state.Err = err.Error()
		if cached != nil {
			s.state.Coins = cached.Coins
			s.state.UpdatedAt = cached.FetchedAt
		}
	} else {
		s.state.Coins = coins
		s.state.Err = ""
		s.state.UpdatedAt = s.config.Now()
		s.ready = true
	}
	stale := len(s.state.Coins)
	s.publishLocked()
	s.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch markets")
		s.metrics.RecordFetch(ctx, resource, outbound.FetchStatusError, duration)
		s.logger.Warn("market fetch failed",
			"request_id", requestID, "currency", currency.Name, "stale_coins", stale, "error", err)
		return fmt.Errorf("fetching markets in %s: %w", currency.Name, err)
	}

	span.SetAttributes(attribute.Int("coins", len(coins)))
	s.storeSnapshot(ctx, currency, coins)
	s.metrics.RecordFetch(ctx, resource, outbound.FetchStatusSuccess, duration)
	s.logger.Info("markets fetched",
		"request_id", requestID, "currency", currency.Name, "coins", len(coins), "duration", duration)
	return nil
}

// cachedSnapshot returns the cached list for currency, or nil.
func (s *Store) cachedSnapshot(ctx context.Context, currency entity.Currency) *outbound.MarketSnapshot {
	if s.cache == nil {
		return nil
	}
	snapshot, ok, err := s.cache.Get(ctx, currency.Name)
	if err != nil {
		s.logger.Warn("reading market snapshot failed", "currency", currency.Name, "error", err)
		return nil
	}
	if !ok || len(snapshot.Coins) == 0 {
		return nil
	}
	return &snapshot
}

func (s *Store) storeSnapshot(ctx context.Context, currency entity.Currency, coins []entity.CoinSummary) {
	if s.cache == nil {
		return
	}
	err := s.cache.Set(ctx, outbound.MarketSnapshot{
		Currency:  currency.Name,
		Coins:     coins,
		FetchedAt: s.config.Now(),
	})
	if err != nil {
		s.logger.Warn("writing market snapshot failed", "currency", currency.Name, "error", err)
	}
}

// publishLocked sends the current state to every subscriber, replacing any
// snapshot a subscriber has not read yet. s.mu must be held.
func (s *Store) publishLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snapshot := s.state.Clone()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}
