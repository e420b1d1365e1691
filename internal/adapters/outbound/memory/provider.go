// provider.go provides an in-memory implementation of MarketDataProvider.
//
// This adapter serves coin data from memory for offline development and
// tests. Responses can be held back per currency so tests control the order
// in which concurrent requests resolve, and failures can be scripted per
// operation.
//
// All operations are thread-safe. Data is lost on process restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

// Compile-time check that MarketProvider implements outbound.MarketDataProvider
var _ outbound.MarketDataProvider = (*MarketProvider)(nil)

// MarketProvider is an in-memory implementation of the MarketDataProvider port.
type MarketProvider struct {
	mu sync.Mutex

	markets map[string][]entity.CoinSummary // keyed by currency name
	details map[string]entity.CoinDetail
	charts  map[string]entity.HistoricalSeries // keyed by "coinID:currency"

	marketsErr error
	detailErr  error
	chartErr   error

	holds map[string]chan struct{} // keyed by currency name
	calls []string
}

// NewMarketProvider creates an empty in-memory provider.
func NewMarketProvider() *MarketProvider {
	return &MarketProvider{
		markets: make(map[string][]entity.CoinSummary),
		details: make(map[string]entity.CoinDetail),
		charts:  make(map[string]entity.HistoricalSeries),
		holds:   make(map[string]chan struct{}),
	}
}

// Name returns the provider name.
func (p *MarketProvider) Name() string {
	return "memory"
}

// SetMarkets sets the market list returned for a currency.
func (p *MarketProvider) SetMarkets(currency entity.Currency, coins []entity.CoinSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markets[currency.Name] = append([]entity.CoinSummary(nil), coins...)
}

// SetCoin sets the detail returned for a coin id and the history returned
// for it in every supported currency.
func (p *MarketProvider) SetCoin(detail entity.CoinDetail, history entity.HistoricalSeries) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.details[detail.ID] = detail
	history.CoinID = detail.ID
	for _, c := range entity.SupportedCurrencies() {
		p.charts[chartKey(detail.ID, c)] = history
	}
}

// SetChart sets the history returned for a coin in one currency.
func (p *MarketProvider) SetChart(coinID string, currency entity.Currency, history entity.HistoricalSeries) {
	p.mu.Lock()
	defer p.mu.Unlock()
	history.CoinID = coinID
	p.charts[chartKey(coinID, currency)] = history
}

func chartKey(coinID string, currency entity.Currency) string {
	return coinID + ":" + currency.Name
}

// FailMarkets makes GetMarkets return err until cleared with nil.
func (p *MarketProvider) FailMarkets(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marketsErr = err
}

// FailDetail makes GetCoinDetail return err until cleared with nil.
func (p *MarketProvider) FailDetail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detailErr = err
}

// FailChart makes GetMarketChart return err until cleared with nil.
func (p *MarketProvider) FailChart(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chartErr = err
}

// Hold blocks GetMarkets calls for currency until release is called.
// Held calls ignore context cancellation, so a test can deliver a response
// after its request was superseded.
func (p *MarketProvider) Hold(currency entity.Currency) (release func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan struct{})
	p.holds[currency.Name] = ch

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			if p.holds[currency.Name] == ch {
				delete(p.holds, currency.Name)
			}
			p.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns every request made so far, e.g. "markets:usd", "detail:bitcoin".
func (p *MarketProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// CallCount returns how many times call was made.
func (p *MarketProvider) CallCount(call string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c == call {
			n++
		}
	}
	return n
}

// GetMarkets returns the stored list for the query currency.
func (p *MarketProvider) GetMarkets(ctx context.Context, query outbound.MarketsQuery) ([]entity.CoinSummary, error) {
	p.mu.Lock()
	p.calls = append(p.calls, "markets:"+query.Currency.Name)
	hold := p.holds[query.Currency.Name]
	p.mu.Unlock()

	if hold != nil {
		<-hold
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.marketsErr != nil {
		return nil, p.marketsErr
	}

	coins := p.markets[query.Currency.Name]
	if query.PerPage > 0 {
		start := (max(query.Page, 1) - 1) * query.PerPage
		if start >= len(coins) {
			return []entity.CoinSummary{}, nil
		}
		coins = coins[start:min(start+query.PerPage, len(coins))]
	}
	return append([]entity.CoinSummary(nil), coins...), nil
}

// GetCoinDetail returns the stored detail for coinID.
func (p *MarketProvider) GetCoinDetail(ctx context.Context, coinID string) (*entity.CoinDetail, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "detail:"+coinID)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.detailErr != nil {
		return nil, p.detailErr
	}
	detail, ok := p.details[coinID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrCoinNotFound, coinID)
	}
	return &detail, nil
}

// GetMarketChart returns the stored history for the query coin.
func (p *MarketProvider) GetMarketChart(ctx context.Context, query outbound.ChartQuery) (*entity.HistoricalSeries, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "chart:"+query.CoinID+":"+query.Currency.Name)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.chartErr != nil {
		return nil, p.chartErr
	}
	series, ok := p.charts[chartKey(query.CoinID, query.Currency)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrCoinNotFound, query.CoinID)
	}
	series.Points = append([]entity.PricePoint(nil), series.Points...)
	return &series, nil
}
