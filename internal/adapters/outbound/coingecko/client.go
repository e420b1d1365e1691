// Package coingecko implements the MarketDataProvider interface using CoinGecko's API.
// It provides methods for fetching the coin market list, coin metadata and
// historical price series with:
//   - Optional API key (demo or pro); requests go unauthenticated without one
//   - Rate limiting to stay within API limits
//   - Opt-in transport retries (disabled by default; retry is caller-driven)
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/pkg/httpclient"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

// Compile-time check that Client implements outbound.MarketDataProvider.
var _ outbound.MarketDataProvider = (*Client)(nil)

const (
	// PublicBaseURL serves keyless and demo-key requests.
	PublicBaseURL = "https://api.coingecko.com/api/v3"

	// ProBaseURL serves pro-key requests.
	ProBaseURL = "https://pro-api.coingecko.com/api/v3"

	demoKeyHeader = "x-cg-demo-api-key"
	proKeyHeader  = "x-cg-pro-api-key"
)

// ClientConfig holds configuration for the CoinGecko client.
type ClientConfig struct {
	// APIKey is the CoinGecko API key. Optional: without it requests are
	// unauthenticated and subject to the public rate limit.
	APIKey string

	// BaseURL is the CoinGecko API base URL.
	// Defaults to PublicBaseURL. The pro key header is used when it points
	// at the pro API.
	BaseURL string

	// Timeout is the maximum time to wait for a single HTTP request.
	Timeout time.Duration

	// MaxRetries is the number of transport retries on 429/5xx. Defaults to 0.
	MaxRetries int

	// RateLimitPerMin is the rate limit in requests per minute.
	// Defaults to 30, the demo plan limit.
	RateLimitPerMin int

	// Logger is the structured logger for the client.
	Logger *slog.Logger

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// ClientConfigDefaults returns a config with default values.
func ClientConfigDefaults() ClientConfig {
	return ClientConfig{
		BaseURL:         PublicBaseURL,
		Timeout:         15 * time.Second,
		RateLimitPerMin: 30,
		Logger:          slog.Default(),
	}
}

// Client implements MarketDataProvider using CoinGecko's API.
type Client struct {
	config ClientConfig
	http   *httpclient.Client
	logger *slog.Logger
}

// NewClient creates a new CoinGecko API client.
func NewClient(config ClientConfig) (*Client, error) {
	applyDefaults(&config, ClientConfigDefaults())

	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid BaseURL: %w", err)
	}
	if config.MaxRetries < 0 {
		return nil, errors.New("MaxRetries must not be negative")
	}

	logger := config.Logger.With("component", "coingecko-client")
	if config.APIKey == "" {
		logger.Warn("no CoinGecko API key configured, using unauthenticated requests")
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = config.Timeout
	httpCfg.MaxRetries = config.MaxRetries
	httpCfg.RateLimitPerMin = config.RateLimitPerMin
	httpCfg.HTTPClient = config.HTTPClient

	return &Client{
		config: config,
		http:   httpclient.NewClient(httpCfg, logger, parseErrorMessage),
		logger: logger,
	}, nil
}

func applyDefaults(config *ClientConfig, defaults ClientConfig) {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RateLimitPerMin == 0 {
		config.RateLimitPerMin = defaults.RateLimitPerMin
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "coingecko"
}

// GetMarkets fetches one page of the coin market list ordered by market cap.
// Uses the /coins/markets endpoint.
func (c *Client) GetMarkets(ctx context.Context, query outbound.MarketsQuery) ([]entity.CoinSummary, error) {
	if query.PerPage <= 0 || query.PerPage > 250 {
		return nil, fmt.Errorf("per_page must be between 1 and 250, got %d", query.PerPage)
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	params := url.Values{
		"vs_currency":             {query.Currency.Name},
		"order":                   {"market_cap_desc"},
		"per_page":                {strconv.Itoa(query.PerPage)},
		"page":                    {strconv.Itoa(query.Page)},
		"sparkline":               {"false"},
		"price_change_percentage": {"24h"},
	}

	var response []marketCoin
	if err := c.get(ctx, "/coins/markets", params, &response); err != nil {
		return nil, fmt.Errorf("fetching markets in %s: %w", query.Currency.Name, err)
	}

	coins := make([]entity.CoinSummary, 0, len(response))
	for _, m := range response {
		coins = append(coins, entity.CoinSummary{
			ID:             m.ID,
			Name:           m.Name,
			Symbol:         m.Symbol,
			Image:          m.Image,
			CurrentPrice:   valueOrZero(m.CurrentPrice),
			MarketCap:      valueOrZero(m.MarketCap),
			MarketCapRank:  m.MarketCapRank,
			PriceChange24h: m.PriceChangePercentage24h,
			TotalVolume:    valueOrZero(m.TotalVolume),
		})
	}

	return coins, nil
}

// GetCoinDetail fetches metadata and per-currency market data for one coin.
// Uses the /coins/{id} endpoint with the heavy sections disabled.
func (c *Client) GetCoinDetail(ctx context.Context, coinID string) (*entity.CoinDetail, error) {
	if strings.TrimSpace(coinID) == "" {
		return nil, entity.ErrCoinNotFound
	}

	params := url.Values{
		"localization":   {"false"},
		"tickers":        {"false"},
		"community_data": {"false"},
		"developer_data": {"false"},
	}

	var response coinResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID), params, &response); err != nil {
		return nil, c.classify(coinID, err)
	}

	return &entity.CoinDetail{
		ID:            response.ID,
		Name:          response.Name,
		Symbol:        response.Symbol,
		Image:         response.Image.Large,
		MarketCapRank: response.MarketCapRank,
		MarketData:    buildQuotes(response),
	}, nil
}

// GetMarketChart fetches the historical price series for one coin.
// Uses the /coins/{id}/market_chart endpoint.
func (c *Client) GetMarketChart(ctx context.Context, query outbound.ChartQuery) (*entity.HistoricalSeries, error) {
	if strings.TrimSpace(query.CoinID) == "" {
		return nil, entity.ErrCoinNotFound
	}
	if query.Days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", query.Days)
	}

	params := url.Values{
		"vs_currency": {query.Currency.Name},
		"days":        {strconv.Itoa(query.Days)},
	}
	if query.Interval != "" {
		params.Set("interval", query.Interval)
	}

	var response marketChartResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(query.CoinID)+"/market_chart", params, &response); err != nil {
		return nil, c.classify(query.CoinID, err)
	}

	series := &entity.HistoricalSeries{
		CoinID: query.CoinID,
		Points: make([]entity.PricePoint, 0, len(response.Prices)),
	}
	for _, p := range response.Prices {
		if len(p) >= 2 {
			series.Points = append(series.Points, entity.PricePoint{
				Timestamp: time.UnixMilli(int64(p[0])).UTC(),
				Price:     p[1],
			})
		}
	}

	return series, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	headers := map[string]string{}
	if c.config.APIKey != "" {
		headers[c.keyHeader()] = c.config.APIKey
	}

	return c.http.GetJSON(ctx, httpclient.RequestConfig{
		URL:     c.config.BaseURL + path,
		Query:   params,
		Headers: headers,
	}, result)
}

func (c *Client) keyHeader() string {
	if strings.Contains(c.config.BaseURL, "pro-api.") {
		return proKeyHeader
	}
	return demoKeyHeader
}

// classify maps a 404 from a per-coin endpoint to entity.ErrCoinNotFound.
func (c *Client) classify(coinID string, err error) error {
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return fmt.Errorf("%w: %s", entity.ErrCoinNotFound, coinID)
	}
	return fmt.Errorf("fetching coin %s: %w", coinID, err)
}

func buildQuotes(response coinResponse) map[string]entity.Quote {
	md := response.MarketData
	quotes := make(map[string]entity.Quote, len(md.CurrentPrice))
	for _, c := range entity.SupportedCurrencies() {
		q := entity.Quote{
			CurrentPrice: lookup(md.CurrentPrice, c.Name),
			MarketCap:    lookup(md.MarketCap, c.Name),
			High24h:      lookup(md.High24h, c.Name),
			Low24h:       lookup(md.Low24h, c.Name),
		}
		if q != (entity.Quote{}) {
			quotes[c.Name] = q
		}
	}
	return quotes
}

func lookup(m map[string]float64, key string) *float64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func parseErrorMessage(body []byte) string {
	var apiErr coinGeckoError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return ""
	}
	if apiErr.Error != "" {
		return apiErr.Error
	}
	return apiErr.Status.ErrorMessage
}
