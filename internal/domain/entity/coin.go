package entity

import (
	"errors"
	"strings"
	"time"
)

// ErrCoinNotFound is returned when a coin identifier is unknown to the provider.
var ErrCoinNotFound = errors.New("coin not found")

// CoinSummary is the per-asset record used in list views.
// A fetched set is immutable; a new fetch replaces it as a whole.
type CoinSummary struct {
	ID             string
	Name           string
	Symbol         string
	Image          string
	CurrentPrice   float64
	MarketCap      float64
	MarketCapRank  *int     // nil when the provider has no rank
	PriceChange24h *float64 // percent, nil when unknown
	TotalVolume    float64
}

// DisplaySymbol returns the ticker in upper case.
func (c CoinSummary) DisplaySymbol() string {
	return strings.ToUpper(c.Symbol)
}

// Quote holds the market values of a coin in a single currency.
// CoinGecko omits values for some pairs, hence the pointers.
type Quote struct {
	CurrentPrice *float64
	MarketCap    *float64
	High24h      *float64
	Low24h       *float64
}

// CoinDetail is the richer per-asset record used on the single-coin page.
type CoinDetail struct {
	ID            string
	Name          string
	Symbol        string
	Image         string
	MarketCapRank *int

	// MarketData is keyed by Currency.Name.
	MarketData map[string]Quote
}

// Quote returns the values quoted in the given currency. The zero Quote is
// returned when the provider did not report that currency.
func (d CoinDetail) Quote(c Currency) Quote {
	return d.MarketData[c.Name]
}

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// HistoricalSeries is an ordered price series over a recent window.
type HistoricalSeries struct {
	CoinID string
	Points []PricePoint
}

// ChartPoint is a label/value pair ready for plotting.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// chartDateLayout is the en-US short date used for chart labels.
const chartDateLayout = "1/2/2006"

// Chart converts the series into labelled points, rendering timestamps as
// short dates in loc. A nil loc means UTC.
func (h HistoricalSeries) Chart(loc *time.Location) []ChartPoint {
	if loc == nil {
		loc = time.UTC
	}
	points := make([]ChartPoint, 0, len(h.Points))
	for _, p := range h.Points {
		points = append(points, ChartPoint{
			Label: p.Timestamp.In(loc).Format(chartDateLayout),
			Value: p.Price,
		})
	}
	return points
}

// IsEmpty reports whether the series has no data points.
func (h HistoricalSeries) IsEmpty() bool {
	return len(h.Points) == 0
}

// CoinPage is everything the single-coin page renders. It is only built when
// both the detail and the history were fetched successfully.
type CoinPage struct {
	Detail   CoinDetail
	History  HistoricalSeries
	Currency Currency
}

// HasChart reports whether there is any chart data. An empty history is not
// an error; it renders as "no chart data".
func (p *CoinPage) HasChart() bool {
	return p != nil && !p.History.IsEmpty()
}
