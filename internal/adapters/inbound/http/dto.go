package http

import (
	"time"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/pkg/money"
	"github.com/archon-research/cryptoplace/internal/services/listing"
)

type currencyJSON struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Code   string `json:"code"`
}

func toCurrencyJSON(c entity.Currency) currencyJSON {
	return currencyJSON{Name: c.Name, Symbol: c.Symbol, Code: c.Code()}
}

type statusJSON struct {
	Phase     entity.Phase `json:"phase"`
	Loading   bool         `json:"loading"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

func toStatusJSON(s entity.FetchState) statusJSON {
	out := statusJSON{Phase: s.Phase(), Loading: s.Loading, Error: s.Err}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

type coinJSON struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	Image          string   `json:"image,omitempty"`
	CurrentPrice   float64  `json:"current_price"`
	MarketCap      float64  `json:"market_cap"`
	MarketCapRank  *int     `json:"market_cap_rank"`
	PriceChange24h *float64 `json:"price_change_percentage_24h"`
	TotalVolume    float64  `json:"total_volume"`

	PriceDisplay     string `json:"price_display"`
	MarketCapDisplay string `json:"market_cap_display"`
	ChangeDisplay    string `json:"change_display"`
}

func toCoinJSON(c entity.CoinSummary, cur entity.Currency) coinJSON {
	return coinJSON{
		ID:               c.ID,
		Name:             c.Name,
		Symbol:           c.DisplaySymbol(),
		Image:            c.Image,
		CurrentPrice:     c.CurrentPrice,
		MarketCap:        c.MarketCap,
		MarketCapRank:    c.MarketCapRank,
		PriceChange24h:   c.PriceChange24h,
		TotalVolume:      c.TotalVolume,
		PriceDisplay:     money.Amount(cur.Symbol, c.CurrentPrice),
		MarketCapDisplay: money.Compact(cur.Symbol, c.MarketCap),
		ChangeDisplay:    money.Percent(c.PriceChange24h),
	}
}

type statsJSON struct {
	listing.Summary
	TotalMarketCapDisplay string `json:"total_market_cap_display"`
}

func toStatsJSON(s listing.Summary, cur entity.Currency) statsJSON {
	return statsJSON{Summary: s, TotalMarketCapDisplay: money.Compact(cur.Symbol, s.TotalMarketCap)}
}

type quoteJSON struct {
	CurrentPrice *float64 `json:"current_price"`
	MarketCap    *float64 `json:"market_cap"`
	High24h      *float64 `json:"high_24h"`
	Low24h       *float64 `json:"low_24h"`

	CurrentPriceDisplay string `json:"current_price_display"`
	MarketCapDisplay    string `json:"market_cap_display"`
	High24hDisplay      string `json:"high_24h_display"`
	Low24hDisplay       string `json:"low_24h_display"`
}

type coinPageJSON struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Symbol        string              `json:"symbol"`
	Image         string              `json:"image,omitempty"`
	MarketCapRank *int                `json:"market_cap_rank"`
	Currency      currencyJSON        `json:"currency"`
	Quote         quoteJSON           `json:"quote"`
	HasChart      bool                `json:"has_chart"`
	Chart         []entity.ChartPoint `json:"chart"`
}

func toCoinPageJSON(p *entity.CoinPage, loc *time.Location) coinPageJSON {
	q := p.Detail.Quote(p.Currency)
	sym := p.Currency.Symbol
	return coinPageJSON{
		ID:            p.Detail.ID,
		Name:          p.Detail.Name,
		Symbol:        p.Detail.Symbol,
		Image:         p.Detail.Image,
		MarketCapRank: p.Detail.MarketCapRank,
		Currency:      toCurrencyJSON(p.Currency),
		Quote: quoteJSON{
			CurrentPrice:        q.CurrentPrice,
			MarketCap:           q.MarketCap,
			High24h:             q.High24h,
			Low24h:              q.Low24h,
			CurrentPriceDisplay: money.OptionalAmount(sym, q.CurrentPrice),
			MarketCapDisplay:    money.OptionalAmount(sym, q.MarketCap),
			High24hDisplay:      money.OptionalAmount(sym, q.High24h),
			Low24hDisplay:       money.OptionalAmount(sym, q.Low24h),
		},
		HasChart: p.HasChart(),
		Chart:    p.History.Chart(loc),
	}
}

type articleJSON struct {
	entity.Article
	PublishedDisplay string `json:"published_display"`
}
