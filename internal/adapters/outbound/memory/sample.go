package memory

import (
	"math"
	"time"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

// sampleRates converts USD values into the other supported currencies.
var sampleRates = map[string]float64{
	"usd": 1,
	"eur": 0.92,
	"inr": 83.2,
}

type sampleCoin struct {
	id, name, symbol string
	priceUSD         float64
	marketCapUSD     float64
	volumeUSD        float64
	change24h        float64
}

var sampleCoins = []sampleCoin{
	{"bitcoin", "Bitcoin", "btc", 67123.45, 1_321_000_000_000, 28_100_000_000, 2.15},
	{"ethereum", "Ethereum", "eth", 3456.78, 415_100_000_000, 14_200_000_000, -1.42},
	{"tether", "Tether", "usdt", 1.0, 110_300_000_000, 45_600_000_000, 0.01},
	{"solana", "Solana", "sol", 148.92, 68_900_000_000, 2_900_000_000, 5.87},
	{"ripple", "XRP", "xrp", 0.52, 28_700_000_000, 1_100_000_000, -0.63},
	{"cardano", "Cardano", "ada", 0.45, 16_000_000_000, 380_000_000, 1.02},
	{"dogecoin", "Dogecoin", "doge", 0.16, 23_100_000_000, 900_000_000, -3.4},
	{"chainlink", "Chainlink", "link", 14.21, 8_300_000_000, 310_000_000, 0.77},
}

// NewSampleProvider returns a provider seeded with a small fixed market so
// the front ends can run without network access. History covers the ten
// days ending at now.
func NewSampleProvider(now time.Time) *MarketProvider {
	p := NewMarketProvider()

	for _, currency := range entity.SupportedCurrencies() {
		rate := sampleRates[currency.Name]
		coins := make([]entity.CoinSummary, 0, len(sampleCoins))
		for i, c := range sampleCoins {
			rank := i + 1
			change := c.change24h
			coins = append(coins, entity.CoinSummary{
				ID:             c.id,
				Name:           c.name,
				Symbol:         c.symbol,
				CurrentPrice:   c.priceUSD * rate,
				MarketCap:      c.marketCapUSD * rate,
				MarketCapRank:  &rank,
				PriceChange24h: &change,
				TotalVolume:    c.volumeUSD * rate,
			})
		}
		p.SetMarkets(currency, coins)
	}

	day := now.UTC().Truncate(24 * time.Hour)
	for i, c := range sampleCoins {
		rank := i + 1
		quotes := make(map[string]entity.Quote, len(sampleRates))
		for name, rate := range sampleRates {
			price := c.priceUSD * rate
			marketCap := c.marketCapUSD * rate
			high := price * 1.03
			low := price * 0.97
			quotes[name] = entity.Quote{CurrentPrice: &price, MarketCap: &marketCap, High24h: &high, Low24h: &low}
		}

		points := make([]entity.PricePoint, 0, 11)
		for d := 10; d >= 0; d-- {
			// Deterministic wobble around the current price.
			wobble := 1 + 0.04*math.Sin(float64(d+i))
			points = append(points, entity.PricePoint{
				Timestamp: day.AddDate(0, 0, -d),
				Price:     c.priceUSD * wobble,
			})
		}

		p.SetCoin(entity.CoinDetail{
			ID:            c.id,
			Name:          c.name,
			Symbol:        c.symbol,
			MarketCapRank: &rank,
			MarketData:    quotes,
		}, entity.HistoricalSeries{Points: points})

		for _, currency := range entity.SupportedCurrencies() {
			rate := sampleRates[currency.Name]
			converted := make([]entity.PricePoint, len(points))
			for j, pt := range points {
				converted[j] = entity.PricePoint{Timestamp: pt.Timestamp, Price: pt.Price * rate}
			}
			p.SetChart(c.id, currency, entity.HistoricalSeries{Points: converted})
		}
	}

	return p
}
