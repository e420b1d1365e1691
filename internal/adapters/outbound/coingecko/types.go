package coingecko

// marketCoin is one element of the /coins/markets response.
// Example element:
//
//	{
//	  "id": "bitcoin",
//	  "symbol": "btc",
//	  "name": "Bitcoin",
//	  "image": "https://assets.coingecko.com/coins/images/1/large/bitcoin.png",
//	  "current_price": 67123.45,
//	  "market_cap": 1321234567890,
//	  "market_cap_rank": 1,
//	  "total_volume": 28123456789,
//	  "price_change_percentage_24h": 2.15
//	}
type marketCoin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
}

// coinResponse represents the subset of /coins/{id} the coin page uses.
// Example response (trimmed):
//
//	{
//	  "id": "bitcoin",
//	  "symbol": "btc",
//	  "name": "Bitcoin",
//	  "image": {"thumb": "...", "small": "...", "large": "..."},
//	  "market_cap_rank": 1,
//	  "market_data": {
//	    "current_price": {"usd": 67123.45, "eur": 61987.12},
//	    "market_cap": {"usd": 1321234567890},
//	    "high_24h": {"usd": 68000},
//	    "low_24h": {"usd": 66000}
//	  }
//	}
type coinResponse struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Image         struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketData struct {
		CurrentPrice map[string]float64 `json:"current_price"`
		MarketCap    map[string]float64 `json:"market_cap"`
		High24h      map[string]float64 `json:"high_24h"`
		Low24h       map[string]float64 `json:"low_24h"`
	} `json:"market_data"`
}

// marketChartResponse represents the response from /coins/{id}/market_chart.
// Example response:
//
//	{
//	  "prices": [[1704067200000, 42261.04], [1704153600000, 44179.92]],
//	  "market_caps": [[1704067200000, 827596236151], [1704153600000, 865482546553]],
//	  "total_volumes": [[1704067200000, 14854581416], [1704153600000, 32110126524]]
//	}
type marketChartResponse struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// coinGeckoError represents an error response from the CoinGecko API.
// Plain errors use {"error": "..."}; rate limiting and auth failures use
// {"status": {"error_code": 429, "error_message": "..."}}.
type coinGeckoError struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}
