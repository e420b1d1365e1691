// Package listing derives the visible market list from the fetched coins.
//
// The derivation is a pipeline of pure functions applied in a fixed order:
// category filter, search, sort, paginate. Each stage consumes the output of
// the previous one, so the result depends only on the coins and the Query.
package listing

import (
	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

const (
	// HomePageSize is the page size of the home listing.
	HomePageSize = 10

	// MarketPageSize is the page size of the market data table.
	MarketPageSize = 50
)

// Query holds every user-controlled input of the pipeline.
type Query struct {
	Search   string
	Category Category
	Sort     SortState
	Page     int
	PageSize int
}

// HomeQuery returns the query of the home listing: provider order, 10 per page.
func HomeQuery() Query {
	return Query{
		Category: CategoryAll,
		Sort:     SortState{Field: SortNone, Direction: Ascending},
		Page:     1,
		PageSize: HomePageSize,
	}
}

// MarketQuery returns the query of the market data table: rank ascending,
// 50 per page.
func MarketQuery() Query {
	return Query{
		Category: CategoryAll,
		Sort:     SortState{Field: SortRank, Direction: Ascending},
		Page:     1,
		PageSize: MarketPageSize,
	}
}

// Derive runs the full pipeline over coins.
func Derive(coins []entity.CoinSummary, q Query) Page[entity.CoinSummary] {
	filtered := Filter(coins, q.Category)
	matched := Search(filtered, q.Search)
	sorted := Sort(matched, q.Sort.Field, q.Sort.Direction)
	return Paginate(sorted, q.Page, q.PageSize)
}

// Summary aggregates the market list for the stats header.
type Summary struct {
	Count          int     `json:"count"`
	Gainers        int     `json:"gainers"`
	Losers         int     `json:"losers"`
	TotalMarketCap float64 `json:"total_market_cap"`
}

// Stats summarises coins.
func Stats(coins []entity.CoinSummary) Summary {
	s := Summary{Count: len(coins)}
	for _, coin := range coins {
		s.TotalMarketCap += coin.MarketCap
		if CategoryGainers.Matches(coin) {
			s.Gainers++
		}
		if CategoryLosers.Matches(coin) {
			s.Losers++
		}
	}
	return s
}
