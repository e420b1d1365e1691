package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

// ErrUnknownCategory is returned when a category name is not in the filter vocabulary.
var ErrUnknownCategory = errors.New("unknown category")

// Category selects a subset of the market list.
type Category string

const (
	CategoryAll     Category = "all"
	CategoryGainers Category = "gainers"
	CategoryLosers  Category = "losers"
	CategoryTop100  Category = "top100"
)

// Categories returns the filter vocabulary in display order.
func Categories() []Category {
	return []Category{CategoryAll, CategoryGainers, CategoryLosers, CategoryTop100}
}

// ParseCategory resolves a category name. The empty string means CategoryAll.
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return CategoryAll, nil
	}
	for _, c := range Categories() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Label returns the human-readable name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryGainers:
		return "Gainers"
	case CategoryLosers:
		return "Losers"
	case CategoryTop100:
		return "Top 100"
	default:
		return "All"
	}
}

// Matches reports whether coin belongs to the category. Coins without a 24h
// change or a rank never match the predicates that need them.
func (c Category) Matches(coin entity.CoinSummary) bool {
	switch c {
	case CategoryGainers:
		return coin.PriceChange24h != nil && *coin.PriceChange24h > 0
	case CategoryLosers:
		return coin.PriceChange24h != nil && *coin.PriceChange24h < 0
	case CategoryTop100:
		return coin.MarketCapRank != nil && *coin.MarketCapRank <= 100
	default:
		return true
	}
}

// Filter returns the coins in category, in input order.
func Filter(coins []entity.CoinSummary, category Category) []entity.CoinSummary {
	if category == CategoryAll || category == "" {
		return coins
	}
	out := make([]entity.CoinSummary, 0, len(coins))
	for _, coin := range coins {
		if category.Matches(coin) {
			out = append(out, coin)
		}
	}
	return out
}
