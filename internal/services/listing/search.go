package listing

import (
	"strings"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

// Search returns the coins whose name or symbol contains query, ignoring
// case. A blank query returns coins unchanged.
func Search(coins []entity.CoinSummary, query string) []entity.CoinSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return coins
	}
	out := make([]entity.CoinSummary, 0, len(coins))
	for _, coin := range coins {
		if strings.Contains(strings.ToLower(coin.Name), query) ||
			strings.Contains(strings.ToLower(coin.Symbol), query) {
			out = append(out, coin)
		}
	}
	return out
}
