package listing

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

var (
	// ErrUnknownSortField is returned when a sort field name is not recognised.
	ErrUnknownSortField = errors.New("unknown sort field")

	// ErrUnknownDirection is returned when a direction is neither asc nor desc.
	ErrUnknownDirection = errors.New("unknown sort direction")
)

// SortField names the column a list is ordered by.
type SortField string

const (
	// SortNone keeps the provider order.
	SortNone      SortField = ""
	SortRank      SortField = "rank"
	SortName      SortField = "name"
	SortSymbol    SortField = "symbol"
	SortPrice     SortField = "price"
	SortMarketCap SortField = "market_cap"
	SortChange24h SortField = "change_24h"
	SortVolume    SortField = "volume"
)

// SortFields returns every sortable column.
func SortFields() []SortField {
	return []SortField{SortRank, SortName, SortSymbol, SortPrice, SortMarketCap, SortChange24h, SortVolume}
}

// ParseSortField resolves a field name. The empty string means SortNone.
func ParseSortField(name string) (SortField, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SortNone, nil
	}
	for _, f := range SortFields() {
		if string(f) == name {
			return f, nil
		}
	}
	return SortNone, fmt.Errorf("%w: %q", ErrUnknownSortField, name)
}

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection resolves a direction name. The empty string means Ascending.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: %q", ErrUnknownDirection, name)
	}
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// SortState is the active sort column and direction.
type SortState struct {
	Field     SortField
	Direction Direction
}

// Select returns the state after a column header is chosen: the active
// column flips direction, any other column becomes active ascending.
func (s SortState) Select(field SortField) SortState {
	if field == s.Field {
		return SortState{Field: field, Direction: s.Direction.Toggle()}
	}
	return SortState{Field: field, Direction: Ascending}
}

// Sort returns a sorted copy of coins. The sort is stable, so ties keep
// their input order. Coins without a rank or 24h change sort after all
// coins that have one, in both directions. SortNone returns coins unchanged.
func Sort(coins []entity.CoinSummary, field SortField, direction Direction) []entity.CoinSummary {
	if field == SortNone {
		return coins
	}
	out := slices.Clone(coins)
	desc := direction == Descending

	slices.SortStableFunc(out, func(a, b entity.CoinSummary) int {
		switch field {
		case SortRank:
			return compareOptional(a.MarketCapRank, b.MarketCapRank, desc)
		case SortChange24h:
			return compareOptional(a.PriceChange24h, b.PriceChange24h, desc)
		case SortName:
			return directed(strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), desc)
		case SortSymbol:
			return directed(strings.Compare(strings.ToLower(a.Symbol), strings.ToLower(b.Symbol)), desc)
		case SortPrice:
			return directed(cmp.Compare(a.CurrentPrice, b.CurrentPrice), desc)
		case SortMarketCap:
			return directed(cmp.Compare(a.MarketCap, b.MarketCap), desc)
		case SortVolume:
			return directed(cmp.Compare(a.TotalVolume, b.TotalVolume), desc)
		default:
			return 0
		}
	})
	return out
}

func directed(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

// compareOptional orders present values by direction and puts nil last.
func compareOptional[T cmp.Ordered](a, b *T, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return directed(cmp.Compare(*a, *b), desc)
	}
}
