package outbound

import (
	"context"
	"time"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
)

// MarketSnapshot is a market list as last fetched for one currency.
type MarketSnapshot struct {
	Currency  string
	Coins     []entity.CoinSummary
	FetchedAt time.Time
}

// MarketSnapshotCache keeps the last good market list per currency so a
// failed fetch can still show data.
type MarketSnapshotCache interface {
	// Get returns the snapshot for currency. ok is false on a miss.
	Get(ctx context.Context, currency string) (snapshot MarketSnapshot, ok bool, err error)

	// Set stores the snapshot, replacing any previous one for its currency.
	Set(ctx context.Context, snapshot MarketSnapshot) error
}
