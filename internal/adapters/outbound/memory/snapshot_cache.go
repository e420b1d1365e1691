package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

// Compile-time check that SnapshotCache implements outbound.MarketSnapshotCache
var _ outbound.MarketSnapshotCache = (*SnapshotCache)(nil)

// SnapshotCache is an in-memory MarketSnapshotCache without expiry.
type SnapshotCache struct {
	mu        sync.Mutex
	snapshots map[string]outbound.MarketSnapshot
	setErr    error
	getErr    error
}

// NewSnapshotCache creates an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{snapshots: make(map[string]outbound.MarketSnapshot)}
}

// Get returns the snapshot for currency.
func (c *SnapshotCache) Get(_ context.Context, currency string) (outbound.MarketSnapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return outbound.MarketSnapshot{}, false, c.getErr
	}
	s, ok := c.snapshots[strings.ToLower(currency)]
	if !ok {
		return outbound.MarketSnapshot{}, false, nil
	}
	s.Coins = append([]entity.CoinSummary(nil), s.Coins...)
	return s, true, nil
}

// Set stores a copy of snapshot.
func (c *SnapshotCache) Set(_ context.Context, snapshot outbound.MarketSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	snapshot.Currency = strings.ToLower(snapshot.Currency)
	snapshot.Coins = append([]entity.CoinSummary(nil), snapshot.Coins...)
	c.snapshots[snapshot.Currency] = snapshot
	return nil
}

// FailGet makes every Get return err. Pass nil to clear.
func (c *SnapshotCache) FailGet(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getErr = err
}

// FailSet makes every Set return err. Pass nil to clear.
func (c *SnapshotCache) FailSet(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setErr = err
}

// Len returns the number of cached currencies.
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snapshots)
}
