// Package redis provides a Redis implementation of the MarketSnapshotCache
// port.
//
// Each currency's last good market list is stored as one JSON value under
// prefix:markets:<currency> and expires after the configured TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

// Compile-time check that SnapshotCache implements outbound.MarketSnapshotCache
var _ outbound.MarketSnapshotCache = (*SnapshotCache)(nil)

// Config holds Redis cache configuration.
type Config struct {
	// Addr is the Redis server address (e.g., "localhost:6379")
	Addr string
	// Password for Redis authentication (empty for no auth)
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// TTL is how long a snapshot lives before expiring
	TTL time.Duration
	// KeyPrefix is prepended to all cache keys
	KeyPrefix string
}

// ConfigDefaults returns sensible defaults for Redis cache configuration.
func ConfigDefaults() Config {
	return Config{
		Addr:      "localhost:6379",
		TTL:       time.Hour,
		KeyPrefix: "cryptoplace",
	}
}

// snapshotRecord is the stored JSON form of a snapshot.
type snapshotRecord struct {
	Currency  string       `json:"currency"`
	FetchedAt time.Time    `json:"fetched_at"`
	Coins     []coinRecord `json:"coins"`
}

type coinRecord struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	Image          string   `json:"image,omitempty"`
	CurrentPrice   float64  `json:"current_price"`
	MarketCap      float64  `json:"market_cap"`
	MarketCapRank  *int     `json:"market_cap_rank,omitempty"`
	PriceChange24h *float64 `json:"price_change_percentage_24h,omitempty"`
	TotalVolume    float64  `json:"total_volume"`
}

// SnapshotCache is a Redis implementation of the outbound.MarketSnapshotCache port.
type SnapshotCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *slog.Logger
}

// NewSnapshotCache creates a new Redis snapshot cache.
func NewSnapshotCache(cfg Config, logger *slog.Logger) (*SnapshotCache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("TTL must not be negative, got %s", cfg.TTL)
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = ConfigDefaults().KeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "redis-cache")

	return &SnapshotCache{
		client:    client,
		ttl:       cfg.TTL,
		keyPrefix: cfg.KeyPrefix,
		logger:    logger,
	}, nil
}

// Ping checks the Redis connection.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}

// key generates a cache key in the format prefix:markets:currency
func (c *SnapshotCache) key(currency string) string {
	return fmt.Sprintf("%s:markets:%s", c.keyPrefix, strings.ToLower(currency))
}

// Set caches the snapshot for its currency.
func (c *SnapshotCache) Set(ctx context.Context, snapshot outbound.MarketSnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(snapshot.Currency), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache markets: %w", err)
	}
	return nil
}

// Get retrieves the snapshot for currency. Returns ok=false on a cache miss.
func (c *SnapshotCache) Get(ctx context.Context, currency string) (outbound.MarketSnapshot, bool, error) {
	data, err := c.client.Get(ctx, c.key(currency)).Bytes()
	if errors.Is(err, redis.Nil) {
		return outbound.MarketSnapshot{}, false, nil
	}
	if err != nil {
		return outbound.MarketSnapshot{}, false, fmt.Errorf("failed to get markets: %w", err)
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		c.logger.Warn("discarding unreadable snapshot", "key", c.key(currency), "error", err)
		return outbound.MarketSnapshot{}, false, nil
	}
	return snapshot, true, nil
}

// Delete removes the snapshot for currency.
func (c *SnapshotCache) Delete(ctx context.Context, currency string) error {
	if err := c.client.Del(ctx, c.key(currency)).Err(); err != nil {
		return fmt.Errorf("failed to delete markets: %w", err)
	}
	return nil
}

func encodeSnapshot(s outbound.MarketSnapshot) ([]byte, error) {
	rec := snapshotRecord{
		Currency:  strings.ToLower(s.Currency),
		FetchedAt: s.FetchedAt.UTC(),
		Coins:     make([]coinRecord, len(s.Coins)),
	}
	for i, coin := range s.Coins {
		rec.Coins[i] = coinRecord(coin)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (outbound.MarketSnapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return outbound.MarketSnapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	coins := make([]entity.CoinSummary, len(rec.Coins))
	for i, coin := range rec.Coins {
		coins[i] = entity.CoinSummary(coin)
	}
	return outbound.MarketSnapshot{
		Currency:  rec.Currency,
		Coins:     coins,
		FetchedAt: rec.FetchedAt,
	}, nil
}
