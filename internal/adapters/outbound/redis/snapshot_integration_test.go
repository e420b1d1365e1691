//go:build integration

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

// setupRedis creates a Redis container and returns a connected SnapshotCache.
func setupRedis(t *testing.T, ttl time.Duration) (*SnapshotCache, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	cache, err := NewSnapshotCache(Config{
		Addr:      fmt.Sprintf("%s:%s", host, port.Port()),
		TTL:       ttl,
		KeyPrefix: "test",
	}, nil)
	if err != nil {
		t.Fatalf("failed to create snapshot cache: %v", err)
	}

	for i := 0; i < 30; i++ {
		if err := cache.Ping(ctx); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	cleanup := func() {
		cache.Close()
		container.Terminate(ctx)
	}
	return cache, cleanup
}

func sampleSnapshot(currency string) outbound.MarketSnapshot {
	rank := 1
	return outbound.MarketSnapshot{
		Currency:  currency,
		FetchedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Coins: []entity.CoinSummary{
			{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: 67000, MarketCapRank: &rank},
		},
	}
}

func TestPing_Success(t *testing.T) {
	cache, cleanup := setupRedis(t, time.Hour)
	defer cleanup()

	if err := cache.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestSetAndGet(t *testing.T) {
	cache, cleanup := setupRedis(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, sampleSnapshot("usd")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := cache.Get(ctx, "usd")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit, got miss")
	}
	if len(got.Coins) != 1 || got.Coins[0].ID != "bitcoin" {
		t.Errorf("unexpected coins: %+v", got.Coins)
	}

	if _, ok, err := cache.Get(ctx, "eur"); err != nil || ok {
		t.Errorf("expected miss for eur, got ok=%v err=%v", ok, err)
	}
}

func TestDelete(t *testing.T) {
	cache, cleanup := setupRedis(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, sampleSnapshot("inr")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cache.Delete(ctx, "inr"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, err := cache.Get(ctx, "inr"); err != nil || ok {
		t.Errorf("expected miss after delete, got ok=%v err=%v", ok, err)
	}
}

func TestTTL_Expires(t *testing.T) {
	cache, cleanup := setupRedis(t, time.Second)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, sampleSnapshot("usd")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(1500 * time.Millisecond)

	if _, ok, err := cache.Get(ctx, "usd"); err != nil || ok {
		t.Errorf("expected expiry, got ok=%v err=%v", ok, err)
	}
}

func TestGet_UnreadableValueIsMiss(t *testing.T) {
	cache, cleanup := setupRedis(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	if err := cache.client.Set(ctx, cache.key("usd"), "garbage", time.Hour).Err(); err != nil {
		t.Fatalf("raw set: %v", err)
	}
	if _, ok, err := cache.Get(ctx, "usd"); err != nil || ok {
		t.Errorf("expected miss, got ok=%v err=%v", ok, err)
	}
}
