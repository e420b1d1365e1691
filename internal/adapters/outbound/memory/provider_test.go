package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/outbound"
)

func TestMarketProvider_GetMarketsPaginates(t *testing.T) {
	p := NewMarketProvider()
	p.SetMarkets(entity.USD, []entity.CoinSummary{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	coins, err := p.GetMarkets(context.Background(), outbound.MarketsQuery{Currency: entity.USD, PerPage: 2, Page: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coins) != 1 || coins[0].ID != "c" {
		t.Errorf("expected [c], got %+v", coins)
	}

	coins, _ = p.GetMarkets(context.Background(), outbound.MarketsQuery{Currency: entity.USD, PerPage: 2, Page: 5})
	if len(coins) != 0 {
		t.Errorf("expected empty page, got %d coins", len(coins))
	}
}

func TestMarketProvider_Hold(t *testing.T) {
	p := NewMarketProvider()
	p.SetMarkets(entity.USD, []entity.CoinSummary{{ID: "bitcoin"}})
	release := p.Hold(entity.USD)

	done := make(chan []entity.CoinSummary, 1)
	go func() {
		coins, _ := p.GetMarkets(context.Background(), outbound.DefaultMarketsQuery(entity.USD))
		done <- coins
	}()

	select {
	case <-done:
		t.Fatal("held call returned before release")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	release()

	select {
	case coins := <-done:
		if len(coins) != 1 {
			t.Errorf("expected 1 coin, got %d", len(coins))
		}
	case <-time.After(time.Second):
		t.Fatal("held call did not return after release")
	}
}

func TestMarketProvider_ScriptedFailures(t *testing.T) {
	p := NewMarketProvider()
	boom := errors.New("boom")
	p.FailMarkets(boom)
	p.FailChart(boom)

	if _, err := p.GetMarkets(context.Background(), outbound.DefaultMarketsQuery(entity.USD)); !errors.Is(err, boom) {
		t.Errorf("expected boom from GetMarkets, got %v", err)
	}
	if _, err := p.GetMarketChart(context.Background(), outbound.ChartQuery{CoinID: "x", Currency: entity.USD}); !errors.Is(err, boom) {
		t.Errorf("expected boom from GetMarketChart, got %v", err)
	}
	if _, err := p.GetCoinDetail(context.Background(), "missing"); !errors.Is(err, entity.ErrCoinNotFound) {
		t.Errorf("expected ErrCoinNotFound, got %v", err)
	}

	if got := p.CallCount("markets:usd"); got != 1 {
		t.Errorf("expected 1 markets call, got %d", got)
	}
}

func TestNewSampleProvider(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	p := NewSampleProvider(now)

	usd, _ := p.GetMarkets(context.Background(), outbound.DefaultMarketsQuery(entity.USD))
	eur, _ := p.GetMarkets(context.Background(), outbound.DefaultMarketsQuery(entity.EUR))
	if len(usd) == 0 || len(usd) != len(eur) {
		t.Fatalf("expected equal non-empty markets, got %d usd and %d eur", len(usd), len(eur))
	}
	if eur[0].CurrentPrice >= usd[0].CurrentPrice {
		t.Errorf("expected eur price below usd price, got %v >= %v", eur[0].CurrentPrice, usd[0].CurrentPrice)
	}

	series, err := p.GetMarketChart(context.Background(), outbound.ChartQuery{CoinID: "bitcoin", Currency: entity.INR, Days: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Points) != 11 {
		t.Errorf("expected 11 daily points, got %d", len(series.Points))
	}
	last := series.Points[len(series.Points)-1].Timestamp
	if !last.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected series to end today, got %v", last)
	}
}
