package coin_detail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/inbound"
)

var (
	// ErrSuperseded is returned to a Load whose result was dropped because a
	// newer Load had started.
	ErrSuperseded = errors.New("coin page request superseded")

	// ErrNothingToRetry is returned by Retry before any Load.
	ErrNothingToRetry = errors.New("no coin page requested yet")
)

// ViewState is what the coin screen renders.
type ViewState struct {
	CoinID   string
	Currency entity.Currency
	Page     *entity.CoinPage // nil unless the last load succeeded
	Loading  bool
	Err      string
	NotFound bool
}

// View drives the coin screen. Every Load re-fetches; pages are never cached
// across navigations. Only the most recent Load can change the state.
type View struct {
	fetcher inbound.CoinDetailFetcher

	mu         sync.Mutex
	state      ViewState
	generation uint64
	cancel     context.CancelFunc
}

// NewView creates a View backed by fetcher.
func NewView(fetcher inbound.CoinDetailFetcher) (*View, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &View{fetcher: fetcher}, nil
}

// State returns a snapshot of the view state.
func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Load fetches the page for (coinID, currency), replacing whatever is on
// screen. A failure clears the page.
func (v *View) Load(ctx context.Context, coinID string, currency entity.Currency) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	if v.cancel != nil {
		v.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	if v.state.CoinID != coinID || v.state.Currency != currency {
		v.state.Page = nil
	}
	v.state.CoinID = coinID
	v.state.Currency = currency
	v.state.Loading = true
	v.state.Err = ""
	v.state.NotFound = false
	v.mu.Unlock()
	defer cancel()

	page, err := v.fetcher.Fetch(fetchCtx, coinID, currency)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return ErrSuperseded
	}

	v.cancel = nil
	v.state.Loading = false
	if err != nil {
		v.state.Page = nil
		v.state.Err = err.Error()
		v.state.NotFound = errors.Is(err, entity.ErrCoinNotFound)
		return err
	}
	v.state.Page = page
	return nil
}

// Retry re-runs the last Load.
func (v *View) Retry(ctx context.Context) error {
	v.mu.Lock()
	coinID, currency := v.state.CoinID, v.state.Currency
	v.mu.Unlock()

	if coinID == "" {
		return ErrNothingToRetry
	}
	return v.Load(ctx, coinID, currency)
}
