// Package tui implements the coinboard terminal UI on bubbletea.
//
// The model reads the shared market list through the store's subscription
// and keeps one listing.View per list screen. The coin screen is driven by a
// coin_detail.View, so only the most recently opened coin can land on screen.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/ports/inbound"
	"github.com/archon-research/cryptoplace/internal/services/coin_detail"
	"github.com/archon-research/cryptoplace/internal/services/content"
	"github.com/archon-research/cryptoplace/internal/services/listing"
)

// Screen identifies what the body of the UI shows.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenMarkets
	ScreenBlog
	ScreenPricing
	ScreenCoin // opened from a list, not part of the tab order
)

var tabOrder = []Screen{ScreenHome, ScreenMarkets, ScreenBlog, ScreenPricing}

// Title returns the tab label.
func (s Screen) Title() string {
	switch s {
	case ScreenHome:
		return "Home"
	case ScreenMarkets:
		return "Markets"
	case ScreenBlog:
		return "News"
	case ScreenPricing:
		return "Pricing"
	case ScreenCoin:
		return "Coin"
	default:
		return fmt.Sprintf("Screen(%d)", int(s))
	}
}

// MarketFeed is the market store as the UI uses it.
type MarketFeed interface {
	inbound.MarketStore
	Load(ctx context.Context) error
	Subscribe() (<-chan entity.FetchState, func())
}

// ContentPages serves the news and pricing screens.
type ContentPages interface {
	Blog(ctx context.Context, category, query string) (*content.BlogPage, error)
	Pricing(ctx context.Context, cycle entity.BillingCycle) (*content.PricingPage, error)
}

// Config holds configuration for the Model.
type Config struct {
	// HomePageSize is the page size of the home list.
	HomePageSize int

	// MarketPageSize is the page size of the full market list.
	MarketPageSize int

	// Location renders chart and article dates. Defaults to time.Local.
	Location *time.Location

	// Logger is the structured logger. The UI owns the terminal, so it
	// should write to a file.
	Logger *slog.Logger
}

// ConfigDefaults returns a config with default values.
func ConfigDefaults() Config {
	return Config{
		HomePageSize:   listing.HomePageSize,
		MarketPageSize: listing.MarketPageSize,
		Location:       time.Local,
		Logger:         slog.Default(),
	}
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	config Config
	keys   KeyMap
	help   help.Model
	logger *slog.Logger

	store   MarketFeed
	coins   *coin_detail.View
	content ContentPages

	updates     <-chan entity.FetchState
	unsubscribe func()

	screen     Screen
	prevScreen Screen

	market  entity.FetchState
	home    *listing.View
	markets *listing.View
	cursor  map[Screen]int

	searchInput textinput.Model
	searching   bool

	coin coin_detail.ViewState

	blog         *content.BlogPage
	blogCategory string
	blogErr      string

	pricing    *content.PricingPage
	cycle      entity.BillingCycle
	pricingErr string

	width  int
	height int
}

// NewModel creates the UI model. Fetches run with ctx; cancel it to abandon
// in-flight requests on exit.
func NewModel(ctx context.Context, config Config, store MarketFeed, coins inbound.CoinDetailFetcher, pages ContentPages) (*Model, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if pages == nil {
		return nil, fmt.Errorf("content pages are required")
	}
	coinView, err := coin_detail.NewView(coins)
	if err != nil {
		return nil, err
	}

	defaults := ConfigDefaults()
	if config.HomePageSize <= 0 {
		config.HomePageSize = defaults.HomePageSize
	}
	if config.MarketPageSize <= 0 {
		config.MarketPageSize = defaults.MarketPageSize
	}
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}

	homeQuery := listing.HomeQuery()
	homeQuery.PageSize = config.HomePageSize
	marketQuery := listing.MarketQuery()
	marketQuery.PageSize = config.MarketPageSize

	search := textinput.New()
	search.Placeholder = "Search by name or symbol..."
	search.CharLimit = 64

	updates, unsubscribe := store.Subscribe()

	m := &Model{
		ctx:          ctx,
		config:       config,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		logger:       config.Logger.With("component", "tui"),
		store:        store,
		coins:        coinView,
		content:      pages,
		updates:      updates,
		unsubscribe:  unsubscribe,
		screen:       ScreenHome,
		market:       store.State(),
		home:         listing.NewView(homeQuery),
		markets:      listing.NewView(marketQuery),
		cursor:       make(map[Screen]int),
		searchInput:  search,
		blogCategory: content.AllCategories,
		cycle:        entity.BillingMonthly,
	}
	m.applyMarketState(m.market)
	return m, nil
}

// Close stops the store subscription.
func (m *Model) Close() {
	m.unsubscribe()
}

// Screen returns the active screen.
func (m *Model) Screen() Screen {
	return m.screen
}

// listView returns the listing view of a list screen, or nil.
func (m *Model) listView() *listing.View {
	switch m.screen {
	case ScreenHome:
		return m.home
	case ScreenMarkets:
		return m.markets
	default:
		return nil
	}
}

func (m *Model) applyMarketState(s entity.FetchState) {
	m.market = s
	m.home.SetCoins(s.Coins)
	m.markets.SetCoins(s.Coins)
	m.clampCursor(ScreenHome, m.home)
	m.clampCursor(ScreenMarkets, m.markets)
}

func (m *Model) clampCursor(s Screen, v *listing.View) {
	n := len(v.Page().Items)
	if m.cursor[s] >= n {
		m.cursor[s] = max(n-1, 0)
	}
}
