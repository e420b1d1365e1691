package tui

import (
	"errors"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/services/coin_detail"
	"github.com/archon-research/cryptoplace/internal/services/content"
	"github.com/archon-research/cryptoplace/internal/services/listing"
	"github.com/archon-research/cryptoplace/internal/services/market_data"
)

// marketStateMsg carries a store snapshot from the subscription.
type marketStateMsg entity.FetchState

// marketFetchedMsg is sent when a list fetch started by the UI settles.
type marketFetchedMsg struct{ err error }

// coinLoadedMsg is sent when a coin page load settles.
type coinLoadedMsg struct{ err error }

type blogLoadedMsg struct {
	page *content.BlogPage
	err  error
}

type pricingLoadedMsg struct {
	page *content.PricingPage
	err  error
}

// Init starts the subscription and the first fetches.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.updates),
		m.loadMarketsCmd(),
		m.loadBlogCmd(),
		m.loadPricingCmd(),
	)
}

func waitForState(ch <-chan entity.FetchState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return marketStateMsg(s)
	}
}

func (m *Model) loadMarketsCmd() tea.Cmd {
	return func() tea.Msg {
		return marketFetchedMsg{err: m.store.Load(m.ctx)}
	}
}

func (m *Model) retryMarketsCmd() tea.Cmd {
	return func() tea.Msg {
		return marketFetchedMsg{err: m.store.Retry(m.ctx)}
	}
}

func (m *Model) setCurrencyCmd(c entity.Currency) tea.Cmd {
	return func() tea.Msg {
		return marketFetchedMsg{err: m.store.SetCurrency(m.ctx, c.Name)}
	}
}

func (m *Model) loadCoinCmd(id string, c entity.Currency) tea.Cmd {
	return func() tea.Msg {
		return coinLoadedMsg{err: m.coins.Load(m.ctx, id, c)}
	}
}

func (m *Model) retryCoinCmd() tea.Cmd {
	return func() tea.Msg {
		return coinLoadedMsg{err: m.coins.Retry(m.ctx)}
	}
}

func (m *Model) loadBlogCmd() tea.Cmd {
	category := m.blogCategory
	return func() tea.Msg {
		page, err := m.content.Blog(m.ctx, category, "")
		return blogLoadedMsg{page: page, err: err}
	}
}

func (m *Model) loadPricingCmd() tea.Cmd {
	cycle := m.cycle
	return func() tea.Msg {
		page, err := m.content.Pricing(m.ctx, cycle)
		return pricingLoadedMsg{page: page, err: err}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case marketStateMsg:
		m.applyMarketState(entity.FetchState(msg))
		return m, waitForState(m.updates)

	case marketFetchedMsg:
		if msg.err != nil && !errors.Is(msg.err, market_data.ErrSuperseded) {
			m.logger.Warn("market fetch failed", "error", msg.err)
		}
		m.applyMarketState(m.store.State())

	case coinLoadedMsg:
		if errors.Is(msg.err, coin_detail.ErrSuperseded) {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("coin fetch failed", "error", msg.err)
		}
		m.coin = m.coins.State()

	case blogLoadedMsg:
		if msg.err != nil {
			m.logger.Error("loading blog failed", "error", msg.err)
			m.blogErr = msg.err.Error()
			return m, nil
		}
		m.blog, m.blogErr = msg.page, ""

	case pricingLoadedMsg:
		if msg.err != nil {
			m.logger.Error("loading pricing failed", "error", msg.err)
			m.pricingErr = msg.err.Error()
			return m, nil
		}
		m.pricing, m.pricingErr = msg.page, ""
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m, m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.nextTab()
		return m, nil
	case key.Matches(msg, m.keys.Currency):
		return m, m.cycleCurrency()
	case key.Matches(msg, m.keys.Retry):
		return m, m.retry()
	}

	switch m.screen {
	case ScreenHome, ScreenMarkets:
		return m, m.handleListKey(msg)
	case ScreenCoin:
		if key.Matches(msg, m.keys.Back) {
			m.screen = m.prevScreen
		}
	case ScreenBlog:
		if key.Matches(msg, m.keys.Category) && m.blog != nil {
			m.blogCategory = nextOf(m.blog.Categories, m.blogCategory)
			return m, m.loadBlogCmd()
		}
	case ScreenPricing:
		if key.Matches(msg, m.keys.Cycle) {
			if m.cycle == entity.BillingMonthly {
				m.cycle = entity.BillingYearly
			} else {
				m.cycle = entity.BillingMonthly
			}
			return m, m.loadPricingCmd()
		}
	}
	return m, nil
}

func (m *Model) nextTab() {
	current := m.screen
	if current == ScreenCoin {
		current = m.prevScreen
	}
	i := slices.Index(tabOrder, current)
	m.screen = tabOrder[(i+1)%len(tabOrder)]
}

// cycleCurrency switches to the next supported currency. An open coin page
// is reloaded in the new currency.
func (m *Model) cycleCurrency() tea.Cmd {
	next := nextOf(entity.SupportedCurrencies(), m.store.Currency())
	cmd := m.setCurrencyCmd(next)
	if m.screen == ScreenCoin && m.coin.CoinID != "" {
		m.coin = coin_detail.ViewState{CoinID: m.coin.CoinID, Currency: next, Loading: true}
		return tea.Batch(cmd, m.loadCoinCmd(m.coin.CoinID, next))
	}
	return cmd
}

func (m *Model) retry() tea.Cmd {
	switch m.screen {
	case ScreenCoin:
		if m.coin.CoinID == "" {
			return nil
		}
		m.coin.Loading = true
		return m.retryCoinCmd()
	case ScreenBlog:
		return m.loadBlogCmd()
	case ScreenPricing:
		return m.loadPricingCmd()
	default:
		return m.retryMarketsCmd()
	}
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	v := m.listView()
	items := v.Page().Items

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.screen] > 0 {
			m.cursor[m.screen]--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor[m.screen] < len(items)-1 {
			m.cursor[m.screen]++
		}
	case key.Matches(msg, m.keys.PrevPage):
		if v.Prev() {
			m.cursor[m.screen] = 0
		}
	case key.Matches(msg, m.keys.NextPage):
		if v.Next() {
			m.cursor[m.screen] = 0
		}
	case key.Matches(msg, m.keys.Open):
		if i := m.cursor[m.screen]; i < len(items) {
			return m.openCoin(items[i].ID)
		}
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchInput.SetValue(v.Query().Search)
		return m.searchInput.Focus()
	case key.Matches(msg, m.keys.Category):
		v.SetCategory(nextOf(listing.Categories(), v.Query().Category))
		m.cursor[m.screen] = 0
	case key.Matches(msg, m.keys.Sort):
		v.SelectSort(nextOf(listing.SortFields(), v.Query().Sort.Field))
		m.clampCursor(m.screen, v)
	case key.Matches(msg, m.keys.Order):
		if field := v.Query().Sort.Field; field != listing.SortNone {
			v.SelectSort(field)
		}
	}
	return nil
}

func (m *Model) handleSearchInput(msg tea.KeyMsg) tea.Cmd {
	v := m.listView()
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		v.SetSearch("")
		m.cursor[m.screen] = 0
		return nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return nil
	default:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		v.SetSearch(m.searchInput.Value())
		m.cursor[m.screen] = 0
		return cmd
	}
}

func (m *Model) openCoin(id string) tea.Cmd {
	m.prevScreen = m.screen
	m.screen = ScreenCoin
	currency := m.store.Currency()
	m.coin = coin_detail.ViewState{CoinID: id, Currency: currency, Loading: true}
	return m.loadCoinCmd(id, currency)
}

// nextOf returns the element after current, wrapping around. The first
// element is returned when current is absent.
func nextOf[T comparable](items []T, current T) T {
	i := slices.Index(items, current)
	return items[(i+1)%len(items)]
}
