package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/pkg/money"
	"github.com/archon-research/cryptoplace/internal/services/content"
	"github.com/archon-research/cryptoplace/internal/services/listing"
)

const defaultWidth = 100

// View renders the UI.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case ScreenHome, ScreenMarkets:
		body = m.renderList()
	case ScreenCoin:
		body = m.renderCoin()
	case ScreenBlog:
		body = m.renderBlog()
	case ScreenPricing:
		body = m.renderPricing()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusLine(),
		helpStyle.Render(m.help.View(m.keys)),
	)
}

func (m *Model) contentWidth() int {
	if m.width > 0 {
		return m.width
	}
	return defaultWidth
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, len(tabOrder))
	active := m.screen
	if active == ScreenCoin {
		active = m.prevScreen
	}
	for _, s := range tabOrder {
		if s == active {
			tabs = append(tabs, activeTabStyle.Render(s.Title()))
		} else {
			tabs = append(tabs, tabStyle.Render(s.Title()))
		}
	}
	currency := m.store.Currency()
	brand := headerStyle.Render("Cryptoplace")
	cur := headerStyle.Render(fmt.Sprintf("%s %s", currency.Symbol, currency.Code()))
	return lipgloss.JoinHorizontal(lipgloss.Top, brand, " ", strings.Join(tabs, ""), " ", cur)
}

func (m *Model) renderStatusLine() string {
	s := m.market
	var status string
	switch s.Phase() {
	case entity.PhaseLoading:
		status = "Loading market data..."
	case entity.PhaseError:
		status = warnStyle.Render("Last update failed")
	case entity.PhaseSuccess:
		status = "Updated " + s.UpdatedAt.In(m.config.Location).Format("15:04:05")
	default:
		status = "Idle"
	}
	return helpStyle.Render(fmt.Sprintf("%d coins | ", len(s.Coins))) + status
}

func (m *Model) renderList() string {
	s := m.market
	if len(s.Coins) == 0 {
		switch s.Phase() {
		case entity.PhaseError:
			return renderErrorBox("Could not load market data", s.Err, "Press r to retry.")
		default:
			return helpStyle.Render("Loading market data...")
		}
	}

	v := m.listView()
	page := v.Page()
	q := v.Query()
	var b strings.Builder

	if m.screen == ScreenHome {
		stats := listing.Stats(s.Coins)
		fmt.Fprintf(&b, "Market cap %s | %s gainers | %s losers\n",
			money.Compact(s.Currency.Symbol, stats.TotalMarketCap),
			gainStyle.Render(fmt.Sprint(stats.Gainers)),
			lossStyle.Render(fmt.Sprint(stats.Losers)))
	}

	b.WriteString(m.renderQueryLine(q))
	b.WriteString("\n\n")

	if s.Err != "" {
		b.WriteString(warnStyle.Render("Showing cached data: " + s.Err + " (r to retry)"))
		b.WriteString("\n")
	}

	b.WriteString(columnHeaderStyle.Render(fmt.Sprintf("%-4s %-18s %-6s %18s %9s %12s", "#", "Name", "Symbol", "Price", "24h", "Market Cap")))
	b.WriteString("\n")

	if len(page.Items) == 0 {
		b.WriteString(helpStyle.Render("No coins match."))
		b.WriteString("\n")
	}
	for i, coin := range page.Items {
		b.WriteString(m.renderCoinRow(coin, i == m.cursor[m.screen]))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nPage %d/%d | %d coins", page.Number, page.TotalPages, page.TotalItems)
	return b.String()
}

func (m *Model) renderQueryLine(q listing.Query) string {
	search := q.Search
	if m.searching {
		search = m.searchInput.View()
	} else if search == "" {
		search = helpStyle.Render("(none)")
	}

	sort := "default"
	if q.Sort.Field != listing.SortNone {
		arrow := "↑"
		if q.Sort.Direction == listing.Descending {
			arrow = "↓"
		}
		sort = string(q.Sort.Field) + " " + arrow
	}
	return fmt.Sprintf("Search: %s  Category: %s  Sort: %s", search, q.Category.Label(), sort)
}

func (m *Model) renderCoinRow(coin entity.CoinSummary, selected bool) string {
	rank := "-"
	if coin.MarketCapRank != nil {
		rank = fmt.Sprint(*coin.MarketCapRank)
	}
	cur := m.market.Currency
	line := fmt.Sprintf("%-4s %-18s %-6s %18s ",
		rank,
		truncate(coin.Name, 18),
		truncate(coin.DisplaySymbol(), 6),
		money.Amount(cur.Symbol, coin.CurrentPrice),
	)
	change := changeStyle(coin.PriceChange24h).Render(fmt.Sprintf("%9s", money.Percent(coin.PriceChange24h)))
	marketCap := fmt.Sprintf(" %12s", money.Compact(cur.Symbol, coin.MarketCap))

	if selected {
		return selectedRowStyle.Render(line) + change + selectedRowStyle.Render(marketCap)
	}
	return line + change + marketCap
}

func (m *Model) renderCoin() string {
	c := m.coin
	switch {
	case c.NotFound:
		return renderErrorBox("Coin not found", fmt.Sprintf("No coin with id %q.", c.CoinID), "Press esc to go back.")
	case c.Err != "":
		return renderErrorBox("Could not load "+c.CoinID, c.Err, "Press r to retry or esc to go back.")
	case c.Page == nil:
		return helpStyle.Render(fmt.Sprintf("Loading %s...", c.CoinID))
	}

	p := c.Page
	q := p.Detail.Quote(p.Currency)
	sym := p.Currency.Symbol

	title := fmt.Sprintf("%s (%s)", p.Detail.Name, strings.ToUpper(p.Detail.Symbol))
	if p.Detail.MarketCapRank != nil {
		title += fmt.Sprintf("  Rank #%d", *p.Detail.MarketCapRank)
	}
	if c.Loading {
		title += helpStyle.Render("  refreshing...")
	}

	quote := fmt.Sprintf("Price %s  Market cap %s\n24h high %s  24h low %s",
		money.OptionalAmount(sym, q.CurrentPrice),
		money.OptionalAmount(sym, q.MarketCap),
		money.OptionalAmount(sym, q.High24h),
		money.OptionalAmount(sym, q.Low24h),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		quote,
		"",
		sectionStyle.Render(renderPriceChart(p.History, p.Currency, m.contentWidth()-4, m.config.Location)),
	)
}

func (m *Model) renderBlog() string {
	if m.blogErr != "" {
		return renderErrorBox("Could not load news", m.blogErr, "Press r to retry.")
	}
	if m.blog == nil {
		return helpStyle.Render("Loading news...")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s  (f to change)\n\n", m.blog.Category)
	if len(m.blog.Articles) == 0 {
		b.WriteString(helpStyle.Render("No articles found."))
	}

	wrap := lipgloss.NewStyle().Width(m.contentWidth() - 2)
	for _, a := range m.blog.Articles {
		b.WriteString(titleStyle.Render(a.Title))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%s | %s | %s | %s",
			a.Author, content.FormatDate(a.PublishedAt, m.config.Location), a.ReadTime, a.Category)))
		b.WriteString("\n")
		b.WriteString(wrap.Render(a.Excerpt))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m *Model) renderPricing() string {
	if m.pricingErr != "" {
		return renderErrorBox("Could not load pricing", m.pricingErr, "Press r to retry.")
	}
	if m.pricing == nil {
		return helpStyle.Render("Loading pricing...")
	}
	p := m.pricing

	var b strings.Builder
	fmt.Fprintf(&b, "Billing: %s  (b to switch)\n\n", p.Cycle)

	plans := make([]string, 0, len(p.Plans))
	for _, plan := range p.Plans {
		plans = append(plans, sectionStyle.Width(30).Render(renderPlan(plan, p.Cycle)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, plans...))
	b.WriteString("\n\n")

	b.WriteString(columnHeaderStyle.Render("Add-ons"))
	b.WriteString("\n")
	for _, a := range p.AddOns {
		fmt.Fprintf(&b, "  %-24s $%d/month  %s\n", a.Name, a.Price, helpStyle.Render(a.Description))
	}

	b.WriteString("\n")
	b.WriteString(columnHeaderStyle.Render("FAQ"))
	b.WriteString("\n")
	for _, f := range p.FAQs {
		fmt.Fprintf(&b, "  %s\n  %s\n", f.Question, helpStyle.Render(f.Answer))
	}
	return b.String()
}

func renderPlan(p content.PlanOffer, cycle entity.BillingCycle) string {
	var b strings.Builder
	name := p.Name
	if p.Popular {
		name += " " + gainStyle.Render("(popular)")
	}
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")

	unit := "month"
	if cycle == entity.BillingYearly {
		unit = "year"
	}
	fmt.Fprintf(&b, "$%d/%s", p.Price, unit)
	if cycle == entity.BillingYearly && p.SavingsPercent > 0 {
		fmt.Fprintf(&b, " %s", gainStyle.Render(fmt.Sprintf("save %d%%", p.SavingsPercent)))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(p.Description))
	b.WriteString("\n")
	for _, f := range p.Features {
		b.WriteString("+ " + f + "\n")
	}
	for _, l := range p.Limitations {
		b.WriteString(helpStyle.Render("- "+l) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderErrorBox(title, detail, hint string) string {
	return errorBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lossStyle.Bold(true).Render(title),
		detail,
		"",
		helpStyle.Render(hint),
	))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
