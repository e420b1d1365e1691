package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/archon-research/cryptoplace/internal/domain/entity"
	"github.com/archon-research/cryptoplace/internal/pkg/money"
)

const (
	minChartWidth = 30
	chartHeight   = 12
)

// renderPriceChart draws the price history as a braille time series with a
// min/max header.
func renderPriceChart(h entity.HistoricalSeries, currency entity.Currency, width int, loc *time.Location) string {
	if h.IsEmpty() {
		return helpStyle.Render("No price history available")
	}

	chartWidth := max(width-4, minChartWidth)

	lowest, highest := h.Points[0].Price, h.Points[0].Price
	chart := timeserieslinechart.New(chartWidth, chartHeight)
	for _, p := range h.Points {
		lowest = min(lowest, p.Price)
		highest = max(highest, p.Price)
		chart.Push(timeserieslinechart.TimePoint{Time: p.Timestamp, Value: p.Price})
	}
	chart.DrawBraille()

	labels := h.Chart(loc)
	leftTitle := fmt.Sprintf("Price history %s to %s", labels[0].Label, labels[len(labels)-1].Label)
	rightStats := fmt.Sprintf("Low: %s | High: %s",
		money.Amount(currency.Symbol, lowest), money.Amount(currency.Symbol, highest))

	header := leftTitle
	if spacer := chartWidth - lipgloss.Width(leftTitle) - lipgloss.Width(rightStats); spacer > 0 {
		header = leftTitle + strings.Repeat(" ", spacer) + rightStats
	}

	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(header), chart.View())
}
