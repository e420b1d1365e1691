package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorNavy  = lipgloss.Color("#1B2A4A")
	ColorWhite = lipgloss.Color("#F5F5F5")
	ColorGray  = lipgloss.Color("245")
	ColorGreen = lipgloss.Color("#21D955")
	ColorRed   = lipgloss.Color("196")
	ColorAmber = lipgloss.Color("208")
	ColorBlue  = lipgloss.Color("39")
)

var (
	headerStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite).
			Bold(true).
			Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Foreground(ColorGray).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true).Underline(true).Padding(0, 1)

	columnHeaderStyle = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)
	selectedRowStyle  = lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorWhite)
	helpStyle         = lipgloss.NewStyle().Foreground(ColorGray)
	gainStyle         = lipgloss.NewStyle().Foreground(ColorGreen)
	lossStyle         = lipgloss.NewStyle().Foreground(ColorRed)
	warnStyle         = lipgloss.NewStyle().Foreground(ColorAmber)
	titleStyle        = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorRed).
			Padding(1, 2)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)

// changeStyle colours a 24h change by sign.
func changeStyle(p *float64) lipgloss.Style {
	switch {
	case p == nil:
		return helpStyle
	case *p > 0:
		return gainStyle
	case *p < 0:
		return lossStyle
	default:
		return lipgloss.NewStyle()
	}
}
