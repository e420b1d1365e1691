// Package money formats prices, market caps and percentage changes for display.
//
// Amounts arrive as float64 from the market data provider; formatting goes
// through decimal.Decimal so rounding is exact in base 10.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is rendered for missing values.
const NotAvailable = "N/A"

// maxFractionDigits matches the default locale formatting of the site.
const maxFractionDigits = 3

var compactUnits = []struct {
	threshold decimal.Decimal
	suffix    string
}{
	{decimal.New(1, 12), "T"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 3), "K"},
}

// Grouped renders v with thousands separators and at most three fraction
// digits, e.g. 1234567.891 -> "1,234,567.891".
func Grouped(v float64) string {
	d := decimal.NewFromFloat(v).Round(maxFractionDigits)
	s := d.Abs().String()

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// Amount renders "<symbol> <grouped>", e.g. "$ 67,123.45".
func Amount(symbol string, v float64) string {
	return symbol + " " + Grouped(v)
}

// OptionalAmount is Amount for values the provider may omit.
func OptionalAmount(symbol string, v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return Amount(symbol, *v)
}

// Compact renders large amounts with a unit suffix and two decimals, e.g.
// 1.23e12 -> "$1.23T". Amounts below one thousand are grouped in full.
func Compact(symbol string, v float64) string {
	d := decimal.NewFromFloat(v)
	for _, unit := range compactUnits {
		if d.GreaterThanOrEqual(unit.threshold) {
			return symbol + d.Div(unit.threshold).StringFixed(2) + unit.suffix
		}
	}
	return symbol + Grouped(v)
}

// Percent renders a percentage change with an explicit sign for gains,
// e.g. "+5.25%", "-3.10%", or "N/A" when unknown.
func Percent(p *float64) string {
	if p == nil {
		return NotAvailable
	}
	d := decimal.NewFromFloat(*p)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}
