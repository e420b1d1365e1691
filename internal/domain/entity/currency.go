package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCurrency is returned when a currency code is outside the supported set.
var ErrUnknownCurrency = errors.New("unknown currency")

// Currency is the quote currency prices are displayed in.
type Currency struct {
	Name   string // "usd", "eur", "inr"
	Symbol string // "$", "€", "₹"
}

var (
	USD = Currency{Name: "usd", Symbol: "$"}
	EUR = Currency{Name: "eur", Symbol: "€"}
	INR = Currency{Name: "inr", Symbol: "₹"}
)

// DefaultCurrency is the currency a store starts with.
var DefaultCurrency = USD

// SupportedCurrencies returns the selectable currencies in display order.
func SupportedCurrencies() []Currency {
	return []Currency{USD, EUR, INR}
}

// ParseCurrency resolves a currency code (case-insensitive) to a supported Currency.
func ParseCurrency(name string) (Currency, error) {
	code := strings.ToLower(strings.TrimSpace(name))
	for _, c := range SupportedCurrencies() {
		if c.Name == code {
			return c, nil
		}
	}
	return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, name)
}

// Code returns the upper-case ISO-like code, e.g. "USD".
func (c Currency) Code() string {
	return strings.ToUpper(c.Name)
}

func (c Currency) String() string {
	return c.Name
}
