package model

import "strings"

type Currency string

// ParseCurrency normalizes user input into a currency code.
func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

// In reports whether c is one of the given currencies.
func (c Currency) In(list []Currency) bool {
	for _, candidate := range list {
		if c == candidate {
			return true
		}
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}

// Balances maps a currency to the amount held. Unknown currencies hold 0.
type Balances map[Currency]float64

func (b Balances) Of(c Currency) float64 {
	return b[c]
}
