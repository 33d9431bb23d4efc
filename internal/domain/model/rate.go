package model

import "time"

// RateTable anchors every rate to a single base currency: one unit of Base
// equals Rates[code] units of code. The base itself is never a key.
type RateTable struct {
	Base  Currency             `json:"base"`
	Rates map[Currency]float64 `json:"rates"`
}

// Ratio returns the ratio-to-base of c and whether c is known to the table.
func (t *RateTable) Ratio(c Currency) (float64, bool) {
	if c == t.Base {
		return 1, true
	}
	r, ok := t.Rates[c]
	return r, ok
}

// RateState is what the state layer keeps about rates between refreshes.
type RateState struct {
	Table     *RateTable `json:"table"`
	UpdatedAt time.Time  `json:"updated_at"`
	Updating  bool       `json:"updating"`
	Error     string     `json:"error,omitempty"`
}

type ConversionRequest struct {
	FromCurrency Currency `json:"from_currency"`
	ToCurrency   Currency `json:"to_currency"`
	Amount       float64  `json:"amount"`
	// Negative selects the configured default.
	Precision int `json:"precision"`
}

// ConversionResult carries a nil ToAmount when the pair cannot be converted.
type ConversionResult struct {
	FromCurrency Currency  `json:"from_currency"`
	ToCurrency   Currency  `json:"to_currency"`
	FromAmount   float64   `json:"from_amount"`
	ToAmount     *float64  `json:"to_amount"`
	Precision    int       `json:"precision"`
	RatesAt      time.Time `json:"rates_at"`
}
