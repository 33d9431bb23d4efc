// Package converter converts amounts between currencies through a
// base-anchored rate table.
package converter

import (
	"math"

	"github.com/shopspring/decimal"

	"exchange-form-service/internal/domain/model"
)

// DefaultPrecision is the number of decimal digits kept for converted amounts.
const DefaultPrecision = 2

// Convert maps amount from one currency to another. It reports false when
// either currency is unknown to the table, when the from-ratio is zero, or when
// the input or the result is not a finite number. The result is rounded half
// away from zero to precision decimal digits.
func Convert(table *model.RateTable, amount float64, from, to model.Currency, precision int) (float64, bool) {
	if table == nil {
		return 0, false
	}

	fromRatio, ok := table.Ratio(from)
	if !ok {
		return 0, false
	}
	toRatio, ok := table.Ratio(to)
	if !ok {
		return 0, false
	}

	if fromRatio == 0 {
		return 0, false
	}

	converted := amount
	if from != to {
		converted = amount / fromRatio * toRatio
	}
	if !isFinite(converted) {
		return 0, false
	}

	return Round(converted, precision), true
}

// ConvertPtr is Convert for optional amounts: nil in, nil out.
func ConvertPtr(table *model.RateTable, amount *float64, from, to model.Currency, precision int) *float64 {
	if amount == nil {
		return nil
	}
	v, ok := Convert(table, *amount, from, to, precision)
	if !ok {
		return nil
	}
	return &v
}

// Round rounds v half away from zero to precision decimal digits.
func Round(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	return decimal.NewFromFloat(v).Round(int32(precision)).InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
