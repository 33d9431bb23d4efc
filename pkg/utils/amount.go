package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultPrecision marks a precision that was not given.
const DefaultPrecision = -1

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidPrecision = errors.New("invalid precision")
)

// ParseAmount parses a user-entered amount. An empty string is an absent
// amount and yields nil.
func ParseAmount(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, ErrInvalidAmount
	}
	return &v, nil
}

// ParsePrecision parses a count of decimal digits. An empty string yields
// DefaultPrecision.
func ParsePrecision(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPrecision, nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 || p > 18 {
		return 0, ErrInvalidPrecision
	}
	return p, nil
}
