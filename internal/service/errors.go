package service

import "errors"

var (
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidSide       = errors.New("invalid side")
	ErrSameCurrency      = errors.New("sell and buy currency must differ")
	ErrRatesLoading      = errors.New("exchange rates are loading")
	ErrRatesUnavailable  = errors.New("exchange rates unavailable")
	ErrUnconvertiblePair = errors.New("currency pair cannot be converted")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrFormNotFound      = errors.New("form not found")
	ErrStoreFailure      = errors.New("state store failure")
)
