package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Side string

const (
	Sell Side = "sell"
	Buy  Side = "buy"
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Sell, Buy:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Opposite returns the other field of the form.
func (s Side) Opposite() Side {
	if s == Sell {
		return Buy
	}
	return Sell
}

// ExchangeRequest is emitted on submit. Only the amount of the authoritative
// side is set; the consumer derives the other one.
type ExchangeRequest struct {
	SellCurrency Currency `json:"sell_currency"`
	SellAmount   *float64 `json:"sell_amount"`
	BuyCurrency  Currency `json:"buy_currency"`
	BuyAmount    *float64 `json:"buy_amount"`
}

type ExchangeResult struct {
	ID           uuid.UUID `json:"id"`
	SellCurrency Currency  `json:"sell_currency"`
	SellAmount   float64   `json:"sell_amount"`
	BuyCurrency  Currency  `json:"buy_currency"`
	BuyAmount    float64   `json:"buy_amount"`
	ExecutedAt   time.Time `json:"executed_at"`
}

// FormState is the read model of an exchange form.
type FormState struct {
	Currencies      []Currency `json:"currencies"`
	SellCurrency    Currency   `json:"sell_currency"`
	BuyCurrency     Currency   `json:"buy_currency"`
	SellAmount      *float64   `json:"sell_amount"`
	BuyAmount       *float64   `json:"buy_amount"`
	Side            Side       `json:"side"`
	SellBalance     float64    `json:"sell_balance"`
	BuyBalance      float64    `json:"buy_balance"`
	SellToBuyRatio  *float64   `json:"sell_to_buy_ratio"`
	BuyToSellRatio  *float64   `json:"buy_to_sell_ratio"`
	CanSubmit       bool       `json:"can_submit"`
	ValidationError string     `json:"validation_error,omitempty"`
}

// SubmitResult describes a form submission. Request is nil when there was
// nothing to submit; Result is nil when nothing was executed.
type SubmitResult struct {
	Request *ExchangeRequest `json:"request"`
	Result  *ExchangeResult  `json:"result"`
	State   FormState        `json:"state"`
}
