// Package form keeps the sell and buy amounts of an exchange form in sync.
//
// A Form owns exactly one amount and the side it was entered on; the other
// side is always derived from the current rate table on read. A Form is not
// safe for concurrent use: its owner must serialize calls.
package form

import (
	"errors"

	"exchange-form-service/internal/converter"
	"exchange-form-service/internal/domain/model"
)

// InsufficientFunds is the validation error shown when balances cannot cover the amounts.
const InsufficientFunds = "Insufficient funds"

var ErrNoRates = errors.New("no exchange rates loaded")

type Options struct {
	Currencies []model.Currency
	// Precision applies to derived amounts, RatePrecision to the 1-unit ratios.
	Precision     int
	RatePrecision int
}

type Form struct {
	amount *float64
	side   model.Side

	sellCurrency model.Currency
	buyCurrency  model.Currency

	rates    *model.RateTable
	balances model.Balances
	opts     Options
}

// New creates a form for the given pair. The first field to be authoritative
// is sell. A rate table is required.
func New(rates *model.RateTable, sell, buy model.Currency, opts Options) (*Form, error) {
	if rates == nil {
		return nil, ErrNoRates
	}
	return &Form{
		side:         model.Sell,
		sellCurrency: sell,
		buyCurrency:  buy,
		rates:        rates,
		balances:     model.Balances{},
		opts:         opts,
	}, nil
}

// SetRates swaps in a newer rate table. A nil table is ignored so the last
// known one stays in use.
func (f *Form) SetRates(rates *model.RateTable) {
	if rates != nil {
		f.rates = rates
	}
}

func (f *Form) SetBalances(balances model.Balances) {
	if balances == nil {
		balances = model.Balances{}
	}
	f.balances = balances
}

func (f *Form) Side() model.Side { return f.side }

func (f *Form) Amount() *float64 { return copyAmount(f.amount) }

// SetAmount makes value the authoritative amount of side. Sign is not checked here.
func (f *Form) SetAmount(value *float64, side model.Side) {
	f.amount = copyAmount(value)
	f.side = side
}

// Focus freezes the displayed value of side so that it stops following the
// other field while being edited.
func (f *Form) Focus(side model.Side) {
	if f.side == side {
		return
	}
	f.amount = f.amountOf(side)
	f.side = side
}

// SelectCurrency changes the currency of one side and keeps the amount.
func (f *Form) SelectCurrency(side model.Side, currency model.Currency) {
	if side == model.Sell {
		f.sellCurrency = currency
	} else {
		f.buyCurrency = currency
	}
}

func (f *Form) SellAmount() *float64 { return f.amountOf(model.Sell) }

func (f *Form) BuyAmount() *float64 { return f.amountOf(model.Buy) }

func (f *Form) amountOf(side model.Side) *float64 {
	if f.amount == nil || f.side == side {
		return copyAmount(f.amount)
	}
	return converter.ConvertPtr(f.rates, f.amount, f.currencyOf(f.side), f.currencyOf(side), f.opts.Precision)
}

func (f *Form) currencyOf(side model.Side) model.Currency {
	if side == model.Sell {
		return f.sellCurrency
	}
	return f.buyCurrency
}

// IsEnoughBalance checks both sides against the balances. An absent amount
// passes its check, including a derived amount of an unconvertible pair.
func (f *Form) IsEnoughBalance() bool {
	sell, buy := f.SellAmount(), f.BuyAmount()
	sellOK := sell == nil || f.balances.Of(f.sellCurrency)-*sell >= 0
	buyOK := buy == nil || f.balances.Of(f.buyCurrency)+*buy >= 0
	return sellOK && buyOK
}

func (f *Form) CanSubmit() bool {
	return f.IsEnoughBalance() && f.amount != nil
}

// Submit returns the exchange request for the current amount and clears the
// amount, keeping the side. It returns nil and changes nothing when there is
// no amount.
func (f *Form) Submit() *model.ExchangeRequest {
	if f.amount == nil {
		return nil
	}

	req := &model.ExchangeRequest{
		SellCurrency: f.sellCurrency,
		BuyCurrency:  f.buyCurrency,
	}
	if f.side == model.Sell {
		req.SellAmount = copyAmount(f.amount)
	} else {
		req.BuyAmount = copyAmount(f.amount)
	}

	f.amount = nil
	return req
}

func (f *Form) State() model.FormState {
	state := model.FormState{
		Currencies:     f.opts.Currencies,
		SellCurrency:   f.sellCurrency,
		BuyCurrency:    f.buyCurrency,
		SellAmount:     f.SellAmount(),
		BuyAmount:      f.BuyAmount(),
		Side:           f.side,
		SellBalance:    f.balances.Of(f.sellCurrency),
		BuyBalance:     f.balances.Of(f.buyCurrency),
		SellToBuyRatio: f.unitRatio(f.sellCurrency, f.buyCurrency),
		BuyToSellRatio: f.unitRatio(f.buyCurrency, f.sellCurrency),
	}

	enough := f.IsEnoughBalance()
	state.CanSubmit = enough && f.amount != nil
	if !enough {
		state.ValidationError = InsufficientFunds
	}
	return state
}

func (f *Form) unitRatio(from, to model.Currency) *float64 {
	one := 1.0
	return converter.ConvertPtr(f.rates, &one, from, to, f.opts.RatePrecision)
}

func copyAmount(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
