package ports

import (
	"context"

	"exchange-form-service/internal/domain/model"
)

type RateStore interface {
	LoadRateState(ctx context.Context) (model.RateState, error)
	SaveRateState(ctx context.Context, state model.RateState) error
}

type BalanceStore interface {
	Balances(ctx context.Context) (model.Balances, error)
	// ApplyDeltas adds every delta to its currency in one step.
	ApplyDeltas(ctx context.Context, deltas model.Balances) error
}
