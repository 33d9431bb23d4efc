package ports

import (
	"context"

	"github.com/google/uuid"

	"exchange-form-service/internal/domain/model"
)

type EventPublisher interface {
	PublishRefresh(ctx context.Context, event model.RefreshEvent) error
	PublishExchange(ctx context.Context, result model.ExchangeResult) error
	Close() error
}

type RateService interface {
	RateState(ctx context.Context) (model.RateState, error)
	Convert(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error)
	Balances(ctx context.Context) (model.Balances, error)
}

type FormService interface {
	Open(ctx context.Context) (uuid.UUID, *model.FormState, error)
	State(ctx context.Context, id uuid.UUID) (*model.FormState, error)
	SetAmount(ctx context.Context, id uuid.UUID, side model.Side, amount *float64) (*model.FormState, error)
	Focus(ctx context.Context, id uuid.UUID, side model.Side) (*model.FormState, error)
	SelectCurrency(ctx context.Context, id uuid.UUID, side model.Side, currency model.Currency) (*model.FormState, error)
	Submit(ctx context.Context, id uuid.UUID) (*model.SubmitResult, error)
	Close(id uuid.UUID) error
}

// RefreshTrigger issues a refresh signal; false means it was dropped.
type RefreshTrigger interface {
	RequestRefresh(ctx context.Context) bool
}
