package ports

import (
	"context"

	"exchange-form-service/internal/domain/model"
)

// RateFetcher retrieves a complete, base-anchored rate table.
type RateFetcher interface {
	FetchRates(ctx context.Context) (*model.RateTable, error)
}
