package service

import (
	"context"
	"fmt"
	"sync"

	"exchange-form-service/internal/converter"
	"exchange-form-service/internal/domain/model"
	"exchange-form-service/internal/domain/ports"
	"exchange-form-service/internal/metrics"
	"exchange-form-service/pkg/logger"
)

const unknownRefreshError = "Unknown error"

// RatesService owns the rate state. It folds refresh events into the store
// and answers conversion and balance queries from it.
type RatesService struct {
	store     ports.RateStore
	balances  ports.BalanceStore
	publisher ports.EventPublisher
	metrics   *metrics.Metrics
	log       *logger.Logger
	precision int

	// serializes load-reduce-save of the rate state
	mu sync.Mutex
}

func NewRatesService(store ports.RateStore, balances ports.BalanceStore, publisher ports.EventPublisher,
	metrics *metrics.Metrics, precision int, log *logger.Logger) *RatesService {
	return &RatesService{
		store:     store,
		balances:  balances,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		precision: precision,
	}
}

// OnRefresh applies a refresh event to the stored rate state and forwards
// it to the event publisher.
func (s *RatesService) OnRefresh(ctx context.Context, event model.RefreshEvent) {
	s.mu.Lock()
	state, err := s.store.LoadRateState(ctx)
	if err != nil {
		s.mu.Unlock()
		s.log.Error("Failed to load rate state", "error", err, "event", event.Kind)
		return
	}
	state = reduceRateState(state, event)
	err = s.store.SaveRateState(ctx, state)
	s.mu.Unlock()
	if err != nil {
		s.log.Error("Failed to save rate state", "error", err, "event", event.Kind)
		return
	}

	switch event.Kind {
	case model.RefreshStarted:
		s.metrics.RecordRefresh(metrics.OutcomeStarted)
	case model.RefreshSucceeded:
		s.metrics.RecordRefresh(metrics.OutcomeSucceeded)
		s.metrics.LastRefreshSuccess.Set(float64(event.Timestamp.Unix()))
	case model.RefreshFailed:
		s.metrics.RecordRefresh(metrics.OutcomeFailed)
	}

	if err := s.publisher.PublishRefresh(ctx, event); err != nil {
		s.log.Error("Failed to publish refresh event", "error", err, "event", event.Kind)
	}
}

// reduceRateState never drops a loaded table: a failure only records its message.
func reduceRateState(state model.RateState, event model.RefreshEvent) model.RateState {
	switch event.Kind {
	case model.RefreshStarted:
		state.Updating = true
	case model.RefreshSucceeded:
		state.Table = event.Rates
		state.UpdatedAt = event.Timestamp
		state.Updating = false
		state.Error = ""
	case model.RefreshFailed:
		state.Updating = false
		state.Error = event.Message
	}
	return state
}

func (s *RatesService) RateState(ctx context.Context) (model.RateState, error) {
	state, err := s.store.LoadRateState(ctx)
	if err != nil {
		return model.RateState{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return state, nil
}

// Table returns the last loaded rate table. Without one it fails with
// ErrRatesLoading while a refresh is running and ErrRatesUnavailable otherwise.
func (s *RatesService) Table(ctx context.Context) (*model.RateTable, error) {
	state, err := s.RateState(ctx)
	if err != nil {
		return nil, err
	}
	return tableOf(state)
}

func tableOf(state model.RateState) (*model.RateTable, error) {
	if state.Table != nil {
		return state.Table, nil
	}
	if state.Updating {
		return nil, ErrRatesLoading
	}
	msg := state.Error
	if msg == "" {
		msg = unknownRefreshError
	}
	return nil, fmt.Errorf("%w: %s", ErrRatesUnavailable, msg)
}

func (s *RatesService) Convert(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error) {
	if request.FromCurrency == "" || request.ToCurrency == "" {
		return nil, ErrInvalidCurrency
	}

	state, err := s.RateState(ctx)
	if err != nil {
		return nil, err
	}
	table, err := tableOf(state)
	if err != nil {
		return nil, err
	}

	precision := request.Precision
	if precision < 0 {
		precision = s.precision
	}

	amount := request.Amount
	result := &model.ConversionResult{
		FromCurrency: request.FromCurrency,
		ToCurrency:   request.ToCurrency,
		FromAmount:   amount,
		ToAmount:     converter.ConvertPtr(table, &amount, request.FromCurrency, request.ToCurrency, precision),
		Precision:    precision,
		RatesAt:      state.UpdatedAt,
	}

	if result.ToAmount == nil {
		s.metrics.RecordConversion(metrics.OutcomeUnknown)
	} else {
		s.metrics.RecordConversion(metrics.OutcomeOK)
	}
	return result, nil
}

func (s *RatesService) Balances(ctx context.Context) (model.Balances, error) {
	balances, err := s.balances.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return balances, nil
}
