package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/internal/metrics"
	"exchange-form-service/pkg/logger"
)

func TestReduceRateState(t *testing.T) {
	loaded := testTable()
	fresh := &model.RateTable{Base: "USD", Rates: map[model.Currency]float64{"EUR": 0.95}}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		state    model.RateState
		event    model.RefreshEvent
		expected model.RateState
	}{
		{
			name:     "started marks updating",
			state:    model.RateState{Table: loaded, Error: "old"},
			event:    model.RefreshEvent{Kind: model.RefreshStarted},
			expected: model.RateState{Table: loaded, Updating: true, Error: "old"},
		},
		{
			name:     "success replaces table and clears error",
			state:    model.RateState{Table: loaded, Updating: true, Error: "old"},
			event:    model.RefreshEvent{Kind: model.RefreshSucceeded, Rates: fresh, Timestamp: at},
			expected: model.RateState{Table: fresh, UpdatedAt: at},
		},
		{
			name:     "failure keeps last table",
			state:    model.RateState{Table: loaded, UpdatedAt: at, Updating: true},
			event:    model.RefreshEvent{Kind: model.RefreshFailed, Message: "timeout"},
			expected: model.RateState{Table: loaded, UpdatedAt: at, Error: "timeout"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, reduceRateState(tc.state, tc.event))
		})
	}
}

func TestRatesService_OnRefresh(t *testing.T) {
	store, state := stateStore(model.RateState{})
	publisher := &MockEventPublisher{}
	m := testMetrics()
	s := NewRatesService(store, balanceStore(nil), publisher, m, 2, logger.NewNop())
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s.OnRefresh(ctx, model.RefreshEvent{Kind: model.RefreshStarted})
	assert.True(t, state.Updating)

	s.OnRefresh(ctx, model.RefreshEvent{Kind: model.RefreshSucceeded, Rates: testTable(), Timestamp: at})
	assert.False(t, state.Updating)
	assert.Equal(t, testTable(), state.Table)
	assert.Equal(t, at, state.UpdatedAt)

	require.Len(t, publisher.refreshes, 2)
	assert.Equal(t, model.RefreshSucceeded, publisher.refreshes[1].Kind)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(metrics.OutcomeStarted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshesTotal.WithLabelValues(metrics.OutcomeSucceeded)))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.LastRefreshSuccess))
}

func TestRatesService_OnRefreshStoreFailure(t *testing.T) {
	saved := false
	store := &MockRateStore{
		LoadRateStateFunc: func(ctx context.Context) (model.RateState, error) {
			return model.RateState{}, errors.New("connection reset")
		},
		SaveRateStateFunc: func(ctx context.Context, state model.RateState) error {
			saved = true
			return nil
		},
	}
	publisher := &MockEventPublisher{}
	s := NewRatesService(store, balanceStore(nil), publisher, testMetrics(), 2, logger.NewNop())

	s.OnRefresh(context.Background(), model.RefreshEvent{Kind: model.RefreshStarted})

	assert.False(t, saved)
	assert.Empty(t, publisher.refreshes)
}

func TestRatesService_OnRefreshPublishFailureKeepsState(t *testing.T) {
	store, state := stateStore(model.RateState{})
	publisher := &MockEventPublisher{err: errors.New("broker down")}
	s := NewRatesService(store, balanceStore(nil), publisher, testMetrics(), 2, logger.NewNop())

	s.OnRefresh(context.Background(), model.RefreshEvent{Kind: model.RefreshFailed, Message: "timeout"})

	assert.Equal(t, "timeout", state.Error)
}

func TestRatesService_Table(t *testing.T) {
	testCases := []struct {
		name          string
		state         model.RateState
		expectedError error
		expectedMsg   string
	}{
		{
			name:  "loaded",
			state: model.RateState{Table: testTable(), Error: "stale"},
		},
		{
			name:          "first refresh running",
			state:         model.RateState{Updating: true, Error: "previous"},
			expectedError: ErrRatesLoading,
		},
		{
			name:          "failed",
			state:         model.RateState{Error: "503 Service Unavailable"},
			expectedError: ErrRatesUnavailable,
			expectedMsg:   "503 Service Unavailable",
		},
		{
			name:          "nothing known",
			state:         model.RateState{},
			expectedError: ErrRatesUnavailable,
			expectedMsg:   "Unknown error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, _ := stateStore(tc.state)
			s := NewRatesService(store, balanceStore(nil), &MockEventPublisher{}, testMetrics(), 2, logger.NewNop())

			table, err := s.Table(context.Background())
			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Contains(t, err.Error(), tc.expectedMsg)
				assert.Nil(t, table)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testTable(), table)
		})
	}
}

func TestRatesService_TableStoreFailure(t *testing.T) {
	store := &MockRateStore{
		LoadRateStateFunc: func(ctx context.Context) (model.RateState, error) {
			return model.RateState{}, errors.New("connection reset")
		},
	}
	s := NewRatesService(store, balanceStore(nil), &MockEventPublisher{}, testMetrics(), 2, logger.NewNop())

	_, err := s.Table(context.Background())
	assert.ErrorIs(t, err, ErrStoreFailure)
}

func TestRatesService_Convert(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store, _ := stateStore(model.RateState{Table: testTable(), UpdatedAt: at})
	m := testMetrics()
	s := NewRatesService(store, balanceStore(nil), &MockEventPublisher{}, m, 2, logger.NewNop())
	ctx := context.Background()

	t.Run("known pair", func(t *testing.T) {
		result, err := s.Convert(ctx, model.ConversionRequest{FromCurrency: "USD", ToCurrency: "EUR", Amount: 100, Precision: -1})
		require.NoError(t, err)
		require.NotNil(t, result.ToAmount)
		assert.Equal(t, 90.0, *result.ToAmount)
		assert.Equal(t, 2, result.Precision)
		assert.Equal(t, at, result.RatesAt)
	})

	t.Run("explicit precision", func(t *testing.T) {
		result, err := s.Convert(ctx, model.ConversionRequest{FromCurrency: "EUR", ToCurrency: "GBP", Amount: 1, Precision: 4})
		require.NoError(t, err)
		assert.Equal(t, 0.8889, *result.ToAmount)
	})

	t.Run("unknown currency", func(t *testing.T) {
		result, err := s.Convert(ctx, model.ConversionRequest{FromCurrency: "XYZ", ToCurrency: "USD", Amount: 1, Precision: -1})
		require.NoError(t, err)
		assert.Nil(t, result.ToAmount)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues(metrics.OutcomeUnknown)))
	})

	t.Run("missing currency", func(t *testing.T) {
		_, err := s.Convert(ctx, model.ConversionRequest{FromCurrency: "USD"})
		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})
}

func TestRatesService_ConvertWithoutRates(t *testing.T) {
	store, _ := stateStore(model.RateState{Updating: true})
	s := NewRatesService(store, balanceStore(nil), &MockEventPublisher{}, testMetrics(), 2, logger.NewNop())

	_, err := s.Convert(context.Background(), model.ConversionRequest{FromCurrency: "USD", ToCurrency: "EUR", Amount: 1})
	assert.ErrorIs(t, err, ErrRatesLoading)
}

func TestRatesService_Balances(t *testing.T) {
	store, _ := stateStore(model.RateState{})
	s := NewRatesService(store, balanceStore(model.Balances{"USD": 10}), &MockEventPublisher{}, testMetrics(), 2, logger.NewNop())

	balances, err := s.Balances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Balances{"USD": 10}, balances)

	failing := &MockBalanceStore{
		BalancesFunc: func(ctx context.Context) (model.Balances, error) { return nil, errors.New("timeout") },
	}
	s = NewRatesService(store, failing, &MockEventPublisher{}, testMetrics(), 2, logger.NewNop())
	_, err = s.Balances(context.Background())
	assert.ErrorIs(t, err, ErrStoreFailure)
}
