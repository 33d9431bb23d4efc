package service

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/internal/metrics"
)

type MockRateStore struct {
	LoadRateStateFunc func(ctx context.Context) (model.RateState, error)
	SaveRateStateFunc func(ctx context.Context, state model.RateState) error
}

func (m *MockRateStore) LoadRateState(ctx context.Context) (model.RateState, error) {
	return m.LoadRateStateFunc(ctx)
}

func (m *MockRateStore) SaveRateState(ctx context.Context, state model.RateState) error {
	return m.SaveRateStateFunc(ctx, state)
}

// stateStore backs a MockRateStore with a single in-memory state.
func stateStore(initial model.RateState) (*MockRateStore, *model.RateState) {
	state := initial
	return &MockRateStore{
		LoadRateStateFunc: func(ctx context.Context) (model.RateState, error) { return state, nil },
		SaveRateStateFunc: func(ctx context.Context, s model.RateState) error {
			state = s
			return nil
		},
	}, &state
}

type MockBalanceStore struct {
	BalancesFunc    func(ctx context.Context) (model.Balances, error)
	ApplyDeltasFunc func(ctx context.Context, deltas model.Balances) error
}

func (m *MockBalanceStore) Balances(ctx context.Context) (model.Balances, error) {
	return m.BalancesFunc(ctx)
}

func (m *MockBalanceStore) ApplyDeltas(ctx context.Context, deltas model.Balances) error {
	return m.ApplyDeltasFunc(ctx, deltas)
}

// balanceStore backs a MockBalanceStore with a map that ApplyDeltas updates.
func balanceStore(initial model.Balances) *MockBalanceStore {
	var mu sync.Mutex
	balances := model.Balances{}
	for c, v := range initial {
		balances[c] = v
	}
	return &MockBalanceStore{
		BalancesFunc: func(ctx context.Context) (model.Balances, error) {
			mu.Lock()
			defer mu.Unlock()
			out := model.Balances{}
			for c, v := range balances {
				out[c] = v
			}
			return out, nil
		},
		ApplyDeltasFunc: func(ctx context.Context, deltas model.Balances) error {
			mu.Lock()
			defer mu.Unlock()
			for c, d := range deltas {
				balances[c] += d
			}
			return nil
		},
	}
}

type MockEventPublisher struct {
	mu        sync.Mutex
	refreshes []model.RefreshEvent
	exchanges []model.ExchangeResult
	err       error
}

func (m *MockEventPublisher) PublishRefresh(ctx context.Context, event model.RefreshEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes = append(m.refreshes, event)
	return m.err
}

func (m *MockEventPublisher) PublishExchange(ctx context.Context, result model.ExchangeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchanges = append(m.exchanges, result)
	return m.err
}

func (m *MockEventPublisher) Close() error { return nil }

func testMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

func testTable() *model.RateTable {
	return &model.RateTable{
		Base:  "USD",
		Rates: map[model.Currency]float64{"EUR": 0.9, "GBP": 0.8},
	}
}

func ptr(v float64) *float64 { return &v }
