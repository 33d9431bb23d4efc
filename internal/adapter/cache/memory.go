package cache

import (
	"context"
	"sync"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/pkg/logger"
)

// MemoryStore keeps rate state and balances in process memory.
type MemoryStore struct {
	mutex     sync.RWMutex
	rateState model.RateState
	balances  model.Balances
	log       *logger.Logger
}

func NewMemoryStore(initial model.Balances, log *logger.Logger) *MemoryStore {
	balances := make(model.Balances, len(initial))
	for c, amount := range initial {
		balances[c] = amount
	}
	return &MemoryStore{
		balances: balances,
		log:      log,
	}
}

func (s *MemoryStore) LoadRateState(ctx context.Context) (model.RateState, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.rateState, nil
}

// SaveRateState replaces the stored state. Rate tables are shared, not copied.
func (s *MemoryStore) SaveRateState(ctx context.Context, state model.RateState) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.rateState = state
	s.log.Debug("Rate state saved", "updating", state.Updating, "has_table", state.Table != nil)
	return nil
}

func (s *MemoryStore) Balances(ctx context.Context) (model.Balances, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(model.Balances, len(s.balances))
	for c, amount := range s.balances {
		out[c] = amount
	}
	return out, nil
}

func (s *MemoryStore) ApplyDeltas(ctx context.Context, deltas model.Balances) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for c, delta := range deltas {
		s.balances[c] += delta
	}
	s.log.Debug("Balances updated", "currencies", len(deltas))
	return nil
}
