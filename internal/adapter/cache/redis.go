package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/pkg/logger"
)

const (
	rateStateKey = "rates"
	balancesKey  = "balances"
)

// RedisStore keeps the rate state as one JSON value and the balances as a
// hash of currency to amount, all under a common key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	log    *logger.Logger
}

func NewRedisStore(addr, password string, db int, prefix string, log *logger.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreWithClient(client, prefix, log)
}

func NewRedisStoreWithClient(client *redis.Client, prefix string, log *logger.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, log: log}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Seed sets the initial balance of every currency that has none yet.
func (s *RedisStore) Seed(ctx context.Context, initial model.Balances) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for c, amount := range initial {
			pipe.HSetNX(ctx, s.key(balancesKey), c.String(), strconv.FormatFloat(amount, 'f', -1, 64))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed balances: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadRateState(ctx context.Context) (model.RateState, error) {
	val, err := s.client.Get(ctx, s.key(rateStateKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.RateState{}, nil
	}
	if err != nil {
		return model.RateState{}, fmt.Errorf("failed to load rate state: %w", err)
	}

	var state model.RateState
	if err := json.Unmarshal(val, &state); err != nil {
		return model.RateState{}, fmt.Errorf("failed to decode rate state: %w", err)
	}
	return state, nil
}

func (s *RedisStore) SaveRateState(ctx context.Context, state model.RateState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode rate state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(rateStateKey), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save rate state: %w", err)
	}
	s.log.Debug("Rate state saved", "updating", state.Updating, "has_table", state.Table != nil)
	return nil
}

func (s *RedisStore) Balances(ctx context.Context) (model.Balances, error) {
	raw, err := s.client.HGetAll(ctx, s.key(balancesKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}

	balances := make(model.Balances, len(raw))
	for code, value := range raw {
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid balance for %s: %w", code, err)
		}
		balances[model.Currency(code)] = amount
	}
	return balances, nil
}

func (s *RedisStore) ApplyDeltas(ctx context.Context, deltas model.Balances) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for c, delta := range deltas {
			pipe.HIncrByFloat(ctx, s.key(balancesKey), c.String(), delta)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply balance deltas: %w", err)
	}
	s.log.Debug("Balances updated", "currencies", len(deltas))
	return nil
}
