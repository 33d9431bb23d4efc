package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"exchange-form-service/internal/converter"
	"exchange-form-service/internal/domain/model"
	"exchange-form-service/internal/domain/ports"
	"exchange-form-service/internal/metrics"
	"exchange-form-service/pkg/logger"
)

type rateTables interface {
	Table(ctx context.Context) (*model.RateTable, error)
}

// ExchangeService executes submitted exchange requests against the balances.
type ExchangeService struct {
	rates      rateTables
	balances   ports.BalanceStore
	publisher  ports.EventPublisher
	metrics    *metrics.Metrics
	log        *logger.Logger
	currencies []model.Currency
	precision  int
	now        func() time.Time

	// serializes the balance check with the update that follows it
	mu sync.Mutex
}

func NewExchangeService(rates rateTables, balances ports.BalanceStore, publisher ports.EventPublisher,
	metrics *metrics.Metrics, currencies []model.Currency, precision int, log *logger.Logger) *ExchangeService {
	return &ExchangeService{
		rates:      rates,
		balances:   balances,
		publisher:  publisher,
		metrics:    metrics,
		log:        log,
		currencies: currencies,
		precision:  precision,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Execute settles an exchange request. Exactly one of the amounts is
// expected; the other is derived with the current rate table.
func (s *ExchangeService) Execute(ctx context.Context, request model.ExchangeRequest) (*model.ExchangeResult, error) {
	result, err := s.execute(ctx, request)
	if err != nil {
		s.metrics.RecordExchange(metrics.OutcomeRejected)
		s.log.Info("Exchange rejected", "error", err,
			"sell", request.SellCurrency, "buy", request.BuyCurrency)
		return nil, err
	}

	s.metrics.RecordExchange(metrics.OutcomeOK)
	s.log.Info("Exchange executed", "id", result.ID,
		"sell", result.SellCurrency, "sell_amount", result.SellAmount,
		"buy", result.BuyCurrency, "buy_amount", result.BuyAmount)

	if err := s.publisher.PublishExchange(ctx, *result); err != nil {
		s.log.Error("Failed to publish exchange event", "error", err, "id", result.ID)
	}
	return result, nil
}

func (s *ExchangeService) execute(ctx context.Context, request model.ExchangeRequest) (*model.ExchangeResult, error) {
	if !s.supported(request.SellCurrency) || !s.supported(request.BuyCurrency) {
		return nil, ErrInvalidCurrency
	}
	if request.SellCurrency == request.BuyCurrency {
		return nil, ErrSameCurrency
	}

	table, err := s.rates.Table(ctx)
	if err != nil {
		return nil, err
	}

	sell, buy, err := s.settle(table, request)
	if err != nil {
		return nil, err
	}
	if sell <= 0 || buy <= 0 {
		return nil, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balances, err := s.balances.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	if balances.Of(request.SellCurrency) < sell {
		return nil, ErrInsufficientFunds
	}

	deltas := model.Balances{
		request.SellCurrency: -sell,
		request.BuyCurrency:  buy,
	}
	if err := s.balances.ApplyDeltas(ctx, deltas); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	return &model.ExchangeResult{
		ID:           uuid.New(),
		SellCurrency: request.SellCurrency,
		SellAmount:   sell,
		BuyCurrency:  request.BuyCurrency,
		BuyAmount:    buy,
		ExecutedAt:   s.now(),
	}, nil
}

func (s *ExchangeService) settle(table *model.RateTable, request model.ExchangeRequest) (sell, buy float64, err error) {
	var ok bool
	switch {
	case request.SellAmount != nil:
		sell = *request.SellAmount
		buy, ok = converter.Convert(table, sell, request.SellCurrency, request.BuyCurrency, s.precision)
	case request.BuyAmount != nil:
		buy = *request.BuyAmount
		sell, ok = converter.Convert(table, buy, request.BuyCurrency, request.SellCurrency, s.precision)
	default:
		return 0, 0, ErrInvalidAmount
	}
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s/%s", ErrUnconvertiblePair, request.SellCurrency, request.BuyCurrency)
	}
	return sell, buy, nil
}

func (s *ExchangeService) supported(c model.Currency) bool {
	if c == "" {
		return false
	}
	return len(s.currencies) == 0 || c.In(s.currencies)
}
