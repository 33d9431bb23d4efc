// Package publisher emits refresh events and executed exchanges to the
// outside world.
package publisher

import (
	"context"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/pkg/logger"
)

// LogPublisher writes every event as a log line.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log.With("component", "events")}
}

func (p *LogPublisher) PublishRefresh(ctx context.Context, event model.RefreshEvent) error {
	switch event.Kind {
	case model.RefreshSucceeded:
		p.log.Info("Rates refreshed", "event", event.Kind, "timestamp", event.Timestamp, "count", len(event.Rates.Rates))
	case model.RefreshFailed:
		p.log.Warn("Rate refresh failed", "event", event.Kind, "message", event.Message)
	default:
		p.log.Debug("Rate refresh started", "event", event.Kind)
	}
	return nil
}

func (p *LogPublisher) PublishExchange(ctx context.Context, result model.ExchangeResult) error {
	p.log.Info("Exchange executed", "event", exchangeExecuted, "id", result.ID,
		"sell", result.SellCurrency, "sell_amount", result.SellAmount,
		"buy", result.BuyCurrency, "buy_amount", result.BuyAmount)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
