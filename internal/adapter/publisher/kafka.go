package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/pkg/logger"
)

const exchangeExecuted = "exchange.executed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes refresh events and executed exchanges as JSON to
// two topics.
type KafkaPublisher struct {
	writer        messageWriter
	refreshTopic  string
	exchangeTopic string
	log           *logger.Logger
}

func NewKafkaPublisher(brokers []string, refreshTopic, exchangeTopic string, log *logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, refreshTopic, exchangeTopic, log)
}

func newKafkaPublisher(writer messageWriter, refreshTopic, exchangeTopic string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:        writer,
		refreshTopic:  refreshTopic,
		exchangeTopic: exchangeTopic,
		log:           log,
	}
}

func (p *KafkaPublisher) PublishRefresh(ctx context.Context, event model.RefreshEvent) error {
	msg, err := encode(p.refreshTopic, string(event.Kind), event)
	if err != nil {
		return err
	}
	return p.write(ctx, msg)
}

func (p *KafkaPublisher) PublishExchange(ctx context.Context, result model.ExchangeResult) error {
	msg, err := encode(p.exchangeTopic, result.ID.String(), exchangeEvent{Kind: exchangeExecuted, ExchangeResult: result})
	if err != nil {
		return err
	}
	return p.write(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) write(ctx context.Context, msg kafka.Message) error {
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", msg.Topic, err)
	}
	p.log.Debug("Published event", "topic", msg.Topic, "key", string(msg.Key))
	return nil
}

type exchangeEvent struct {
	Kind string `json:"kind"`
	model.ExchangeResult
}

func encode(topic, key string, v interface{}) (kafka.Message, error) {
	value, err := json.Marshal(v)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode event: %w", err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}, nil
}
