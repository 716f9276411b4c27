package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Publisher entrega un evento del outbox al broker.
type Publisher interface {
	Publish(ctx context.Context, event *entity.OutboxEvent) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher publica en el tópico de cada evento; defaultTopic se usa si el evento no trae uno.
func NewKafkaPublisher(brokers []string, defaultTopic string) Publisher {
	return &kafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Compression:            kafka.Snappy,
	}, topic: defaultTopic}
}

// Publish usa el id de la entidad como clave para conservar el orden por movimiento.
func (p *kafkaPublisher) Publish(ctx context.Context, e *entity.OutboxEvent) error {
	topic := e.Topic
	if topic == "" {
		topic = p.topic
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(e.EntityID),
		Value: e.Payload,
		Time:  e.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(e.ID)},
			{Key: "event-type", Value: []byte(e.EventType)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write outbox event to kafka: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
