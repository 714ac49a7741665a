package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/efreitasn/stockserver/internal/domain"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes transaction events to a Kafka topic, keyed by stock
// so events for one stock stay ordered within a partition.
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a Publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Record publishes rec as a JSON event.
func (p *Publisher) Record(ctx context.Context, rec domain.TransactionRecord) error {
	value, err := json.Marshal(FromRecord(rec))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.Stock),
		Value: value,
		Time:  rec.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
