// Package messaging はシンボル変更イベントのKafka配信を提供します。
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/segmentio/kafka-go"

	"symbol_backend/internal/feature/symbols/usecase"
)

const defaultTopic = "symbol-changes"

// SymbolEventPublisher publishes change events to a Kafka topic, keyed by
// symbol ID so that events for one symbol stay ordered within a partition.
type SymbolEventPublisher struct {
	writer *kafka.Writer
}

var _ usecase.EventPublisher = (*SymbolEventPublisher)(nil)

// NewSymbolEventPublisher は環境変数の設定でパブリッシャーを生成します。
// KAFKA_BROKERS が未設定の場合はnilを返し、イベント配信なしで動作します。
func NewSymbolEventPublisher() *SymbolEventPublisher {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		slog.Info("KAFKA_BROKERS not set, symbol change events disabled")
		return nil
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = defaultTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	slog.Info("Kafka publisher configured", "brokers", brokers, "topic", topic)
	return &SymbolEventPublisher{writer: writer}
}

// PublishSymbolChange serializes the event as JSON and writes it to the topic.
func (p *SymbolEventPublisher) PublishSymbolChange(ctx context.Context, event usecase.SymbolChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SymbolID),
		Value: payload,
	})
}

// Close flushes and closes the underlying writer.
func (p *SymbolEventPublisher) Close() error {
	return p.writer.Close()
}
