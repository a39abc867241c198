package trace

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// KafkaPublisher writes spans to a Kafka topic keyed by trace ID, so
// one execution's spans land in order on one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		},
		logger: slog.Default().With("component", "trace"),
	}
}

// NewKafkaPublisherFromBootstrap accepts a comma-separated broker list.
func NewKafkaPublisherFromBootstrap(bootstrap, topic string) *KafkaPublisher {
	return NewKafkaPublisher(strings.Split(bootstrap, ","), topic)
}

// Publish serializes the span and hands it to the async writer. Delivery
// failures are logged, never returned; tracing must not fail a run.
func (p *KafkaPublisher) Publish(ctx context.Context, span Span) {
	if span.At.IsZero() {
		span.At = time.Now().UTC()
	}
	value, err := json.Marshal(span)
	if err != nil {
		p.logger.Warn("span marshal failed", "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(span.TraceID),
		Value: value,
	}); err != nil {
		p.logger.Warn("span publish failed", "error", err)
	}
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
