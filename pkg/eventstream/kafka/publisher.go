// Package kafka implements the eventstream Publisher on a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	segmentio "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/paddyhq/paddy/pkg/eventstream"
)

// Publisher writes exchange events to a Kafka topic as JSON messages keyed
// by completion ID, so all events for one exchange land on one partition.
type Publisher struct {
	writer *segmentio.Writer
	logger *zap.Logger
}

// NewPublisher creates a Kafka-backed publisher for the given brokers and
// topic. The underlying writer batches asynchronously; delivery failures
// are logged rather than returned so publishing stays fire-and-forget.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	writer := &segmentio.Writer{
		Addr:     segmentio.TCP(brokers...),
		Topic:    topic,
		Balancer: &segmentio.Hash{},
		Async:    true,
		Completion: func(messages []segmentio.Message, err error) {
			if err != nil {
				logger.Warn("kafka delivery failed",
					zap.Int("messages", len(messages)),
					zap.Error(err),
				)
			}
		},
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

// PublishExchange marshals the event and enqueues it on the topic.
func (p *Publisher) PublishExchange(ctx context.Context, event *eventstream.ExchangeCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilExchangeEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, segmentio.Message{
		Key:   []byte(event.Exchange.CompletionID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish exchange event: %w", err)
	}

	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
