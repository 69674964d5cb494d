package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"civicdesk/internal/platform/kafka"
	"civicdesk/internal/platform/metrics"
)

// KafkaPublisher emits events to the protocol events topic. Delivery is
// asynchronous; failures are logged and counted, never propagated to the
// request path.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewKafkaPublisher builds a Kafka-backed publisher.
func NewKafkaPublisher(producer *kafka.Producer, logger *slog.Logger, m *metrics.Metrics) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger, metrics: m}
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	p.producer.Publish(ctx, []byte(event.ProtocolNumber), payload, func(err error) {
		if err == nil {
			return
		}
		if p.metrics != nil {
			p.metrics.AuditPublishErrors.Inc()
		}
		p.logger.Warn("audit event publish failed",
			"type", string(event.Type),
			"protocol_number", event.ProtocolNumber,
			"error", err,
		)
	})
	return nil
}
