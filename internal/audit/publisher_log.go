package audit

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to the structured log. Used when Kafka is not
// configured and as the fallback sink in tests.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher builds a log-backed publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "audit event",
		"type", string(event.Type),
		"protocol_number", event.ProtocolNumber,
		"module_type", event.ModuleType,
		"actor_ref", event.ActorRef,
		"request_id", event.RequestID,
		"detail", event.Detail,
	)
	return nil
}
