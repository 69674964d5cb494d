// Package audit defines protocol lifecycle events and the publisher
// interface services emit through. Events are transport-agnostic so sinks
// (log, Kafka) can fan out.
package audit

import (
	"context"
	"time"
)

// EventType names a protocol lifecycle action.
type EventType string

const (
	EventProtocolCreated  EventType = "protocol_created"
	EventProtocolApproved EventType = "protocol_approved"
	EventProtocolRejected EventType = "protocol_rejected"
	EventWorkflowApplied  EventType = "workflow_applied"
	EventSLACreated       EventType = "sla_created"
	EventSLAPaused        EventType = "sla_paused"
	EventSLAResumed       EventType = "sla_resumed"
	EventSLACompleted     EventType = "sla_completed"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Type           EventType `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	ProtocolNumber string    `json:"protocol_number,omitempty"`
	ModuleType     string    `json:"module_type,omitempty"`
	ActorRef       string    `json:"actor_ref,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	Detail         string    `json:"detail,omitempty"`
}

// Publisher delivers events to a sink. Emit must not block the request path
// beyond serialization; delivery is best-effort.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
