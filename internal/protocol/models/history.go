package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryAction names an entry in a protocol's action log.
type HistoryAction string

const (
	HistoryCreated       HistoryAction = "created"
	HistoryStatusChanged HistoryAction = "status_changed"
	HistoryApproved      HistoryAction = "approved"
	HistoryRejected      HistoryAction = "rejected"
	HistoryAssigned      HistoryAction = "assigned"
	HistoryComment       HistoryAction = "comment"
)

// HistoryEntry records one action taken on a protocol. Entries are written
// in the same transaction as the mutation they describe.
type HistoryEntry struct {
	ID         uuid.UUID
	ProtocolID uuid.UUID
	Action     HistoryAction
	OldStatus  Status
	NewStatus  Status
	Comment    string
	ActorRef   string
	CreatedAt  time.Time
}

// NewHistoryEntry builds a history entry for a protocol.
func NewHistoryEntry(protocolID uuid.UUID, action HistoryAction, now time.Time) *HistoryEntry {
	return &HistoryEntry{
		ID:         uuid.New(),
		ProtocolID: protocolID,
		Action:     action,
		CreatedAt:  now,
	}
}
