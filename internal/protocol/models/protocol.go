package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "civicdesk/pkg/domain-errors"
)

// Status is the protocol lifecycle state. A protocol is Bound from the
// moment it is created together with its module record; terminal states are
// Completed and Rejected.
type Status string

const (
	StatusBound     Status = "bound"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Protocol is the canonical case record for a citizen request. It is the
// aggregate root: module records, stages and the SLA reference it and are
// destroyed only through it.
type Protocol struct {
	ID           uuid.UUID
	Number       string
	Status       Status
	ServiceRef   string
	ModuleType   string
	RequesterRef string
	AssignedTo   string
	CreatedAt    time.Time
	ConcludedAt  *time.Time
}

// NewProtocol builds a Bound protocol with an allocated number.
func NewProtocol(number, serviceRef, moduleType, requesterRef string, now time.Time) (*Protocol, error) {
	if !ValidNumber(number) {
		return nil, dErrors.Newf(dErrors.CodeInternal, "malformed protocol number %q", number)
	}
	if serviceRef == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "service reference is required")
	}
	if requesterRef == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "requester reference is required")
	}
	return &Protocol{
		ID:           uuid.New(),
		Number:       number,
		Status:       StatusBound,
		ServiceRef:   serviceRef,
		ModuleType:   moduleType,
		RequesterRef: requesterRef,
		CreatedAt:    now,
	}, nil
}

// Terminal reports whether the protocol reached a final state.
func (p *Protocol) Terminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusRejected
}

// CanApprove checks the approval precondition.
func (p *Protocol) CanApprove() error {
	if p.Terminal() {
		return dErrors.Newf(dErrors.CodeConflict, "protocol %s is already %s", p.Number, p.Status)
	}
	return nil
}

// ApplyApproval transitions the protocol to Completed.
func (p *Protocol) ApplyApproval(now time.Time) {
	p.Status = StatusCompleted
	p.ConcludedAt = &now
}

// CanReject checks the rejection precondition.
func (p *Protocol) CanReject() error {
	if p.Terminal() {
		return dErrors.Newf(dErrors.CodeConflict, "protocol %s is already %s", p.Number, p.Status)
	}
	return nil
}

// ApplyRejection transitions the protocol to Rejected.
func (p *Protocol) ApplyRejection(now time.Time) {
	p.Status = StatusRejected
	p.ConcludedAt = &now
}
