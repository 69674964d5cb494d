// Package models defines workflow definitions and the per-protocol stages
// they materialize into.
package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "civicdesk/pkg/domain-errors"
)

// Stage is one step of a workflow definition. Stages are stored as a JSON
// document inside the definition row; Order is 1-based and contiguous.
type Stage struct {
	Name              string   `json:"name"`
	Order             int      `json:"order"`
	SLADays           int      `json:"sla_days"`
	RequiredDocuments []string `json:"required_documents,omitempty"`
	RequiredActions   []string `json:"required_actions,omitempty"`
	CanSkip           bool     `json:"can_skip,omitempty"`
	SkipCondition     string   `json:"skip_condition,omitempty"`
}

// Definition is the workflow template for one module type.
type Definition struct {
	ID             uuid.UUID `json:"id"`
	ModuleType     string    `json:"module_type"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Stages         []Stage   `json:"stages"`
	DefaultSLADays int       `json:"default_sla_days"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate enforces the definition invariants: a module type, at least one
// stage, and stage orders forming the contiguous ascending run 1..n.
func (d *Definition) Validate() error {
	if d.ModuleType == "" {
		return dErrors.New(dErrors.CodeValidation, "module type is required")
	}
	if d.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "workflow name is required")
	}
	if len(d.Stages) == 0 {
		return dErrors.New(dErrors.CodeValidation, "workflow needs at least one stage")
	}
	if d.DefaultSLADays < 0 {
		return dErrors.New(dErrors.CodeValidation, "default SLA days cannot be negative")
	}

	seen := make(map[int]bool, len(d.Stages))
	for _, st := range d.Stages {
		if st.Name == "" {
			return dErrors.New(dErrors.CodeValidation, "every stage needs a name")
		}
		if st.SLADays < 0 {
			return dErrors.Newf(dErrors.CodeValidation, "stage %q: SLA days cannot be negative", st.Name)
		}
		if seen[st.Order] {
			return dErrors.Newf(dErrors.CodeValidation, "duplicate stage order %d", st.Order)
		}
		seen[st.Order] = true
	}
	for want := 1; want <= len(d.Stages); want++ {
		if !seen[want] {
			return dErrors.Newf(dErrors.CodeValidation, "stage orders must run 1..%d without gaps, missing %d", len(d.Stages), want)
		}
	}
	return nil
}

// StageByOrder returns the stage with the given order.
func (d *Definition) StageByOrder(order int) (Stage, bool) {
	for _, st := range d.Stages {
		if st.Order == order {
			return st, true
		}
	}
	return Stage{}, false
}

// ProtocolStage is a workflow stage materialized onto a protocol.
type ProtocolStage struct {
	ID         uuid.UUID      `json:"id"`
	ProtocolID uuid.UUID      `json:"protocol_id"`
	StageName  string         `json:"stage_name"`
	Order      int            `json:"order"`
	DueDate    *time.Time     `json:"due_date,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Materialize builds the protocol stages for this definition. Stage due
// dates are now + slaDays calendar days; stages without an SLA get none.
func (d *Definition) Materialize(protocolID uuid.UUID, now time.Time) []*ProtocolStage {
	out := make([]*ProtocolStage, 0, len(d.Stages))
	for _, st := range d.Stages {
		ps := &ProtocolStage{
			ID:         uuid.New(),
			ProtocolID: protocolID,
			StageName:  st.Name,
			Order:      st.Order,
			Metadata: map[string]any{
				"required_documents": st.RequiredDocuments,
				"required_actions":   st.RequiredActions,
				"can_skip":           st.CanSkip,
				"skip_condition":     st.SkipCondition,
			},
			CreatedAt: now,
		}
		if st.SLADays > 0 {
			due := now.AddDate(0, 0, st.SLADays)
			ps.DueDate = &due
		}
		out = append(out, ps)
	}
	return out
}

// Document is a protocol attachment tracked for stage validation.
type Document struct {
	ID           uuid.UUID `json:"id"`
	ProtocolID   uuid.UUID `json:"protocol_id"`
	DocumentType string    `json:"document_type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// DocumentApproved is the status a document must reach before a stage that
// requires it can pass validation.
const DocumentApproved = "approved"

// Action records that a named action was taken on a protocol. The
// (protocol, action) pair is unique; recording twice is a no-op.
type Action struct {
	ID         uuid.UUID `json:"id"`
	ProtocolID uuid.UUID `json:"protocol_id"`
	Action     string    `json:"action"`
	ActorRef   string    `json:"actor_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidationResult reports whether a stage's requirements are satisfied.
type ValidationResult struct {
	Valid        bool     `json:"valid"`
	MissingItems []string `json:"missing_items,omitempty"`
}
