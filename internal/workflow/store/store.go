// Package store persists workflow definitions, materialized stages, and the
// documents and actions consulted during stage validation.
package store

import (
	"context"

	"github.com/google/uuid"

	"civicdesk/internal/workflow/models"
)

// DefinitionStore persists workflow definitions, one per module type.
type DefinitionStore interface {
	Upsert(ctx context.Context, d *models.Definition) error
	GetByModuleType(ctx context.Context, moduleType string) (*models.Definition, error)
	List(ctx context.Context) ([]*models.Definition, error)
	Delete(ctx context.Context, moduleType string) error
}

// StageStore materializes stages onto protocols. BulkCreate returns
// sentinel.ErrConflict when any stage's (protocol, order) slot is already
// taken; callers treat that as an already-applied workflow.
type StageStore interface {
	BulkCreate(ctx context.Context, stages []*models.ProtocolStage) error
	ListByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*models.ProtocolStage, error)
}

// DocumentStore tracks protocol documents for stage validation.
type DocumentStore interface {
	Create(ctx context.Context, d *models.Document) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*models.Document, error)
}

// ActionStore tracks recorded protocol actions. Record is idempotent per
// (protocol, action).
type ActionStore interface {
	Record(ctx context.Context, a *models.Action) error
	ListByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*models.Action, error)
}
