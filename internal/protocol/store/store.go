// Package store persists protocols and their history.
package store

import (
	"context"

	"github.com/google/uuid"

	"civicdesk/internal/protocol/models"
)

// Stats summarizes the protocol population for reporting endpoints.
type Stats struct {
	Total    int                   `json:"total"`
	ByStatus map[models.Status]int `json:"by_status"`
	ByModule map[string]int        `json:"by_module"`
}

// ProtocolStore persists protocol aggregates. Implementations return
// sentinel errors (sentinel.ErrNotFound, sentinel.ErrConflict); services
// translate them into coded domain errors.
type ProtocolStore interface {
	Create(ctx context.Context, p *models.Protocol) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Protocol, error)
	GetByNumber(ctx context.Context, number string) (*models.Protocol, error)
	Update(ctx context.Context, p *models.Protocol) error
	ListByModule(ctx context.Context, moduleType string) ([]*models.Protocol, error)
	ListPendingByModule(ctx context.Context, moduleType string) ([]*models.Protocol, error)
	Stats(ctx context.Context) (*Stats, error)
}

// HistoryStore persists the per-protocol action log.
type HistoryStore interface {
	Append(ctx context.Context, e *models.HistoryEntry) error
	ListByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*models.HistoryEntry, error)
}
