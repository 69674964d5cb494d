// Package store persists SLA records.
package store

import (
	"context"

	"github.com/google/uuid"

	"civicdesk/internal/sla/models"
)

// Store persists SLAs keyed by protocol. Create returns
// sentinel.ErrConflict when the protocol already has an SLA.
type Store interface {
	Create(ctx context.Context, s *models.SLA) error
	GetByProtocol(ctx context.Context, protocolID uuid.UUID) (*models.SLA, error)
	Update(ctx context.Context, s *models.SLA) error
	DeleteByProtocol(ctx context.Context, protocolID uuid.UUID) error
	// ListActive returns SLAs without an actual end date.
	ListActive(ctx context.Context) ([]*models.SLA, error)
	List(ctx context.Context) ([]*models.SLA, error)
}
