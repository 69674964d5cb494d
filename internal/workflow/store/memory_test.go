package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicdesk/internal/workflow/models"
	"civicdesk/pkg/platform/sentinel"
)

func definition(moduleType string) *models.Definition {
	return &models.Definition{
		ID:         uuid.New(),
		ModuleType: moduleType,
		Name:       moduleType + " workflow",
		Stages: []models.Stage{
			{Name: "triage", Order: 1, SLADays: 2},
			{Name: "decision", Order: 2, SLADays: 3},
		},
		DefaultSLADays: 10,
		UpdatedAt:      time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryDefinitionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert keeps the original id", func(t *testing.T) {
		s := NewMemoryDefinitionStore()
		first := definition("education")
		require.NoError(t, s.Upsert(ctx, first))

		replacement := definition("education")
		replacement.Name = "revised"
		require.NoError(t, s.Upsert(ctx, replacement))

		got, err := s.GetByModuleType(ctx, "education")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, "revised", got.Name)
	})

	t.Run("missing definition is not found", func(t *testing.T) {
		s := NewMemoryDefinitionStore()
		_, err := s.GetByModuleType(ctx, "health")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "health"), sentinel.ErrNotFound)
	})

	t.Run("list is sorted by module type", func(t *testing.T) {
		s := NewMemoryDefinitionStore()
		require.NoError(t, s.Upsert(ctx, definition("health")))
		require.NoError(t, s.Upsert(ctx, definition("education")))

		defs, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, defs, 2)
		assert.Equal(t, "education", defs[0].ModuleType)
		assert.Equal(t, "health", defs[1].ModuleType)
	})
}

func TestMemoryStageStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 11, 7, 10, 0, 0, 0, time.UTC)

	t.Run("bulk create then conflict on reapplication", func(t *testing.T) {
		s := NewMemoryStageStore()
		protocolID := uuid.New()
		stages := definition("education").Materialize(protocolID, now)

		require.NoError(t, s.BulkCreate(ctx, stages))
		assert.ErrorIs(t, s.BulkCreate(ctx, definition("education").Materialize(protocolID, now)), sentinel.ErrConflict)

		got, err := s.ListByProtocol(ctx, protocolID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Order)
		assert.Equal(t, 2, got[1].Order)
	})
}

func TestMemoryActionStoreIdempotentRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryActionStore()
	protocolID := uuid.New()
	now := time.Date(2025, 11, 7, 10, 0, 0, 0, time.UTC)

	a := &models.Action{ID: uuid.New(), ProtocolID: protocolID, Action: "site_visit", ActorRef: "agent-1", CreatedAt: now}
	require.NoError(t, s.Record(ctx, a))

	dup := &models.Action{ID: uuid.New(), ProtocolID: protocolID, Action: "site_visit", ActorRef: "agent-2", CreatedAt: now.Add(time.Hour)}
	require.NoError(t, s.Record(ctx, dup))

	actions, err := s.ListByProtocol(ctx, protocolID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "agent-1", actions[0].ActorRef)
}

func TestMemoryDocumentStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDocumentStore()
	protocolID := uuid.New()
	now := time.Date(2025, 11, 7, 10, 0, 0, 0, time.UTC)

	doc := &models.Document{ID: uuid.New(), ProtocolID: protocolID, DocumentType: "id_card", Status: "pending", CreatedAt: now}
	require.NoError(t, s.Create(ctx, doc))
	require.NoError(t, s.UpdateStatus(ctx, doc.ID, models.DocumentApproved))

	docs, err := s.ListByProtocol(ctx, protocolID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.DocumentApproved, docs[0].Status)

	assert.ErrorIs(t, s.UpdateStatus(ctx, uuid.New(), "approved"), sentinel.ErrNotFound)
}
