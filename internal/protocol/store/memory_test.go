package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicdesk/internal/protocol/models"
	"civicdesk/pkg/platform/sentinel"
)

func newProtocol(t *testing.T, seq int, moduleType string) *models.Protocol {
	t.Helper()
	now := time.Date(2025, 11, 7, 8, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Minute)
	p, err := models.NewProtocol(models.FormatNumber(now, seq), "svc-ref", moduleType, "citizen-1", now)
	require.NoError(t, err)
	return p
}

func TestMemoryProtocolStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip by id and number", func(t *testing.T) {
		s := NewMemoryProtocolStore()
		p := newProtocol(t, 1, "education")
		require.NoError(t, s.Create(ctx, p))

		byID, err := s.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Number, byID.Number)

		byNumber, err := s.GetByNumber(ctx, p.Number)
		require.NoError(t, err)
		assert.Equal(t, p.ID, byNumber.ID)
	})

	t.Run("duplicate number conflicts", func(t *testing.T) {
		s := NewMemoryProtocolStore()
		p := newProtocol(t, 1, "education")
		require.NoError(t, s.Create(ctx, p))

		dup := newProtocol(t, 2, "education")
		dup.Number = p.Number
		assert.ErrorIs(t, s.Create(ctx, dup), sentinel.ErrConflict)
	})

	t.Run("missing protocol is not found", func(t *testing.T) {
		s := NewMemoryProtocolStore()
		_, err := s.GetByNumber(ctx, "PROT-20251107-00001")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		_, err = s.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("update replaces stored state", func(t *testing.T) {
		s := NewMemoryProtocolStore()
		p := newProtocol(t, 1, "health")
		require.NoError(t, s.Create(ctx, p))

		p.ApplyApproval(p.CreatedAt.Add(time.Hour))
		require.NoError(t, s.Update(ctx, p))

		got, err := s.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, got.Status)
		require.NotNil(t, got.ConcludedAt)
	})

	t.Run("update of unknown protocol is not found", func(t *testing.T) {
		s := NewMemoryProtocolStore()
		assert.ErrorIs(t, s.Update(ctx, newProtocol(t, 1, "health")), sentinel.ErrNotFound)
	})

	t.Run("pending listing excludes terminal protocols", func(t *testing.T) {
		s := NewMemoryProtocolStore()

		open := newProtocol(t, 1, "education")
		require.NoError(t, s.Create(ctx, open))

		closed := newProtocol(t, 2, "education")
		closed.ApplyRejection(closed.CreatedAt.Add(time.Hour))
		require.NoError(t, s.Create(ctx, closed))

		other := newProtocol(t, 3, "health")
		require.NoError(t, s.Create(ctx, other))

		all, err := s.ListByModule(ctx, "education")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		pending, err := s.ListPendingByModule(ctx, "education")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, open.Number, pending[0].Number)
	})

	t.Run("stats aggregate by status and module", func(t *testing.T) {
		s := NewMemoryProtocolStore()
		require.NoError(t, s.Create(ctx, newProtocol(t, 1, "education")))
		require.NoError(t, s.Create(ctx, newProtocol(t, 2, "education")))
		require.NoError(t, s.Create(ctx, newProtocol(t, 3, "health")))

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 3, stats.ByStatus[models.StatusBound])
		assert.Equal(t, 2, stats.ByModule["education"])
		assert.Equal(t, 1, stats.ByModule["health"])
	})
}

func TestMemoryHistoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryHistoryStore()

	protocolID := uuid.New()
	now := time.Date(2025, 11, 7, 8, 0, 0, 0, time.UTC)

	created := models.NewHistoryEntry(protocolID, models.HistoryCreated, now)
	created.NewStatus = models.StatusBound
	require.NoError(t, s.Append(ctx, created))

	approved := models.NewHistoryEntry(protocolID, models.HistoryApproved, now.Add(time.Hour))
	approved.OldStatus = models.StatusBound
	approved.NewStatus = models.StatusCompleted
	require.NoError(t, s.Append(ctx, approved))

	entries, err := s.ListByProtocol(ctx, protocolID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.HistoryCreated, entries[0].Action)
	assert.Equal(t, models.HistoryApproved, entries[1].Action)

	other, err := s.ListByProtocol(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
