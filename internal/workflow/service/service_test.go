package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicdesk/internal/workflow/models"
	"civicdesk/internal/workflow/store"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/requestcontext"
)

func newService() *Service {
	return NewService(
		store.NewMemoryDefinitionStore(),
		store.NewMemoryStageStore(),
		store.NewMemoryDocumentStore(),
		store.NewMemoryActionStore(),
	)
}

func enrollmentInput() CreateInput {
	return CreateInput{
		ModuleType: "education",
		Name:       "Enrollment review",
		Stages: []models.Stage{
			{Name: "triage", Order: 1, SLADays: 2},
			{Name: "analysis", Order: 2, SLADays: 5, RequiredDocuments: []string{"id_card", "proof_of_address"}, RequiredActions: []string{"school_capacity_check"}},
			{Name: "decision", Order: 3, SLADays: 1},
		},
		DefaultSLADays: 10,
	}
}

func testCtx() context.Context {
	return requestcontext.WithTime(context.Background(), time.Date(2025, 11, 7, 10, 0, 0, 0, time.UTC))
}

func TestCreateWorkflow(t *testing.T) {
	t.Run("creates and reads back", func(t *testing.T) {
		s := newService()
		d, err := s.CreateWorkflow(testCtx(), enrollmentInput())
		require.NoError(t, err)
		assert.Equal(t, "education", d.ModuleType)

		got, err := s.GetWorkflow(testCtx(), "education")
		require.NoError(t, err)
		assert.Len(t, got.Stages, 3)
	})

	t.Run("rejects invalid stage orders", func(t *testing.T) {
		s := newService()
		in := enrollmentInput()
		in.Stages[1].Order = 5
		_, err := s.CreateWorkflow(testCtx(), in)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("recreating replaces the definition", func(t *testing.T) {
		s := newService()
		_, err := s.CreateWorkflow(testCtx(), enrollmentInput())
		require.NoError(t, err)

		in := enrollmentInput()
		in.Stages = in.Stages[:2]
		_, err = s.CreateWorkflow(testCtx(), in)
		require.NoError(t, err)

		got, err := s.GetWorkflow(testCtx(), "education")
		require.NoError(t, err)
		assert.Len(t, got.Stages, 2)
	})

	t.Run("update of a missing workflow is not found", func(t *testing.T) {
		s := newService()
		_, err := s.UpdateWorkflow(testCtx(), "health", enrollmentInput())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestApplyWorkflowToProtocol(t *testing.T) {
	t.Run("materializes stages with due dates", func(t *testing.T) {
		s := newService()
		_, err := s.CreateWorkflow(testCtx(), enrollmentInput())
		require.NoError(t, err)

		protocolID := uuid.New()
		d, stages, err := s.ApplyWorkflowToProtocol(testCtx(), protocolID, "education")
		require.NoError(t, err)
		assert.Equal(t, 10, d.DefaultSLADays)
		require.Len(t, stages, 3)

		require.NotNil(t, stages[0].DueDate)
		assert.Equal(t, time.Date(2025, 11, 9, 10, 0, 0, 0, time.UTC), *stages[0].DueDate)
	})

	t.Run("second application is a no-op", func(t *testing.T) {
		s := newService()
		_, err := s.CreateWorkflow(testCtx(), enrollmentInput())
		require.NoError(t, err)

		protocolID := uuid.New()
		_, first, err := s.ApplyWorkflowToProtocol(testCtx(), protocolID, "education")
		require.NoError(t, err)

		_, second, err := s.ApplyWorkflowToProtocol(testCtx(), protocolID, "education")
		require.NoError(t, err)
		require.Len(t, second, len(first))
		assert.Equal(t, first[0].ID, second[0].ID, "existing stages are reported, not recreated")

		all, err := s.StagesForProtocol(testCtx(), protocolID)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("missing definition is not found", func(t *testing.T) {
		s := newService()
		_, _, err := s.ApplyWorkflowToProtocol(testCtx(), uuid.New(), "sanitation")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestValidateStageConditions(t *testing.T) {
	s := newService()
	_, err := s.CreateWorkflow(testCtx(), enrollmentInput())
	require.NoError(t, err)

	protocolID := uuid.New()

	t.Run("reports missing documents and actions", func(t *testing.T) {
		res, err := s.ValidateStageConditions(testCtx(), protocolID, "education", 2)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.ElementsMatch(t, []string{
			"document:id_card",
			"document:proof_of_address",
			"action:school_capacity_check",
		}, res.MissingItems)
	})

	t.Run("passes once requirements are satisfied", func(t *testing.T) {
		idCard, err := s.AttachDocument(testCtx(), protocolID, "id_card")
		require.NoError(t, err)
		require.NoError(t, s.SetDocumentStatus(testCtx(), idCard.ID, models.DocumentApproved))

		proof, err := s.AttachDocument(testCtx(), protocolID, "proof_of_address")
		require.NoError(t, err)
		require.NoError(t, s.SetDocumentStatus(testCtx(), proof.ID, models.DocumentApproved))

		require.NoError(t, s.RecordAction(testCtx(), protocolID, "school_capacity_check", "agent-1"))
		// Recording again must not break anything.
		require.NoError(t, s.RecordAction(testCtx(), protocolID, "school_capacity_check", "agent-2"))

		res, err := s.ValidateStageConditions(testCtx(), protocolID, "education", 2)
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.MissingItems)
	})

	t.Run("pending documents do not count", func(t *testing.T) {
		otherProtocol := uuid.New()
		_, err := s.AttachDocument(testCtx(), otherProtocol, "id_card")
		require.NoError(t, err)

		res, err := s.ValidateStageConditions(testCtx(), otherProtocol, "education", 2)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Contains(t, res.MissingItems, "document:id_card")
	})

	t.Run("unknown stage order is not found", func(t *testing.T) {
		_, err := s.ValidateStageConditions(testCtx(), protocolID, "education", 9)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestDeleteAndStats(t *testing.T) {
	s := newService()
	_, err := s.CreateWorkflow(testCtx(), enrollmentInput())
	require.NoError(t, err)

	health := enrollmentInput()
	health.ModuleType = "health"
	health.Stages = health.Stages[:1]
	_, err = s.CreateWorkflow(testCtx(), health)
	require.NoError(t, err)

	stats, err := s.Stats(testCtx())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Definitions)
	assert.Equal(t, 3, stats.StagesByType["education"])
	assert.Equal(t, 1, stats.StagesByType["health"])

	require.NoError(t, s.DeleteWorkflow(testCtx(), "health"))
	err = s.DeleteWorkflow(testCtx(), "health")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
